package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/maze-raiders/mp-client/game/message"
	"github.com/maze-raiders/mp-client/transport/rest"
)

// Client is a thin MCP surface over the lobby REST API.
type Client struct {
	api       *rest.Client
	mcpServer *server.MCPServer
}

// NewClient creates an MCP client proxying to the lobby at baseURL.
func NewClient(baseURL string) *Client {
	c := &Client{
		api: rest.NewClient(baseURL),
	}

	c.initMCPServer()
	return c
}

// GetMCPServer returns the underlying MCP server for serving over stdio or
// HTTP.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// initMCPServer initializes the MCP server with all tools.
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Maze Raiders Multiplayer Lobby",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Maze Raiders Multiplayer Lobby - MCP Interface

This is a thin client that proxies all requests to the lobby REST API.

TYPICAL FLOW:
1. create_player to register yourself (keep the returned player id)
2. Either create_game (you become the host) or list_open_games + join_game
3. The host calls start_game once everyone is in
4. close_game when you leave; a host leaving closes the game for everyone

AVAILABLE TOOLS:
- create_player: Register a player and get its server-assigned id
- create_game: Open a new game at a level, hosted by a player
- join_game: Join an open game as a guest
- list_open_games: List games currently accepting players
- get_game: Fetch the authoritative snapshot of one game
- start_game: Mark a game as started (host only)
- close_game: Leave a game; the host leaving closes it

NOTE: real-time events (joins, updates, chat) travel over the game socket,
which is outside the MCP surface; poll get_game for the latest snapshot.`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools.
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_player",
		Description: "Register a multiplayer player and return its server-assigned id",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Display name for the player",
				},
			},
			Required: []string{"name"},
		},
	}, c.handleCreatePlayer)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_game",
		Description: "Open a new multiplayer game hosted by an existing player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Id of the hosting player (from create_player)",
				},
				"player_name": map[string]interface{}{
					"type":        "string",
					"description": "Display name of the hosting player",
				},
				"level": map[string]interface{}{
					"type":        "number",
					"description": "Level index to play (default 0)",
				},
			},
			Required: []string{"player_id"},
		},
	}, c.handleCreateGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "join_game",
		Description: "Join an open game as a guest",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Id of the game to join (from list_open_games)",
				},
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Id of the joining player",
				},
			},
			Required: []string{"game_id", "player_id"},
		},
	}, c.handleJoinGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_open_games",
		Description: "List games currently accepting players",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListOpenGames)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_game",
		Description: "Fetch the authoritative snapshot of one game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Id of the game",
				},
			},
			Required: []string{"game_id"},
		},
	}, c.handleGetGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Mark a game as started so it stops accepting players (host only)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Id of the game to start",
				},
			},
			Required: []string{"game_id"},
		},
	}, c.handleStartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "close_game",
		Description: "Leave a game; when the host leaves, the game closes for everyone",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Id of the game",
				},
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Id of the departing player",
				},
			},
			Required: []string{"game_id", "player_id"},
		},
	}, c.handleCloseGame)
}

// Tool handlers

func (c *Client) handleCreatePlayer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	name, _ := args["name"].(string)

	player, err := c.api.CreatePlayer(ctx, message.Player{Name: name})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created player: %s\nId: %s\n", player.Name, player.ID)), nil
}

func (c *Client) handleCreateGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	playerID, _ := args["player_id"].(string)
	playerName, _ := args["player_name"].(string)
	level := 0
	if l, ok := args["level"].(float64); ok {
		level = int(l)
	}

	host := &message.Player{ID: playerID, Name: playerName}
	game, err := c.api.CreateGame(ctx, level, host)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGame(game)), nil
}

func (c *Client) handleJoinGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)
	playerID, _ := args["player_id"].(string)

	game, err := c.api.JoinGame(ctx, gameID, playerID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Joined game.\n\n" + formatGame(game)), nil
}

func (c *Client) handleListOpenGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	games, err := c.api.ListOpenGames(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(games) == 0 {
		return mcp.NewToolResultText("No open games.\n"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Open games (%d):\n\n", len(games))
	for _, g := range games {
		hostName := "?"
		if h := g.Host(); h != nil {
			hostName = h.Name
		}
		fmt.Fprintf(&b, "- %s (level %d, host %s, %d players)\n",
			g.ID, g.Level, hostName, len(g.Players()))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)

	game, err := c.api.GetGame(ctx, gameID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGame(game)), nil
}

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)

	if err := c.api.StartGame(ctx, gameID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Game %s started.\n", gameID)), nil
}

func (c *Client) handleCloseGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)
	playerID, _ := args["player_id"].(string)

	if err := c.api.CloseGame(ctx, gameID, playerID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Left game %s.\n", gameID)), nil
}

// Formatting helpers

func formatGame(game *message.Game) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Game: %s\n", game.ID)
	fmt.Fprintf(&b, "Level: %d\n", game.Level)
	fmt.Fprintf(&b, "Status: %s\n", game.Status())
	fmt.Fprintf(&b, "Players:\n")
	for i, p := range game.Players() {
		role := "guest"
		if i == 0 {
			role = "host"
		}
		fmt.Fprintf(&b, "  %d. %s (%s, %s)\n", i+1, p.Name, p.ID, role)
	}
	return b.String()
}
