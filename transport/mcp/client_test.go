package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/maze-raiders/mp-client/game/message"
)

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080")

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.api == nil {
		t.Error("Expected lobby client to be initialized")
	}
	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
	if client.GetMCPServer() != client.mcpServer {
		t.Error("GetMCPServer should return the underlying server")
	}
}

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result with content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestHandleCreatePlayer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/mp-game/player" {
			t.Errorf("Expected POST /mp-game/player, got %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(message.Player{ID: "p-123", Name: "gopher"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreatePlayer(context.Background(),
		toolRequest("create_player", map[string]interface{}{"name": "gopher"}))
	if err != nil {
		t.Fatalf("handleCreatePlayer failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "p-123") || !strings.Contains(text, "gopher") {
		t.Errorf("Expected player id and name in result, got: %s", text)
	}
}

func TestHandleCreateGame(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/mp-game/new" {
			t.Errorf("Expected POST /mp-game/new, got %s %s", r.Method, r.URL.Path)
		}

		var req struct {
			Game struct {
				Level int `json:"level"`
			} `json:"game"`
			Host *message.Player `json:"host"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if req.Game.Level != 2 {
			t.Errorf("Expected level 2, got %d", req.Game.Level)
		}

		json.NewEncoder(w).Encode(message.Game{
			ID: "g-456", Level: req.Game.Level, Player1: req.Host, Open: true,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateGame(context.Background(),
		toolRequest("create_game", map[string]interface{}{
			"player_id":   "p-123",
			"player_name": "gopher",
			"level":       float64(2),
		}))
	if err != nil {
		t.Fatalf("handleCreateGame failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "g-456") {
		t.Errorf("Expected game id in result, got: %s", text)
	}
	if !strings.Contains(text, "Status: open") {
		t.Errorf("Expected open status in result, got: %s", text)
	}
}

func TestHandleListOpenGames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]message.Game{
			{ID: "g-1", Level: 1, Player1: &message.Player{ID: "p-1", Name: "alice"}, Open: true},
			{ID: "g-2", Level: 3, Player1: &message.Player{ID: "p-2", Name: "bob"}, Open: true},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleListOpenGames(context.Background(),
		toolRequest("list_open_games", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleListOpenGames failed: %v", err)
	}

	text := resultText(t, result)
	for _, expected := range []string{"Open games (2)", "g-1", "g-2", "alice", "bob"} {
		if !strings.Contains(text, expected) {
			t.Errorf("Expected '%s' in result, got: %s", expected, text)
		}
	}
}

func TestHandleListOpenGames_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]message.Game{})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleListOpenGames(context.Background(),
		toolRequest("list_open_games", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleListOpenGames failed: %v", err)
	}

	if !strings.Contains(resultText(t, result), "No open games") {
		t.Errorf("Expected empty-lobby message, got: %s", resultText(t, result))
	}
}

func TestHandleStartGameUsesPathParameter(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleStartGame(context.Background(),
		toolRequest("start_game", map[string]interface{}{"game_id": "g-456"}))
	if err != nil {
		t.Fatalf("handleStartGame failed: %v", err)
	}

	if gotPath != "PUT /mp-game/start/g-456" {
		t.Errorf("Expected PUT /mp-game/start/g-456, got %s", gotPath)
	}
	if !strings.Contains(resultText(t, result), "started") {
		t.Errorf("Expected confirmation, got: %s", resultText(t, result))
	}
}

func TestHandlerReportsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleJoinGame(context.Background(),
		toolRequest("join_game", map[string]interface{}{
			"game_id":   "g-456",
			"player_id": "p-123",
		}))

	// Tool failures surface as error results, not Go errors, so the model
	// sees them.
	if err != nil {
		t.Fatalf("handleJoinGame returned a Go error: %v", err)
	}
	if result == nil || !result.IsError {
		t.Errorf("Expected an error result for a 409, got: %+v", result)
	}
}

func TestFormatGame(t *testing.T) {
	game := &message.Game{
		ID:      "g-789",
		Level:   4,
		Player1: &message.Player{ID: "p-1", Name: "alice"},
		Player3: &message.Player{ID: "p-3", Name: "carol"},
		Running: true,
	}

	result := formatGame(game)

	expectedFields := []string{
		"Game: g-789",
		"Level: 4",
		"Status: started",
		"alice (p-1, host)",
		"carol (p-3, guest)",
	}
	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}
}
