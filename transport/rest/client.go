package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/maze-raiders/mp-client/game/message"
)

// Client is a thin HTTP client for the lobby's mp-game endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a lobby client for the given base URL, e.g.
// "http://localhost:8080/". A trailing slash is added when missing.
func NewClient(baseURL string) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// BaseURL returns the configured base URL, always with a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateGameRequest is the body of POST mp-game/new.
type CreateGameRequest struct {
	Game GameTemplate    `json:"game"`
	Host *message.Player `json:"host"`
}

// GameTemplate carries the settings a host selects before the server assigns
// the game an identity.
type GameTemplate struct {
	Level int `json:"level"`
}

// CreatePlayer registers the local player template with the server and
// returns the server-assigned record.
func (c *Client) CreatePlayer(ctx context.Context, template message.Player) (*message.Player, error) {
	var player message.Player
	if err := c.call(ctx, http.MethodPost, "mp-game/player", template, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

// CreateGame asks the server to open a new game with the given level and
// host, returning the created record.
func (c *Client) CreateGame(ctx context.Context, level int, host *message.Player) (*message.Game, error) {
	req := CreateGameRequest{
		Game: GameTemplate{Level: level},
		Host: host,
	}
	var game message.Game
	if err := c.call(ctx, http.MethodPost, "mp-game/new", req, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// JoinGame adds the player to an open game and returns the updated record.
func (c *Client) JoinGame(ctx context.Context, gameID, playerID string) (*message.Game, error) {
	var game message.Game
	path := fmt.Sprintf("mp-game/join/%s/%s", gameID, playerID)
	if err := c.call(ctx, http.MethodPut, path, nil, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// ListOpenGames returns the games currently accepting players.
func (c *Client) ListOpenGames(ctx context.Context) ([]*message.Game, error) {
	var games []*message.Game
	if err := c.call(ctx, http.MethodGet, "mp-game/open", nil, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// GetGame fetches the authoritative snapshot of one game.
func (c *Client) GetGame(ctx context.Context, gameID string) (*message.Game, error) {
	var game message.Game
	if err := c.call(ctx, http.MethodGet, "mp-game/"+gameID, nil, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// CloseGame notifies the server that the player is leaving the game. When
// the host leaves, the server closes the game for everyone.
func (c *Client) CloseGame(ctx context.Context, gameID, playerID string) error {
	path := fmt.Sprintf("mp-game/close/%s/%s", gameID, playerID)
	return c.call(ctx, http.MethodPut, path, nil, nil)
}

// StartGame marks the game as running so it no longer accepts players. Only
// meaningful when called by the host.
func (c *Client) StartGame(ctx context.Context, gameID string) error {
	return c.call(ctx, http.MethodPut, "mp-game/start/"+gameID, nil, nil)
}

// call performs one JSON request/response round trip. A nil result discards
// the response body.
func (c *Client) call(ctx context.Context, method, path string, body, result any) error {
	url := c.baseURL + path
	op := method + " " + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &NetworkError{Op: op, URL: url, Status: resp.StatusCode}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return &ProtocolError{Op: op, URL: url, Err: err}
		}
	}
	return nil
}
