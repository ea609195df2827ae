package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DefaultServerURL is used when no server is configured.
	DefaultServerURL = "http://localhost:8080/"

	// DefaultPlayerName is used when no display name is configured.
	DefaultPlayerName = "anonymous"
)

var ErrInvalidServerURL = errors.New("invalid server URL")

// Config holds the resolved client settings.
type Config struct {
	// ServerURL is the lobby base URL, always with a trailing slash.
	ServerURL string

	// PlayerName is the display name sent when registering the player.
	PlayerName string
}

// Load resolves the configuration from a .env file (if present) and the
// environment, falling back to defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		ServerURL:  getEnvDefault("MP_SERVER_URL", DefaultServerURL),
		PlayerName: getEnvDefault("MP_PLAYER_NAME", DefaultPlayerName),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ServerURL = normalize(cfg.ServerURL)
	return cfg, nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidServerURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidServerURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidServerURL)
	}
	if c.PlayerName == "" {
		return errors.New("player name must not be empty")
	}
	return nil
}

// SocketBaseURL derives the websocket base from the server URL:
// http://host/ becomes ws://host/ and https://host/ becomes wss://host/.
func (c *Config) SocketBaseURL() string {
	base := normalize(c.ServerURL)
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}

// SocketURL returns the full socket endpoint for one game/player pair.
func (c *Config) SocketURL(gameID, playerID string) string {
	return c.SocketBaseURL() + "multiplayer/" + gameID + "/" + playerID
}

func normalize(serverURL string) string {
	if !strings.HasSuffix(serverURL, "/") {
		return serverURL + "/"
	}
	return serverURL
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
