package message

import "time"

// Player is the identity record assigned by the server when a client
// registers for multiplayer. The ID is opaque and immutable.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Game is the authoritative session record as returned by the lobby server.
// Slot one is always the host. Clients treat the whole record as read-only
// and replace it with a fresh snapshot instead of patching fields.
type Game struct {
	ID          string    `json:"id"`
	Level       int       `json:"level"`
	Player1     *Player   `json:"player1,omitempty"`
	Player2     *Player   `json:"player2,omitempty"`
	Player3     *Player   `json:"player3,omitempty"`
	Player4     *Player   `json:"player4,omitempty"`
	Open        bool      `json:"isOpen"`
	Running     bool      `json:"isRunning"`
	Closed      bool      `json:"isClosed"`
	TimeStarted time.Time `json:"timeStarted"`
}

// Status is the explicit lifecycle state of a game, recomputed from the
// snapshot flags on every refresh.
type Status int

const (
	StatusOpen Status = iota
	StatusStarted
	StatusClosed
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusStarted:
		return "started"
	case StatusClosed:
		return "closed"
	}
	return "unknown"
}

// Status derives the lifecycle state from the snapshot flags. A closed flag
// wins over everything else; a running game is started even if the server
// still reports it open.
func (g *Game) Status() Status {
	switch {
	case g.Closed:
		return StatusClosed
	case g.Running:
		return StatusStarted
	default:
		return StatusOpen
	}
}

// Host returns the player occupying slot one, or nil for a snapshot that has
// no players yet.
func (g *Game) Host() *Player {
	return g.Player1
}

// Players returns the occupied player slots in slot order.
func (g *Game) Players() []*Player {
	var players []*Player
	for _, p := range []*Player{g.Player1, g.Player2, g.Player3, g.Player4} {
		if p != nil {
			players = append(players, p)
		}
	}
	return players
}

// HasPlayer reports whether the player with the given id occupies any slot.
func (g *Game) HasPlayer(playerID string) bool {
	for _, p := range g.Players() {
		if p.ID == playerID {
			return true
		}
	}
	return false
}
