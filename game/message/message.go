package message

// Kind discriminates the multiplayer socket frames.
type Kind string

const (
	PlayerJoined  Kind = "PLAYER_JOINED"
	PlayerRemoved Kind = "PLAYER_REMOVED"
	GameStarted   Kind = "GAME_STARTED"
	GameOver      Kind = "GAME_OVER"
	GameUpdate    Kind = "GAME_UPDATE"
	BroadcastChat Kind = "BROADCAST_CHAT"
	CloseGame     Kind = "CLOSE_GAME"
	Error         Kind = "ERROR"
)

// Known reports whether k is one of the frame kinds this client understands.
// Unknown kinds are logged and dropped by the session manager so that newer
// servers can add frame types without breaking older clients.
func (k Kind) Known() bool {
	switch k {
	case PlayerJoined, PlayerRemoved, GameStarted, GameOver,
		GameUpdate, BroadcastChat, CloseGame, Error:
		return true
	}
	return false
}

// Message is one frame on the multiplayer socket, in either direction.
// Only GAME_UPDATE frames carry the positional delta fields; for every other
// kind they stay at their zero values.
type Message struct {
	Kind     Kind   `json:"kind"`
	Note     string `json:"note,omitempty"`
	GameID   string `json:"gameId,omitempty"`
	PlayerID string `json:"playerId,omitempty"`

	// GAME_UPDATE delta
	DX            float64 `json:"dx,omitempty"`
	DY            float64 `json:"dy,omitempty"`
	BombPlaced    bool    `json:"bombPlaced,omitempty"`
	BarrierThrown bool    `json:"barrierThrown,omitempty"`
	Score         int     `json:"score,omitempty"`
	Energy        int     `json:"energy,omitempty"`
	LevelOver     bool    `json:"levelOver,omitempty"`
	Changed       bool    `json:"changed,omitempty"`
}

// New creates a message of the given kind stamped with the session
// identifiers it belongs to.
func New(kind Kind, gameID, playerID string) Message {
	return Message{
		Kind:     kind,
		GameID:   gameID,
		PlayerID: playerID,
	}
}
