package session

import (
	"fmt"

	"github.com/maze-raiders/mp-client/game/message"
)

// NewGameUpdate builds a GAME_UPDATE frame stamped with the active session's
// game and player ids. The caller fills in the delta fields before sending.
func (m *Manager) NewGameUpdate() (message.Message, error) {
	return m.stamped(message.GameUpdate)
}

// NewGameStarted builds a GAME_STARTED frame for the active session.
func (m *Manager) NewGameStarted() (message.Message, error) {
	return m.stamped(message.GameStarted)
}

// NewGameOver builds a GAME_OVER frame for the active session.
func (m *Manager) NewGameOver() (message.Message, error) {
	return m.stamped(message.GameOver)
}

// stamped constructs a frame carrying the current session identifiers.
// Calling it outside an active session is a programmer error.
func (m *Manager) stamped(kind message.Kind) (message.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.game == nil || m.player == nil {
		return message.Message{}, fmt.Errorf("%w: %s requires an active game and player", ErrInvalidState, kind)
	}
	return message.New(kind, m.game.ID, m.player.ID), nil
}
