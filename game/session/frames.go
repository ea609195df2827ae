package session

import (
	"context"
	"log"

	"github.com/maze-raiders/mp-client/game/message"
)

// handleFrame dispatches one incoming socket frame. It runs on the socket's
// reader goroutine, so frames are handled strictly one at a time.
func (m *Manager) handleFrame(msg message.Message) {
	if !msg.Kind.Known() {
		log.Printf("session: dropping frame with unknown kind %q", msg.Kind)
		return
	}

	switch msg.Kind {
	case message.PlayerJoined, message.PlayerRemoved, message.GameStarted:
		// The push is only a notification to refresh; the REST snapshot is
		// the state.
		m.refreshAndEmit(msg)

	case message.CloseGame:
		// Tear down first so subscribers observe a clean, closed session,
		// then reset the bus so nothing leaks into the next session.
		m.teardown(context.Background())
		m.emit(msg, nil)
		m.bus.Reset()

	case message.BroadcastChat, message.GameUpdate, message.GameOver, message.Error:
		m.emit(msg, nil)
	}
}

// refreshAndEmit fetches the canonical game snapshot named by the frame,
// installs it as the local mirror, and emits the event carrying both. The
// snapshot is discarded when the session was torn down (or replaced) while
// the fetch was in flight.
func (m *Manager) refreshAndEmit(msg message.Message) {
	m.mu.Lock()
	if m.game == nil {
		m.mu.Unlock()
		log.Printf("session: dropping %s frame, no active game", msg.Kind)
		return
	}
	gen := m.generation
	m.mu.Unlock()

	snapshot, err := m.rest.GetGame(context.Background(), msg.GameID)
	if err != nil {
		log.Printf("session: snapshot refresh for %s failed: %v", msg.Kind, err)
		return
	}

	m.mu.Lock()
	if m.generation != gen || m.game == nil {
		m.mu.Unlock()
		log.Printf("session: dropping stale snapshot for closed session (game %s)", snapshot.ID)
		return
	}
	m.game = snapshot
	m.mu.Unlock()

	m.emit(msg, snapshot)
}

func (m *Manager) emit(msg message.Message, game *message.Game) {
	m.bus.Emit(string(msg.Kind), Event{Message: msg, Game: game})
}
