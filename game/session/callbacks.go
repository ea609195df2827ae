package session

import (
	"github.com/maze-raiders/mp-client/game/event"
	"github.com/maze-raiders/mp-client/game/message"
)

// The Set* methods each bind exactly one frame kind's listener set on the
// event bus. Registering replaces any previous registration for that kind;
// passing nil unregisters it entirely. The teardown path's bus reset is what
// guarantees no registration leaks across sessions.

// SetOnJoinCallback registers cb for PLAYER_JOINED frames.
func (m *Manager) SetOnJoinCallback(cb Callback) {
	m.set(message.PlayerJoined, cb)
}

// SetOnLeaveCallback registers cb for PLAYER_REMOVED frames.
func (m *Manager) SetOnLeaveCallback(cb Callback) {
	m.set(message.PlayerRemoved, cb)
}

// SetOnErrorCallback registers cb for ERROR frames, including socket
// transport failures surfaced as ERROR events.
func (m *Manager) SetOnErrorCallback(cb Callback) {
	m.set(message.Error, cb)
}

// SetOnGameCloseCallback registers cb for CLOSE_GAME frames.
func (m *Manager) SetOnGameCloseCallback(cb Callback) {
	m.set(message.CloseGame, cb)
}

// SetOnBroadcastCallback registers cb for BROADCAST_CHAT frames.
func (m *Manager) SetOnBroadcastCallback(cb Callback) {
	m.set(message.BroadcastChat, cb)
}

// SetOnGameStartedCallback registers cb for GAME_STARTED frames.
func (m *Manager) SetOnGameStartedCallback(cb Callback) {
	m.set(message.GameStarted, cb)
}

// SetOnGameOverCallback registers cb for GAME_OVER frames.
func (m *Manager) SetOnGameOverCallback(cb Callback) {
	m.set(message.GameOver, cb)
}

// AddOnMessageCallback registers an additional GAME_UPDATE listener. Unlike
// the Set* methods it stacks, so the game screen and a spectator view can
// both observe updates. The returned subscription removes that one listener.
func (m *Manager) AddOnMessageCallback(cb Callback) event.Subscription {
	return m.bus.Subscribe(string(message.GameUpdate), wrap(cb))
}

// Unsubscribe removes one listener previously added with
// AddOnMessageCallback.
func (m *Manager) Unsubscribe(sub event.Subscription) {
	m.bus.Unsubscribe(sub)
}

func (m *Manager) set(kind message.Kind, cb Callback) {
	m.bus.UnsubscribeAll(string(kind))
	if cb == nil {
		return
	}
	m.bus.Subscribe(string(kind), wrap(cb))
}

func wrap(cb Callback) event.Handler {
	return func(payload any) {
		if ev, ok := payload.(Event); ok {
			cb(ev)
		}
	}
}
