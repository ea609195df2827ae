// Package session implements the client-side multiplayer session manager.
//
// The session package implements:
//   - Player registration and game create/join/start/close over the lobby
//     REST API
//   - The multiplayer socket lifecycle, bound to the active game
//   - Decoding of incoming socket frames and their dispatch on an event bus
//   - The local session snapshot (current game, current player, host flag)
//     kept consistent with the server's authoritative view
//
// State machine:
//
//	Idle -> PlayerCreated -> Hosting | Joined -> (teardown) -> Idle
//
// A manager holds at most one active game. Creating or joining a game while
// another is active first tears the old one down completely.
//
// Frame handling:
//
// Socket pushes are treated as notifications to refresh, not as state. For
// PLAYER_JOINED, PLAYER_REMOVED, and GAME_STARTED frames the manager
// re-fetches the canonical game snapshot before updating local state and
// emitting the event; the snapshot in the event payload is therefore always
// at least as fresh as the frame that announced it. CLOSE_GAME triggers full
// teardown before the event is emitted. BROADCAST_CHAT, GAME_UPDATE, and
// GAME_OVER carry ephemeral data and are emitted as-is. Unknown kinds are
// logged and dropped.
//
// Concurrency:
//
// All exported methods are safe for concurrent use. Frames are delivered by
// a single reader goroutine and handled one at a time, so a
// re-fetch-then-emit sequence is never interleaved with another frame. A
// session generation counter guards in-flight re-fetches against teardown:
// a snapshot fetched for a session that has since been closed is discarded.
//
// Usage:
//
//	cfg, _ := config.Load()
//	mgr := session.NewManager(rest.NewClient(cfg.ServerURL), cfg)
//	mgr.SetOnJoinCallback(func(ev session.Event) { ... })
//
//	game, err := mgr.CreateGame(ctx, 0)
//	...
//	mgr.CloseActiveGame(ctx)
package session
