// Package websocket provides the client side of the multiplayer socket
// connection.
//
// One Socket exists per active game. It is dialed right after a game is
// created or joined, addressed by game and player id, and closed during
// session teardown.
//
// Frames in both directions are JSON-encoded message.Message records. A
// single reader goroutine decodes incoming frames and hands them to the
// registered FrameHandler one at a time; the next frame is not read until the
// handler returns, so handlers never overlap.
//
// Close is idempotent: closing an already-closed socket, or one whose peer
// has gone away, never fails and never double-fires the error callback.
package websocket
