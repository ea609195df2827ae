// Package message defines the typed vocabulary exchanged between multiplayer
// clients and the lobby server.
//
// The package contains:
//   - Message, the JSON frame sent over the multiplayer socket, discriminated
//     by its Kind field
//   - Player and Game, the REST records mirrored client-side
//   - Status, the explicit open/started/closed state derived from a game
//     snapshot
//
// Messages are transient: they are constructed, sent or received, and
// discarded. Game and Player records are replaced wholesale whenever a fresh
// snapshot arrives from the server; client code never mutates them in place.
package message
