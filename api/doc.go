// Package api implements a self-contained lobby server speaking the same
// protocol the session client consumes.
//
// It exists for local development and integration testing: `mp-client serve`
// runs it standalone, and the test suites point a real session.Manager at an
// in-process instance instead of mocking the wire.
//
// REST surface (JSON):
//
//	POST /mp-game/player                    register a player
//	POST /mp-game/new                       create a game
//	PUT  /mp-game/join/{gameId}/{playerId}  join an open game
//	GET  /mp-game/open                      list open games
//	PUT  /mp-game/close/{gameId}/{playerId} leave (host: close) a game
//	GET  /mp-game/{gameId}                  fetch a game snapshot
//	PUT  /mp-game/start/{gameId}            mark a game started
//
// Socket surface:
//
//	GET /multiplayer/{gameId}/{playerId}    upgrade to the multiplayer socket
//
// The hub announces PLAYER_JOINED when a peer's socket connects and
// PLAYER_REMOVED when it disconnects, relays every frame a peer sends to the
// other peers of the same game, and broadcasts CLOSE_GAME when the host
// closes the game over REST.
//
// State is held in memory behind a mutex; nothing survives a restart.
package api
