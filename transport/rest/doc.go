// Package rest implements the HTTP client for the multiplayer lobby API.
//
// Endpoints (all JSON):
//
//	POST {base}mp-game/player                    create player
//	POST {base}mp-game/new                       create game
//	PUT  {base}mp-game/join/{gameId}/{playerId}  join game
//	GET  {base}mp-game/open                      list open games
//	PUT  {base}mp-game/close/{gameId}/{playerId} leave/close game
//	GET  {base}mp-game/{gameId}                  fetch game snapshot
//	PUT  {base}mp-game/start/{gameId}            start game
//
// Failures are reported through two error types: NetworkError for transport
// failures and non-2xx statuses, ProtocolError for responses that cannot be
// decoded into the expected record. Callers distinguish them with errors.As.
package rest
