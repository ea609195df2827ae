// Package mcp exposes the multiplayer lobby as MCP tools.
//
// The client is a thin proxy: every tool call is translated into the same
// REST request a game client would make, so an MCP-driven agent can browse
// open games, host or join one, and start or close it without any extra
// server support.
//
// It can be served over stdio (see the stdio-mcp mode of the main command)
// or mounted on an HTTP endpoint via GetMCPServer().HandleMessage.
package mcp
