// Package config resolves the client's connection settings.
//
// Settings come from, in order of precedence: explicit values set by the
// caller, environment variables, and defaults. A .env file in the working
// directory is loaded into the environment first when present.
//
// Environment variables:
//
//	MP_SERVER_URL   lobby base URL (default http://localhost:8080/)
//	MP_PLAYER_NAME  display name registered with the server
//
// The socket URL is always derived from the server URL by swapping the
// scheme (http -> ws, https -> wss), so the two can never point at different
// hosts.
package config
