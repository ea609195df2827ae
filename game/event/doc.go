// Package event provides a small synchronous publish/subscribe bus used to
// fan socket frames out to presentation-layer callbacks.
//
// The bus has no knowledge of game semantics: events are addressed by name
// and carry an opaque payload. Subscribers for a name run synchronously in
// registration order. A panicking subscriber is recovered and logged without
// affecting the remaining subscribers or the emitter.
//
// Emit iterates a snapshot of the subscriber list taken when it is called, so
// a callback may subscribe or unsubscribe reentrantly without corrupting the
// dispatch in progress.
//
// Reset drops every registration and is the teardown hook that guarantees no
// subscriber from a finished multiplayer session can observe events from the
// next one.
package event
