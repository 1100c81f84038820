// Package game implements Mastermind: secret generation, guess evaluation and
// the round state machine, plus the sessions, persistence and HTTP/WebSocket
// endpoints that host them.
//
// Evaluate and Round have no I/O and no locking. Session is the
// serialization point for a single game.
package game
