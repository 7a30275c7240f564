// Package engine manages sessions against the external numerical engine that
// runs the multiple target tracking scripts. The engine is an abstract
// capability: start a session, register script directories on its search
// path, evaluate commands, shut down. The process-backed implementation in
// this package drives a MATLAB-style interactive interpreter over stdin and
// stdout.
package engine

import "context"

// Session is one running engine session. Sessions are not safe for concurrent
// use, callers invoking from multiple goroutines must serialize their own
// access.
type Session interface {
	// AddPath appends dir to the engine's script search path.
	AddPath(ctx context.Context, dir string) error
	// Eval evaluates a single command in the session.
	Eval(ctx context.Context, command string) error
	// Close shuts the session down and releases the underlying process.
	// Close is idempotent.
	Close() error
}

// Engine starts sessions. Exactly one session per process is the expected
// usage, nothing enforces it.
type Engine interface {
	Start(ctx context.Context) (Session, error)
}
