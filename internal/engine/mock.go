// mock.go provides in-memory Engine and Session implementations for tests
// and for running without an interpreter installed.
package engine

import (
	"context"
	"sync"
)

// MockEngine is an Engine returning a canned session or error.
type MockEngine struct {
	StartErr error
	Session  *MockSession

	mu     sync.Mutex
	starts int
}

// Start returns the configured session, or StartErr if set.
func (e *MockEngine) Start(ctx context.Context) (Session, error) {
	e.mu.Lock()
	e.starts++
	e.mu.Unlock()

	if e.StartErr != nil {
		return nil, e.StartErr
	}
	if e.Session == nil {
		e.Session = &MockSession{}
	}
	return e.Session, nil
}

// Starts reports how many times Start was called.
func (e *MockEngine) Starts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.starts
}

// MockSession records the operations performed against it.
type MockSession struct {
	AddPathErr error
	EvalErr    error

	mu     sync.Mutex
	paths  []string
	evaled []string
	closed bool
}

// AddPath records dir, or fails with AddPathErr if set.
func (s *MockSession) AddPath(ctx context.Context, dir string) error {
	if s.AddPathErr != nil {
		return s.AddPathErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, dir)
	return nil
}

// Eval records command, or fails with EvalErr if set.
func (s *MockSession) Eval(ctx context.Context, command string) error {
	if s.EvalErr != nil {
		return s.EvalErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaled = append(s.evaled, command)
	return nil
}

// Close marks the session closed.
func (s *MockSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Paths returns the directories registered via AddPath.
func (s *MockSession) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

// Closed reports whether Close was called.
func (s *MockSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
