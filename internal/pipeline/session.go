package pipeline

import (
	"context"

	"github.com/Faultbox/aowow-viewer/internal/lookup"
)

// Session is one load. A session is stale once a newer load starts or the
// pipeline is closed; stale sessions must have no side effects.
type Session struct {
	id  uint64
	req lookup.ModelRequest
	ctx context.Context
	p   *Pipeline
}

// ID returns the session's generation number.
func (s *Session) ID() uint64 {
	return s.id
}

// Request returns the request the session was started for.
func (s *Session) Request() lookup.ModelRequest {
	return s.req
}

// Context is cancelled when the session goes stale.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Stale reports whether the session has been superseded or closed.
func (s *Session) Stale() bool {
	return s.p.closed.Load() || s.p.generation.Load() != s.id
}

// check returns ErrStale for a stale session.
func (s *Session) check() error {
	if s.Stale() {
		return ErrStale
	}
	return nil
}
