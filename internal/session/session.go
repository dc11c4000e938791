package session

import (
	"context"
	"encoding/json"
	"sync"
)

type State int

const (
	Idle State = iota
	Running
)

var stateNames = map[State]string{
	Idle:    "idle",
	Running: "running",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Session is the control state of one connection: the run state, the pause
// flag and the one-shot waiter a paused generator blocks on.
type Session struct {
	mu     sync.Mutex
	state  State
	paused bool
	resume chan struct{} // closed exactly once by Resume; nil when nobody waits
}

func New() *Session {
	return &Session{}
}

// Pause asks the running generator to stop at its next suspension point.
func (s *Session) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

// Resume clears the pause flag and releases the waiter, if any. Resuming a
// session that is not paused is a no-op.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	s.release()
}

// CheckPause returns immediately unless the session is paused, in which
// case it blocks until Resume or until ctx is done.
func (s *Session) CheckPause(ctx context.Context) error {
	s.mu.Lock()
	if !s.paused {
		s.mu.Unlock()
		return nil
	}
	if s.resume == nil {
		s.resume = make(chan struct{})
	}
	wait := s.resume
	s.mu.Unlock()

	select {
	case <-wait:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Paused reports the pause flag.
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// State reports whether a run is in progress.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// begin moves the session to Running with a clear pause flag.
func (s *Session) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Running
	s.paused = false
	s.release()
}

// finish returns the session to Idle and releases any waiter.
func (s *Session) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Idle
	s.paused = false
	s.release()
}

// release must be called with mu held.
func (s *Session) release() {
	if s.resume != nil {
		close(s.resume)
		s.resume = nil
	}
}
