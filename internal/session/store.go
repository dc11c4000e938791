package session

import (
	"slices"
	"sync"
	"time"
)

// Info is a point-in-time view of one connection.
type Info struct {
	ID             string    `json:"id"`
	RemoteAddr     string    `json:"remoteAddr,omitempty"`
	State          State     `json:"state"`
	Paused         bool      `json:"paused"`
	Algorithm      string    `json:"algorithm,omitempty"`
	Steps          int       `json:"steps"`
	ConnectedAt    time.Time `json:"connectedAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
}

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Info
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Info),
	}
}

func (s *Store) Get(id string) (*Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	copy := *info
	return &copy, true
}

// GetAll returns copies of every entry ordered by connection time.
func (s *Store) GetAll() []*Info {
	s.mu.RLock()
	result := make([]*Info, 0, len(s.sessions))
	for _, info := range s.sessions {
		copy := *info
		result = append(result, &copy)
	}
	s.mu.RUnlock()

	slices.SortFunc(result, func(a, b *Info) int {
		if c := a.ConnectedAt.Compare(b.ConnectedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return result
}

func (s *Store) Update(info *Info) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *info
	s.sessions[info.ID] = &copy
}

// Modify applies fn to the stored entry under the write lock. It is a no-op
// for unknown ids.
func (s *Store) Modify(id string, fn func(*Info)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if info, ok := s.sessions[id]; ok {
		fn(info)
	}
}

func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ActiveCount returns the number of sessions with a run in progress.
func (s *Store) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, info := range s.sessions {
		if info.State == Running {
			count++
		}
	}
	return count
}
