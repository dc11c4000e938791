package session

import "time"

// EventType classifies run lifecycle events.
type EventType int

const (
	EventStarted   EventType = iota // run accepted, generator launched
	EventCompleted                  // sortComplete sent
	EventErrored                    // sortError sent
	EventAbandoned                  // disconnect or superseded by a new start
)

// Event carries a run summary to observers.
type Event struct {
	Type EventType
	Run  Run
}

// Run summarizes one sort run.
type Run struct {
	SessionID   string        `json:"sessionId"`
	Algorithm   string        `json:"algorithm"`
	Length      int           `json:"length"`
	Steps       int           `json:"steps"`
	Comparisons int           `json:"comparisons"`
	Swaps       int           `json:"swaps"`
	PausedFor   time.Duration `json:"pausedFor"`
	StartedAt   time.Time     `json:"startedAt"`
	EndedAt     time.Time     `json:"endedAt,omitempty"`
	Error       string        `json:"error,omitempty"`
}
