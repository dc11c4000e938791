// Package stats aggregates run lifecycle events into persistent per-algorithm
// statistics.
package stats

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/ezDecode/SortVisualiser/internal/session"
)

const defaultSaveInterval = 30 * time.Second

const (
	OutcomeCompleted = "completed"
	OutcomeErrored   = "errored"
	OutcomeAbandoned = "abandoned"
)

// Tracker observes run events and maintains aggregate stats. Events arrive
// on the channel returned by NewTracker; Run must be running to consume them.
type Tracker struct {
	persist  *Store // nil keeps stats in memory only
	interval time.Duration
	clock    clock.Clock
	log      *zap.SugaredLogger

	events chan session.Event

	mu     sync.Mutex
	stats  *Stats
	dirty  bool
	active map[string]bool // session IDs with a run in flight
}

type Option func(*Tracker)

func WithClock(c clock.Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(t *Tracker) { t.log = l }
}

// NewTracker loads existing stats from persist and returns the tracker with
// the send side of its event channel. A zero interval uses 30s.
func NewTracker(persist *Store, interval time.Duration, opts ...Option) (*Tracker, chan<- session.Event, error) {
	st := newStats()
	if persist != nil {
		loaded, err := persist.Load()
		if err != nil {
			return nil, nil, err
		}
		st = loaded
	}
	if interval <= 0 {
		interval = defaultSaveInterval
	}
	ch := make(chan session.Event, 256)
	t := &Tracker{
		persist:  persist,
		interval: interval,
		clock:    clock.New(),
		log:      zap.NewNop().Sugar(),
		events:   ch,
		stats:    st,
		active:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, ch, nil
}

// Run processes events and periodically saves dirty stats. It blocks until
// ctx is cancelled, then performs a final save.
func (t *Tracker) Run(ctx context.Context) {
	ticker := t.clock.Ticker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.drain()
			t.save()
			return
		case ev := <-t.events:
			t.process(ev)
		case <-ticker.C:
			t.mu.Lock()
			dirty := t.dirty
			t.mu.Unlock()
			if dirty {
				t.save()
			}
		}
	}
}

// Stats returns a deep copy of the current aggregate.
func (t *Tracker) Stats() *Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats.clone()
}

// drain processes events already queued when Run is asked to stop.
func (t *Tracker) drain() {
	for {
		select {
		case ev := <-t.events:
			t.process(ev)
		default:
			return
		}
	}
}

func (t *Tracker) process(ev session.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := ev.Run
	alg := t.stats.PerAlgorithm[r.Algorithm]

	switch ev.Type {
	case session.EventStarted:
		t.active[r.SessionID] = true
		t.stats.TotalRuns++
		alg.Runs++
		t.stats.MaxConcurrentRuns = max(t.stats.MaxConcurrentRuns, len(t.active))
		t.stats.LongestInput = max(t.stats.LongestInput, r.Length)
	case session.EventCompleted, session.EventErrored, session.EventAbandoned:
		delete(t.active, r.SessionID)
		outcome := OutcomeAbandoned
		switch ev.Type {
		case session.EventCompleted:
			outcome = OutcomeCompleted
			t.stats.TotalCompletions++
			alg.Completions++
		case session.EventErrored:
			outcome = OutcomeErrored
			t.stats.TotalErrors++
			alg.Errors++
		default:
			t.stats.TotalAbandoned++
			alg.Abandoned++
		}
		t.stats.TotalSteps += r.Steps
		alg.Steps += r.Steps
		alg.Comparisons += r.Comparisons
		alg.Swaps += r.Swaps
		alg.MaxSteps = max(alg.MaxSteps, r.Steps)
		if !r.EndedAt.IsZero() && !r.StartedAt.IsZero() {
			alg.TotalMillis += r.EndedAt.Sub(r.StartedAt).Milliseconds()
		}

		t.stats.Recent = append(t.stats.Recent, RunRecord{
			Algorithm: r.Algorithm,
			Length:    r.Length,
			Steps:     r.Steps,
			Outcome:   outcome,
			Error:     r.Error,
			EndedAt:   r.EndedAt,
		})
		if n := len(t.stats.Recent); n > recentRuns {
			t.stats.Recent = slices.Clone(t.stats.Recent[n-recentRuns:])
		}
	default:
		return
	}

	t.stats.PerAlgorithm[r.Algorithm] = alg
	t.dirty = true
}

func (t *Tracker) save() {
	t.mu.Lock()
	st := t.stats.clone()
	t.dirty = false
	t.mu.Unlock()

	if t.persist == nil {
		return
	}
	if err := t.persist.Save(st); err != nil {
		t.log.Errorw("failed to save stats", "path", t.persist.Path(), "error", err)
	}
}

// WriteTable renders the per-algorithm breakdown of st as a text table.
func WriteTable(w io.Writer, st *Stats) error {
	table := tablewriter.NewWriter(w)
	table.Header("Algorithm", "Runs", "Completed", "Errors", "Abandoned", "Steps", "Swaps", "Max steps")

	names := lo.Keys(st.PerAlgorithm)
	slices.Sort(names)
	for _, name := range names {
		a := st.PerAlgorithm[name]
		row := []string{
			name,
			strconv.Itoa(a.Runs),
			strconv.Itoa(a.Completions),
			strconv.Itoa(a.Errors),
			strconv.Itoa(a.Abandoned),
			strconv.Itoa(a.Steps),
			strconv.Itoa(a.Swaps),
			strconv.Itoa(a.MaxSteps),
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("stats table: %w", err)
		}
	}
	return table.Render()
}
