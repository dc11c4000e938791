// Package playback buffers incoming sort steps and releases them one per
// display refresh, independent of how fast the server produces them.
package playback

import (
	"errors"
	"fmt"
	"slices"

	"github.com/eapache/queue"

	"github.com/ezDecode/SortVisualiser/internal/sortalgo"
)

// ErrSortFailed wraps the message of a sortError event.
var ErrSortFailed = errors.New("sort failed")

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseStreaming
	PhaseDone
	PhaseFailed
)

var phaseNames = map[Phase]string{
	PhaseIdle:      "idle",
	PhaseStreaming: "sorting",
	PhaseDone:      "done",
	PhaseFailed:    "failed",
}

func (p Phase) String() string {
	if n, ok := phaseNames[p]; ok {
		return n
	}
	return "unknown"
}

// Frame is what the renderer draws for one step.
type Frame struct {
	Array       []int
	Compare     *sortalgo.Pair
	Swap        *sortalgo.Pair
	Comparisons int
	Swaps       int
	Final       bool   // authoritative sorted array from sortComplete
	Banner      string // set on the final frame when Options.ShowBanner
}

// Options are the behavior flags of a player variant.
type Options struct {
	ShowBanner bool
	Banner     string
}

// Engine is the client-side playback state. It is owned by a single event
// loop and is not safe for concurrent use.
//
// The owner drives the drain: when Enqueue or Resume return true it
// schedules a refresh and calls Advance on each refresh until Advance
// returns false.
type Engine struct {
	opts Options

	buf      *queue.Queue
	phase    Phase
	paused   bool
	draining bool

	comparisons int
	swaps       int
	rendered    int
	last        []int
}

func New(opts Options) *Engine {
	if opts.ShowBanner && opts.Banner == "" {
		opts.Banner = "Offline demo"
	}
	return &Engine{
		opts: opts,
		buf:  queue.New(),
	}
}

// Begin resets the engine for a new run.
func (e *Engine) Begin() {
	e.buf = queue.New()
	e.phase = PhaseStreaming
	e.paused = false
	e.draining = false
	e.comparisons, e.swaps, e.rendered = 0, 0, 0
}

// Enqueue appends step to the buffer. It reports whether the caller must
// start a drain. Steps arriving outside a run are dropped.
func (e *Engine) Enqueue(step sortalgo.Step) bool {
	if e.phase != PhaseStreaming {
		return false
	}
	e.buf.Add(step)
	return e.kick()
}

// Advance pops the oldest buffered step and returns the frame to render. It
// returns false, ending the drain, when paused, finished or empty.
func (e *Engine) Advance() (Frame, bool) {
	if e.phase != PhaseStreaming || e.paused || e.buf.Length() == 0 {
		e.draining = false
		return Frame{}, false
	}
	e.draining = true

	step := e.buf.Remove().(sortalgo.Step)
	if step.Compare != nil {
		e.comparisons++
	}
	if step.Swap != nil {
		e.swaps++
	}
	e.rendered++
	e.last = step.Array

	return Frame{
		Array:       step.Array,
		Compare:     step.Compare,
		Swap:        step.Swap,
		Comparisons: e.comparisons,
		Swaps:       e.swaps,
	}, true
}

// Pause halts the drain. Enqueue keeps buffering.
func (e *Engine) Pause() {
	e.paused = true
}

// Resume clears the pause and reports whether the caller must restart the
// drain. Resuming an engine that is not paused is a no-op.
func (e *Engine) Resume() bool {
	if !e.paused {
		return false
	}
	e.paused = false
	return e.kick()
}

// Complete discards unrendered steps and returns the final frame built from
// the server's array.
func (e *Engine) Complete(final []int) Frame {
	e.discard()
	e.phase = PhaseDone
	e.paused = false
	e.last = slices.Clone(final)

	f := Frame{
		Array:       e.last,
		Comparisons: e.comparisons,
		Swaps:       e.swaps,
		Final:       true,
	}
	if e.opts.ShowBanner {
		f.Banner = e.opts.Banner
	}
	return f
}

// Fail discards unrendered steps and ends the run. The returned error
// carries the server's message.
func (e *Engine) Fail(message string) error {
	e.discard()
	e.phase = PhaseFailed
	e.paused = false
	return fmt.Errorf("%w: %s", ErrSortFailed, message)
}

// Reset drops all run state, used when the transport goes away.
func (e *Engine) Reset() {
	e.discard()
	e.phase = PhaseIdle
	e.paused = false
	e.comparisons, e.swaps, e.rendered = 0, 0, 0
}

func (e *Engine) Phase() Phase     { return e.phase }
func (e *Engine) Paused() bool     { return e.paused }
func (e *Engine) Pending() int     { return e.buf.Length() }
func (e *Engine) Rendered() int    { return e.rendered }
func (e *Engine) Comparisons() int { return e.comparisons }
func (e *Engine) Swaps() int       { return e.swaps }

// Last returns the most recently rendered array.
func (e *Engine) Last() []int { return e.last }

func (e *Engine) kick() bool {
	if e.draining || e.paused || e.phase != PhaseStreaming || e.buf.Length() == 0 {
		return false
	}
	e.draining = true
	return true
}

func (e *Engine) discard() {
	e.buf = queue.New()
	e.draining = false
}
