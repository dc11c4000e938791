package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/ezDecode/SortVisualiser/internal/protocol"
	"github.com/ezDecode/SortVisualiser/internal/sortalgo"
)

var (
	// ErrInvalidRequest is reported for start requests the coordinator
	// refuses before running anything.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTransportClosed is returned (wrapped) by transports once the peer
	// is gone. Runs that hit it are abandoned without a sortError.
	ErrTransportClosed = errors.New("transport closed")
)

// Transport delivers events to the connected client in order.
type Transport interface {
	Send(msg protocol.Message) error
}

// DelayFunc resolves a speed preset to the delay between steps.
type DelayFunc func(speed string) time.Duration

type Options struct {
	ID             string
	RemoteAddr     string
	Registry       *sortalgo.Registry
	Delay          DelayFunc
	MaxArrayLength int // zero means unlimited
	Clock          clock.Clock
	Store          *Store
	Events         chan<- Event
	Logger         *zap.SugaredLogger
}

// Coordinator owns the Session of one connection and runs at most one step
// generator at a time on its behalf.
type Coordinator struct {
	id        string
	session   *Session
	transport Transport
	registry  *sortalgo.Registry
	delay     DelayFunc
	maxLen    int
	clock     clock.Clock
	store     *Store
	events    chan<- Event
	log       *zap.SugaredLogger

	// mu serializes sends with run cancellation so a superseded or
	// abandoned run can never emit after its replacement was accepted.
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

func NewCoordinator(t Transport, opts Options) *Coordinator {
	c := &Coordinator{
		id:        opts.ID,
		session:   New(),
		transport: t,
		registry:  opts.Registry,
		delay:     opts.Delay,
		maxLen:    opts.MaxArrayLength,
		clock:     opts.Clock,
		store:     opts.Store,
		events:    opts.Events,
		log:       opts.Logger,
	}
	if c.registry == nil {
		c.registry = sortalgo.Default()
	}
	if c.delay == nil {
		c.delay = DefaultDelay
	}
	if c.clock == nil {
		c.clock = clock.New()
	}
	if c.store == nil {
		c.store = NewStore()
	}
	if c.log == nil {
		c.log = zap.NewNop().Sugar()
	}
	c.log = c.log.With("session", c.id)

	now := c.clock.Now()
	c.store.Update(&Info{
		ID:             c.id,
		RemoteAddr:     opts.RemoteAddr,
		ConnectedAt:    now,
		LastActivityAt: now,
	})
	return c
}

// DefaultDelay is the fixed speed table: slow 1s, medium 500ms, fast 100ms,
// anything else 500ms.
func DefaultDelay(speed string) time.Duration {
	switch speed {
	case protocol.SpeedSlow:
		return time.Second
	case protocol.SpeedFast:
		return 100 * time.Millisecond
	default:
		return 500 * time.Millisecond
	}
}

// Session exposes the pause state, mainly for tests and status endpoints.
func (c *Coordinator) Session() *Session { return c.session }

// Handle dispatches one client event.
func (c *Coordinator) Handle(ctx context.Context, msg protocol.Message) {
	c.store.Modify(c.id, func(info *Info) { info.LastActivityAt = c.clock.Now() })

	switch msg.Type {
	case protocol.EventStartSort:
		req, err := protocol.DecodeStartSort(msg)
		if err != nil {
			c.supersede()
			c.reject(err)
			return
		}
		c.HandleStart(ctx, req)
	case protocol.EventPauseSort:
		c.HandlePause()
	case protocol.EventResumeSort:
		c.HandleResume()
	default:
		c.log.Debugw("ignoring event", "type", msg.Type)
	}
}

// HandleStart begins a run. Any run already in flight is cancelled first and
// emits nothing further. Unknown algorithms and oversized arrays are refused
// with a single sortError before any step.
func (c *Coordinator) HandleStart(ctx context.Context, req protocol.StartSortPayload) {
	if !c.supersede() {
		return
	}

	alg, err := c.registry.Lookup(req.Algorithm)
	if err != nil {
		c.log.Warnw("start refused", "algorithm", req.Algorithm, "error", err)
		c.reject(err)
		return
	}
	if c.maxLen > 0 && len(req.Array) > c.maxLen {
		c.reject(fmt.Errorf("array has %d elements, limit is %d: %w", len(req.Array), c.maxLen, ErrInvalidRequest))
		return
	}

	delay := c.delay(req.Speed)
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cancel()
		return
	}
	c.cancel, c.done = cancel, done
	c.mu.Unlock()

	c.session.begin()
	run := Run{
		SessionID: c.id,
		Algorithm: alg.Name(),
		Length:    len(req.Array),
		StartedAt: c.clock.Now(),
	}
	c.store.Modify(c.id, func(info *Info) {
		info.State = Running
		info.Paused = false
		info.Algorithm = run.Algorithm
		info.Steps = 0
	})
	c.publish(Event{Type: EventStarted, Run: run})
	c.log.Infow("run started", "algorithm", run.Algorithm, "length", run.Length, "delay", delay)

	go c.run(runCtx, cancel, done, alg, req.Array, delay, run)
}

// HandlePause sets the pause flag; the generator stops after its next step.
func (c *Coordinator) HandlePause() {
	c.session.Pause()
	c.store.Modify(c.id, func(info *Info) { info.Paused = true })
}

// HandleResume clears the pause flag and wakes the generator.
func (c *Coordinator) HandleResume() {
	c.session.Resume()
	c.store.Modify(c.id, func(info *Info) { info.Paused = false })
}

// HandleDisconnect tears the session down. An in-flight run is cancelled and
// its remaining sends are dropped.
func (c *Coordinator) HandleDisconnect() {
	c.mu.Lock()
	c.closed = true
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.store.Remove(c.id)
}

// Wait blocks until the current run, if any, has finished.
func (c *Coordinator) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// supersede cancels the in-flight run and waits for it to exit. It reports
// false once the coordinator is closed.
func (c *Coordinator) supersede() bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	cancel, done := c.cancel, c.done
	if cancel != nil {
		cancel()
	}
	c.mu.Unlock()

	if done != nil {
		<-done
	}
	return true
}

// sendFailure marks errors that came from the transport rather than from
// the generator.
type sendFailure struct{ err error }

func (e *sendFailure) Error() string { return "send: " + e.err.Error() }
func (e *sendFailure) Unwrap() error { return e.err }

// send delivers msg unless ctx was cancelled, atomically with respect to
// supersede and HandleDisconnect.
func (c *Coordinator) send(ctx context.Context, msg protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.transport.Send(msg); err != nil {
		return &sendFailure{err: err}
	}
	return nil
}

func (c *Coordinator) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}, alg sortalgo.Algorithm, input []int, delay time.Duration, run Run) {
	defer close(done)
	defer cancel()

	final, err := c.generate(ctx, alg, input, delay, &run)
	run.EndedAt = c.clock.Now()

	if err == nil {
		msg, merr := protocol.CompleteMessage(final)
		if merr == nil {
			err = c.send(ctx, msg)
		} else {
			err = merr
		}
	}

	var sf *sendFailure
	switch {
	case err == nil:
		c.log.Infow("run complete", "algorithm", run.Algorithm, "steps", run.Steps, "swaps", run.Swaps)
		c.finish(Event{Type: EventCompleted, Run: run})
	case ctx.Err() != nil || errors.As(err, &sf):
		c.log.Debugw("run abandoned", "algorithm", run.Algorithm, "error", err)
		run.Error = err.Error()
		c.finish(Event{Type: EventAbandoned, Run: run})
	default:
		c.log.Warnw("run failed", "algorithm", run.Algorithm, "error", err)
		run.Error = err.Error()
		if serr := c.send(ctx, protocol.ErrorMessage(err.Error())); serr != nil {
			c.log.Debugw("sortError not delivered", "error", serr)
		}
		c.finish(Event{Type: EventErrored, Run: run})
	}
}

func (c *Coordinator) finish(ev Event) {
	c.session.finish()
	c.store.Modify(c.id, func(info *Info) {
		info.State = Idle
		info.Paused = false
	})
	c.publish(ev)
}

// generate runs the algorithm, converting a panic into an error so a faulty
// generator ends the run with a sortError instead of the process.
func (c *Coordinator) generate(ctx context.Context, alg sortalgo.Algorithm, input []int, delay time.Duration, run *Run) (final []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Errorw("generator panic", "algorithm", alg.Name(), "panic", r)
			final, err = nil, fmt.Errorf("%s: %v", alg.Name(), r)
		}
	}()

	sink := func(ctx context.Context, step sortalgo.Step) error {
		msg, err := protocol.StepMessage(step)
		if err != nil {
			return err
		}
		if err := c.send(ctx, msg); err != nil {
			return err
		}
		run.Steps++
		if step.Compare != nil {
			run.Comparisons++
		}
		if step.Swap != nil {
			run.Swaps++
		}
		steps := run.Steps
		c.store.Modify(c.id, func(info *Info) { info.Steps = steps })

		if !c.session.Paused() {
			return nil
		}
		pausedAt := c.clock.Now()
		err = c.session.CheckPause(ctx)
		run.PausedFor += c.clock.Since(pausedAt)
		return err
	}

	return sortalgo.Run(ctx, alg, input, sink, delay, sortalgo.WithClock(c.clock))
}

// reject sends a sortError for a request that never started.
func (c *Coordinator) reject(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if serr := c.transport.Send(protocol.ErrorMessage(err.Error())); serr != nil {
		c.log.Debugw("sortError not delivered", "error", serr)
	}
}

func (c *Coordinator) publish(ev Event) {
	if c.events == nil {
		return
	}
	select {
	case c.events <- ev:
	default:
		c.log.Warnw("run event dropped", "type", ev.Type, "algorithm", ev.Run.Algorithm)
	}
}
