package sortalgo

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/benbjohnson/clock"
)

// Tracer owns the working array of a run. Algorithms read and mutate the
// array only through it, so every comparison and swap becomes a Step.
//
// Errors returned by the sink or the pacer are sticky: after the first one
// the tracer stops emitting and Err reports it. Algorithms check Err at
// loop boundaries to abandon the run early.
type Tracer struct {
	ctx   context.Context
	arr   []int
	sink  Sink
	clock clock.Clock
	delay time.Duration
	err   error
	steps int
	swaps int
}

func newTracer(ctx context.Context, input []int, sink Sink, delay time.Duration, clk clock.Clock) *Tracer {
	return &Tracer{
		ctx:   ctx,
		arr:   slices.Clone(input),
		sink:  sink,
		clock: clk,
		delay: delay,
	}
}

// Len returns the length of the working array.
func (t *Tracer) Len() int { return len(t.arr) }

// At returns the element at index i without emitting a step.
func (t *Tracer) At(i int) int { return t.arr[i] }

// Err returns the first error raised by the sink or the pacer.
func (t *Tracer) Err() error { return t.err }

// Steps returns the number of steps emitted so far.
func (t *Tracer) Steps() int { return t.steps }

// Compare emits a compare-only step for (i, j) and returns
// cmp.Compare(a[i], a[j]).
func (t *Tracer) Compare(i, j int) int {
	t.emit(Step{Array: slices.Clone(t.arr), Compare: pair(i, j)}, true)
	return cmp.Compare(t.arr[i], t.arr[j])
}

// Swap exchanges a[i] and a[j] and emits a compare+swap step for the pair.
// Callers are expected to have compared the pair just before.
func (t *Tracer) Swap(i, j int) {
	if t.err != nil {
		return
	}
	t.arr[i], t.arr[j] = t.arr[j], t.arr[i]
	t.swaps++
	t.emit(Step{Array: slices.Clone(t.arr), Compare: pair(i, j), Swap: pair(i, j)}, true)
}

// Exchange emits a compare-only step for (i, j) and then swaps the pair.
// Used when the swapped pair is not the pair that decided the swap.
func (t *Tracer) Exchange(i, j int) {
	t.Compare(i, j)
	t.Swap(i, j)
}

// Place swaps a[i] and a[j] without a preceding compare step. It is meant
// for moves that do not come from a comparison, such as merge rotations or
// distribution placements.
func (t *Tracer) Place(i, j int) {
	t.Swap(i, j)
}

// InOrder compares every adjacent pair and reports whether the array is
// already ascending. It stops at the first inversion.
func (t *Tracer) InOrder() bool {
	for i := 0; i+1 < len(t.arr); i++ {
		if t.Compare(i, i+1) > 0 {
			return false
		}
		if t.err != nil {
			return false
		}
	}
	return true
}

// settle emits the final step carrying the finished array. No delay follows.
func (t *Tracer) settle() {
	t.emit(Step{Array: slices.Clone(t.arr)}, false)
}

func (t *Tracer) emit(step Step, pace bool) {
	if t.err != nil {
		return
	}
	if err := t.ctx.Err(); err != nil {
		t.err = err
		return
	}
	t.steps++
	if err := t.sink(t.ctx, step); err != nil {
		t.err = err
		return
	}
	if pace && t.delay > 0 {
		t.err = t.wait()
	}
}

func (t *Tracer) wait() error {
	timer := t.clock.Timer(t.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-t.ctx.Done():
		return t.ctx.Err()
	}
}
