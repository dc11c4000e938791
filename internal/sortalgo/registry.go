package sortalgo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/samber/lo"
)

// ErrUnknownAlgorithm is returned by Registry.Lookup for unregistered names.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// Algorithm is one step-producing sorting strategy. Sort must leave the
// tracer's array ascending unless the tracer reports an error.
type Algorithm interface {
	Name() string
	Sort(t *Tracer) error
}

type runOptions struct {
	clock clock.Clock
}

// Option configures Run.
type Option func(*runOptions)

// WithClock sets the clock used for pacing delays.
func WithClock(c clock.Clock) Option {
	return func(o *runOptions) { o.clock = c }
}

// Run drives alg over a copy of input. Each step is passed to sink and, except
// for the final settle step, followed by delay. On success the last step
// emitted is a settle step whose array equals the returned slice.
func Run(ctx context.Context, alg Algorithm, input []int, sink Sink, delay time.Duration, opts ...Option) ([]int, error) {
	o := runOptions{clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}

	t := newTracer(ctx, input, sink, delay, o.clock)
	if err := alg.Sort(t); err != nil {
		return nil, err
	}
	if t.err != nil {
		return nil, t.err
	}
	t.settle()
	if t.err != nil {
		return nil, t.err
	}
	return slices.Clone(t.arr), nil
}

// Registry maps algorithm identifiers to implementations.
type Registry struct {
	algorithms map[string]Algorithm
}

// NewRegistry creates a registry holding algs. A later algorithm replaces an
// earlier one with the same name.
func NewRegistry(algs ...Algorithm) *Registry {
	r := &Registry{algorithms: make(map[string]Algorithm, len(algs))}
	for _, a := range algs {
		r.algorithms[a.Name()] = a
	}
	return r
}

// Default returns a registry with the nine built-in algorithms.
func Default() *Registry {
	return NewRegistry(
		Bubble{},
		Quick{},
		Merge{},
		Insertion{},
		Selection{},
		Heap{},
		Shell{},
		Counting{},
		Radix{},
	)
}

// Lookup returns the algorithm registered under name.
func (r *Registry) Lookup(name string) (Algorithm, error) {
	a, ok := r.algorithms[name]
	if !ok {
		return nil, fmt.Errorf("algorithm %s not found: %w", name, ErrUnknownAlgorithm)
	}
	return a, nil
}

// Names returns the registered identifiers in lexical order.
func (r *Registry) Names() []string {
	names := lo.Keys(r.algorithms)
	slices.Sort(names)
	return names
}
