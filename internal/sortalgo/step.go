// Package sortalgo implements the step generators: sorting algorithms that
// expose every comparison and swap as a Step so a remote observer can replay
// the run frame by frame.
package sortalgo

import (
	"context"
	"slices"
)

// Pair is an ordered pair of array indices. It encodes as a two-element
// JSON array.
type Pair [2]int

// Step is one unit of algorithm progress. Compare and Swap are nil when the
// step does not touch a pair; a step with both nil is the settle marker that
// closes a run.
type Step struct {
	Array   []int `json:"array"`
	Compare *Pair `json:"compare"`
	Swap    *Pair `json:"swap"`
}

// IsSettle reports whether s is the terminal settle marker.
func (s Step) IsSettle() bool {
	return s.Compare == nil && s.Swap == nil
}

// Clone returns a deep copy of s.
func (s Step) Clone() Step {
	c := Step{Array: slices.Clone(s.Array)}
	if s.Compare != nil {
		p := *s.Compare
		c.Compare = &p
	}
	if s.Swap != nil {
		p := *s.Swap
		c.Swap = &p
	}
	return c
}

// Sink receives each step as it is emitted. The generator does not proceed
// until Sink returns, so a sink may block to apply backpressure. A non-nil
// error aborts the run.
type Sink func(ctx context.Context, step Step) error

// Replay applies every swap in steps, in order, to a copy of input and
// returns the result.
func Replay(input []int, steps []Step) []int {
	arr := slices.Clone(input)
	for _, s := range steps {
		if s.Swap == nil {
			continue
		}
		i, j := s.Swap[0], s.Swap[1]
		arr[i], arr[j] = arr[j], arr[i]
	}
	return arr
}

func pair(i, j int) *Pair {
	return &Pair{i, j}
}
