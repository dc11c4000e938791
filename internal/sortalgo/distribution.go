package sortalgo

import (
	"errors"
	"fmt"
)

// maxCountingRange bounds the number of counting buckets.
const maxCountingRange = 1 << 16

// ErrRangeTooWide is returned by counting sort when max-min exceeds the
// bucket limit.
var ErrRangeTooWide = errors.New("value range too wide")

// Counting is a stable counting sort. It never compares elements; the
// computed placement is applied as a sequence of swaps.
type Counting struct{}

func (Counting) Name() string { return "countingSort" }

func (Counting) Sort(t *Tracer) error {
	n := t.Len()
	if n < 2 {
		return nil
	}
	lo, hi := bounds(t)
	span := uint(hi) - uint(lo)
	if span >= maxCountingRange {
		return fmt.Errorf("counting sort over [%d, %d]: %w", lo, hi, ErrRangeTooWide)
	}
	keys := make([]uint, n)
	for i := range keys {
		keys[i] = uint(t.At(i)) - uint(lo)
	}
	arrange(t, stableOrder(keys, int(span)+1))
	return nil
}

// Radix is an LSD radix sort in base 10 over values offset by the minimum,
// so negative elements are handled. Each digit pass is a stable placement.
// An already ascending input is left untouched.
type Radix struct{}

func (Radix) Name() string { return "radixSort" }

func (Radix) Sort(t *Tracer) error {
	n := t.Len()
	if n < 2 || t.InOrder() || t.Err() != nil {
		return nil
	}
	lo, hi := bounds(t)
	span := uint(hi) - uint(lo)
	keys := make([]uint, n)
	for exp := uint(1); ; exp *= 10 {
		for i := range keys {
			keys[i] = (uint(t.At(i)) - uint(lo)) / exp % 10
		}
		arrange(t, stableOrder(keys, 10))
		if t.Err() != nil || span/exp < 10 {
			return nil
		}
	}
}

func bounds(t *Tracer) (lo, hi int) {
	lo, hi = t.At(0), t.At(0)
	for i := 1; i < t.Len(); i++ {
		v := t.At(i)
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

// stableOrder returns the indices of keys in ascending key order, ties in
// index order. Every key must be below buckets.
func stableOrder(keys []uint, buckets int) []int {
	start := make([]int, buckets+1)
	for _, k := range keys {
		start[k+1]++
	}
	for b := 1; b <= buckets; b++ {
		start[b] += start[b-1]
	}
	order := make([]int, len(keys))
	for i, k := range keys {
		order[start[k]] = i
		start[k]++
	}
	return order
}

// arrange permutes the working array so that position i receives the
// element found at index order[i] when arrange was called.
func arrange(t *Tracer, order []int) {
	n := len(order)
	pos := make([]int, n) // element -> current index
	at := make([]int, n)  // current index -> element
	for i := range n {
		pos[i] = i
		at[i] = i
	}
	for i, id := range order {
		src := pos[id]
		if src == i {
			continue
		}
		t.Place(i, src)
		if t.Err() != nil {
			return
		}
		displaced := at[i]
		at[i], at[src] = id, displaced
		pos[id], pos[displaced] = i, src
	}
}
