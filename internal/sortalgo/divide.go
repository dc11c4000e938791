package sortalgo

// Quick is quicksort with Lomuto partitioning around the last element.
type Quick struct{}

func (Quick) Name() string { return "quickSort" }

func (q Quick) Sort(t *Tracer) error {
	q.sort(t, 0, t.Len()-1)
	return nil
}

func (q Quick) sort(t *Tracer, lo, hi int) {
	if lo >= hi || t.Err() != nil {
		return
	}
	p := q.partition(t, lo, hi)
	q.sort(t, lo, p-1)
	q.sort(t, p+1, hi)
}

// partition keeps elements equal to the pivot on the left, so runs that are
// already in order are never exchanged.
func (Quick) partition(t *Tracer, lo, hi int) int {
	i := lo - 1
	for j := lo; j < hi; j++ {
		if t.Compare(j, hi) <= 0 {
			i++
			if i != j {
				t.Exchange(i, j)
			}
		}
		if t.Err() != nil {
			return hi
		}
	}
	if i+1 != hi {
		t.Exchange(i+1, hi)
	}
	return i + 1
}

// Merge is a top-down merge sort that merges in place. When the head of the
// right run is smaller it is rotated into position by adjacent swaps, so
// the whole run stays expressible as a swap sequence.
type Merge struct{}

func (Merge) Name() string { return "mergeSort" }

func (m Merge) Sort(t *Tracer) error {
	m.sort(t, 0, t.Len())
	return nil
}

// sort orders the half-open range [lo, hi).
func (m Merge) sort(t *Tracer, lo, hi int) {
	if hi-lo < 2 || t.Err() != nil {
		return
	}
	mid := lo + (hi-lo)/2
	m.sort(t, lo, mid)
	m.sort(t, mid, hi)
	m.merge(t, lo, mid, hi)
}

func (Merge) merge(t *Tracer, lo, mid, hi int) {
	i, j := lo, mid
	for i < j && j < hi {
		if t.Err() != nil {
			return
		}
		if t.Compare(i, j) <= 0 {
			i++
			continue
		}
		for k := j; k > i; k-- {
			t.Place(k-1, k)
		}
		i++
		j++
	}
}
