package sortalgo

// Bubble is the classic adjacent-exchange sort.
type Bubble struct{}

func (Bubble) Name() string { return "bubbleSort" }

func (Bubble) Sort(t *Tracer) error {
	n := t.Len()
	for i := 0; i < n-1; i++ {
		for j := 0; j < n-i-1; j++ {
			if t.Compare(j, j+1) > 0 {
				t.Swap(j, j+1)
			}
			if t.Err() != nil {
				return nil
			}
		}
	}
	return nil
}

// Insertion sinks each element left through adjacent swaps.
type Insertion struct{}

func (Insertion) Name() string { return "insertionSort" }

func (Insertion) Sort(t *Tracer) error {
	for i := 1; i < t.Len(); i++ {
		for j := i; j > 0 && t.Compare(j-1, j) > 0; j-- {
			t.Swap(j-1, j)
		}
		if t.Err() != nil {
			return nil
		}
	}
	return nil
}

// Selection scans for the minimum of the unsorted suffix and exchanges it
// into place.
type Selection struct{}

func (Selection) Name() string { return "selectionSort" }

func (Selection) Sort(t *Tracer) error {
	n := t.Len()
	for i := 0; i < n-1; i++ {
		lowest := i
		for j := i + 1; j < n; j++ {
			if t.Compare(j, lowest) < 0 {
				lowest = j
			}
		}
		if t.Err() != nil {
			return nil
		}
		if lowest != i {
			t.Exchange(i, lowest)
		}
	}
	return nil
}

// Shell is insertion sort over a halving gap sequence.
type Shell struct{}

func (Shell) Name() string { return "shellSort" }

func (Shell) Sort(t *Tracer) error {
	n := t.Len()
	for gap := n / 2; gap > 0; gap /= 2 {
		for i := gap; i < n; i++ {
			for j := i; j >= gap && t.Compare(j-gap, j) > 0; j -= gap {
				t.Swap(j-gap, j)
			}
			if t.Err() != nil {
				return nil
			}
		}
	}
	return nil
}
