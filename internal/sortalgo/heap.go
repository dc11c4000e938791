package sortalgo

// Heap is heapsort over a max-heap. An input that is already ascending is
// detected up front and left untouched, since heapifying it would reorder
// it only to restore the same order.
type Heap struct{}

func (Heap) Name() string { return "heapSort" }

func (h Heap) Sort(t *Tracer) error {
	n := t.Len()
	if t.InOrder() || t.Err() != nil {
		return nil
	}
	for root := n/2 - 1; root >= 0; root-- {
		h.siftDown(t, root, n)
	}
	for end := n - 1; end > 0; end-- {
		if t.Err() != nil {
			return nil
		}
		t.Exchange(0, end)
		h.siftDown(t, 0, end)
	}
	return nil
}

func (Heap) siftDown(t *Tracer, root, end int) {
	for {
		child := 2*root + 1
		if child >= end || t.Err() != nil {
			return
		}
		if child+1 < end && t.Compare(child, child+1) < 0 {
			child++
		}
		if t.Compare(root, child) >= 0 {
			return
		}
		t.Swap(root, child)
		root = child
	}
}
