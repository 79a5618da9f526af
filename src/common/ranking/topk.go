package ranking

// TopK retains the k best values seen so far. rank returns a negative number
// when a ranks better than b, so the worst retained value sits on the heap top.
type TopK[T any] struct {
	heap *Heap[T]
	rank func(T, T) int
	k    int
}

func NewTopK[T any](k int, rank func(T, T) int) *TopK[T] {
	if k <= 0 {
		return nil
	}

	return &TopK[T]{
		heap: NewHeap(rank),
		rank: rank,
		k:    k,
	}
}

func (t *TopK[T]) Add(value T) {
	if t.heap.Size() < t.k {
		t.heap.Push(value)
		return
	}

	if t.rank(value, t.heap.Top()) < 0 {
		t.heap.Pop()
		t.heap.Push(value)
	}
}

func (t *TopK[T]) Len() int {
	return t.heap.Size()
}

// Result drains the retained values, best first.
func (t *TopK[T]) Result() []T {
	result := make([]T, t.heap.Size())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = t.heap.Pop()
	}
	return result
}

// Best returns the single best value of values, if any.
func Best[T any](values []T, rank func(T, T) int) (T, bool) {
	top := NewTopK(1, rank)
	for _, value := range values {
		top.Add(value)
	}

	result := top.Result()
	if len(result) == 0 {
		var zero T
		return zero, false
	}
	return result[0], true
}
