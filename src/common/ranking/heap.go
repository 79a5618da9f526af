package ranking

const (
	INITIAL_SIZE = 16

	EMPTY_HEAP_ERROR = "heap is empty"
)

// Heap keeps the greatest element according to comparer at the top.
type Heap[T any] struct {
	data     []T
	comparer func(T, T) int
}

func NewHeap[T any](comparer func(T, T) int) *Heap[T] {
	return &Heap[T]{
		data:     make([]T, 0, INITIAL_SIZE),
		comparer: comparer,
	}
}

func (h *Heap[T]) IsEmpty() bool {
	return h.Size() == 0
}

func (h *Heap[T]) Size() int {
	return len(h.data)
}

func (h *Heap[T]) Top() T {
	if h.IsEmpty() {
		panic(EMPTY_HEAP_ERROR)
	}
	return h.data[0]
}

func (h *Heap[T]) Push(value T) {
	h.data = append(h.data, value)
	h.upHeap(len(h.data) - 1)
}

func (h *Heap[T]) Pop() T {
	if h.IsEmpty() {
		panic(EMPTY_HEAP_ERROR)
	}

	top := h.data[0]
	last := len(h.data) - 1
	h.swap(0, last)

	var zero T
	h.data[last] = zero
	h.data = h.data[:last]

	h.downHeap(0)
	return top
}

func (h *Heap[T]) upHeap(pos int) {
	for pos > 0 {
		parent := (pos - 1) / 2
		if h.comparer(h.data[pos], h.data[parent]) <= 0 {
			return
		}
		h.swap(pos, parent)
		pos = parent
	}
}

func (h *Heap[T]) downHeap(pos int) {
	for {
		greatest := pos
		left := pos*2 + 1
		right := pos*2 + 2

		if left < len(h.data) && h.comparer(h.data[left], h.data[greatest]) > 0 {
			greatest = left
		}
		if right < len(h.data) && h.comparer(h.data[right], h.data[greatest]) > 0 {
			greatest = right
		}
		if greatest == pos {
			return
		}
		h.swap(pos, greatest)
		pos = greatest
	}
}

func (h *Heap[T]) swap(i, j int) {
	h.data[i], h.data[j] = h.data[j], h.data[i]
}
