package queue

import "container/heap"

// Queue is the mutable container owned by a Server. Implementations need no
// synchronization: only the owning actor loop ever calls them.
type Queue[T any] interface {
	Enqueue(item T)
	Dequeue() (T, bool)
}

// Lener is implemented by queues that can report their depth.
type Lener interface {
	Len() int
}

// FIFO appends at the tail and removes from the head.
type FIFO[T any] struct {
	items []T
	head  int
}

// NewFIFO returns an empty first-in first-out queue.
func NewFIFO[T any]() *FIFO[T] {
	return &FIFO[T]{}
}

func (q *FIFO[T]) Enqueue(item T) {
	q.items = append(q.items, item)
}

func (q *FIFO[T]) Dequeue() (T, bool) {
	var zero T
	if q.head >= len(q.items) {
		return zero, false
	}
	item := q.items[q.head]
	q.items[q.head] = zero
	q.head++

	// Reclaim the consumed prefix once it dominates the backing array.
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 32 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return item, true
}

func (q *FIFO[T]) Len() int {
	return len(q.items) - q.head
}

// Stack is a last-in first-out queue.
type Stack[T any] struct {
	items []T
}

// NewStack returns an empty LIFO queue.
func NewStack[T any]() *Stack[T] {
	return &Stack[T]{}
}

func (s *Stack[T]) Enqueue(item T) {
	s.items = append(s.items, item)
}

func (s *Stack[T]) Dequeue() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	last := len(s.items) - 1
	item := s.items[last]
	s.items[last] = zero
	s.items = s.items[:last]
	return item, true
}

func (s *Stack[T]) Len() int {
	return len(s.items)
}

// Priority dequeues the item for which less reports it sorts first.
// Items of equal priority come out in insertion order.
type Priority[T any] struct {
	h priorityHeap[T]
}

// NewPriority returns an empty priority queue ordered by less.
func NewPriority[T any](less func(a, b T) bool) *Priority[T] {
	return &Priority[T]{h: priorityHeap[T]{less: less}}
}

func (p *Priority[T]) Enqueue(item T) {
	heap.Push(&p.h, prioritized[T]{item: item, seq: p.h.seq})
	p.h.seq++
}

func (p *Priority[T]) Dequeue() (T, bool) {
	if p.h.Len() == 0 {
		var zero T
		return zero, false
	}
	return heap.Pop(&p.h).(prioritized[T]).item, true
}

func (p *Priority[T]) Len() int {
	return p.h.Len()
}

type prioritized[T any] struct {
	item T
	seq  uint64
}

type priorityHeap[T any] struct {
	items []prioritized[T]
	less  func(a, b T) bool
	seq   uint64
}

func (h priorityHeap[T]) Len() int { return len(h.items) }

func (h priorityHeap[T]) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if h.less(a.item, b.item) {
		return true
	}
	if h.less(b.item, a.item) {
		return false
	}
	return a.seq < b.seq
}

func (h priorityHeap[T]) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *priorityHeap[T]) Push(x any) { h.items = append(h.items, x.(prioritized[T])) }

func (h *priorityHeap[T]) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	old[n-1] = prioritized[T]{}
	h.items = old[:n-1]
	return item
}
