package sequence

import "container/heap"

type PriorityItem[T any] struct {
	Value T
	index int
}

type priorityQueue[T any] struct {
	items []*PriorityItem[T]
	less  func(a, b T) bool
}

func (pq *priorityQueue[T]) Len() int {
	return len(pq.items)
}

func (pq *priorityQueue[T]) Less(i, j int) bool {
	return pq.less(pq.items[i].Value, pq.items[j].Value)
}

func (pq *priorityQueue[T]) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
	pq.items[i].index = i
	pq.items[j].index = j
}

func (pq *priorityQueue[T]) Push(x any) {
	item := x.(*PriorityItem[T])
	item.index = len(pq.items)
	pq.items = append(pq.items, item)
}

func (pq *priorityQueue[T]) Pop() any {
	old := pq.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // avoid memory leak
	item.index = -1 // for safety
	pq.items = old[0 : n-1]
	return item
}

// PriorityQueue is a binary heap; Drain returns items so that less holds for
// each against every later one.
type PriorityQueue[T any] struct {
	pq priorityQueue[T]
}

func NewPriorityQueue[T any](less func(a, b T) bool) *PriorityQueue[T] {
	pq := &PriorityQueue[T]{pq: priorityQueue[T]{less: less}}
	heap.Init(&pq.pq)
	return pq
}

func (pq *PriorityQueue[T]) Enqueue(value T) {
	heap.Push(&pq.pq, &PriorityItem[T]{Value: value})
}

// Drain dequeues every item in priority order.
func (pq *PriorityQueue[T]) Drain() []T {
	out := make([]T, 0, pq.pq.Len())
	for pq.pq.Len() > 0 {
		out = append(out, heap.Pop(&pq.pq).(*PriorityItem[T]).Value)
	}
	return out
}

func (pq *PriorityQueue[T]) Len() int {
	return pq.pq.Len()
}
