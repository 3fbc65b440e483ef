// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package taggraph

// Queue implements a generic FIFO queue with amortized O(1) Enqueue and
// Dequeue operations. It is used as the worklist for promotion and demotion
// cascades, which makes the traversal iterative and bounds it by the number
// of tag-adjacency edges rather than by stack depth. The zero value is ready
// to use.
type Queue[T any] struct {
	items []T
	head  int
}

// NewQueue creates a new empty queue with optional initial capacity.
func NewQueue[T any](capacity ...int) *Queue[T] {
	cap := 0
	if len(capacity) > 0 {
		cap = capacity[0]
	}
	return &Queue[T]{
		items: make([]T, 0, cap),
	}
}

// Enqueue adds an item to the back of the queue.
func (q *Queue[T]) Enqueue(item T) {
	q.items = append(q.items, item)
}

// Dequeue removes and returns the item at the front of the queue.
// Returns false if the queue is empty.
func (q *Queue[T]) Dequeue() (T, bool) {
	if q.head >= len(q.items) {
		var zero T
		return zero, false
	}

	item := q.items[q.head]

	// Clear the slot so the backing array does not pin the item, then
	// reclaim the whole array once it has been fully drained.
	var zero T
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}

	return item, true
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	return len(q.items) - q.head
}

// IsEmpty returns true if the queue contains no items.
func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// Set implements a generic unordered set. It backs the visited bookkeeping
// of cascade traversals and the uniquely-lost tag collection during
// demotion. The zero value is NOT ready to use; use NewSet.
type Set[T comparable] struct {
	members map[T]struct{}
}

// NewSet creates a new empty set, optionally seeded with initial members.
func NewSet[T comparable](members ...T) *Set[T] {
	s := &Set[T]{
		members: make(map[T]struct{}, len(members)),
	}
	for _, m := range members {
		s.members[m] = struct{}{}
	}
	return s
}

// Add inserts an item into the set. Returns true if the item was not
// already present.
func (s *Set[T]) Add(item T) bool {
	if _, exists := s.members[item]; exists {
		return false
	}
	s.members[item] = struct{}{}
	return true
}

// Remove deletes an item from the set. Removing an absent item is a no-op.
func (s *Set[T]) Remove(item T) {
	delete(s.members, item)
}

// Contains returns whether the item is in the set.
func (s *Set[T]) Contains(item T) bool {
	_, exists := s.members[item]
	return exists
}

// Len returns the number of items in the set.
func (s *Set[T]) Len() int {
	return len(s.members)
}

// Items returns the members of the set as a slice in unspecified order.
func (s *Set[T]) Items() []T {
	items := make([]T, 0, len(s.members))
	for m := range s.members {
		items = append(items, m)
	}
	return items
}
