// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txpool

import (
	"bytes"
	"container/heap"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// queueItem tracks one ready entry inside the queue. The index field is
// maintained by the heap operations so arbitrary items can be removed when
// an entry is demoted or finalized.
type queueItem struct {
	hash     chainhash.Hash
	priority uint64
	sequence uint64
	index    int
}

// readyQueue orders the hashes of ready entries for block selection:
// strictly higher priority first, earlier admission first among equal
// priorities, and hash order as the final determinism fallback. Membership
// is kept exactly in sync with the ready set by the pool; selection works
// on copies and never drains the live heap.
//
// The queue performs no locking; the pool serializes access.
type readyQueue struct {
	items  []*queueItem
	lookup map[chainhash.Hash]*queueItem
}

// newReadyQueue creates an empty queue with the given initial capacity.
func newReadyQueue(capacity int) *readyQueue {
	return &readyQueue{
		items:  make([]*queueItem, 0, capacity),
		lookup: make(map[chainhash.Hash]*queueItem, capacity),
	}
}

// push adds a ready entry to the queue. Pushing an already-present hash is
// a no-op; the ordering key of an entry never changes while admitted.
func (rq *readyQueue) push(hash chainhash.Hash, priority, sequence uint64) {
	if _, exists := rq.lookup[hash]; exists {
		return
	}
	item := &queueItem{
		hash:     hash,
		priority: priority,
		sequence: sequence,
	}
	rq.lookup[hash] = item
	heap.Push((*readyHeap)(rq), item)
}

// remove drops an entry from the queue, returning whether it was present.
func (rq *readyQueue) remove(hash chainhash.Hash) bool {
	item, exists := rq.lookup[hash]
	if !exists {
		return false
	}
	heap.Remove((*readyHeap)(rq), item.index)
	delete(rq.lookup, hash)
	return true
}

// contains returns whether the hash is queued.
func (rq *readyQueue) contains(hash chainhash.Hash) bool {
	_, exists := rq.lookup[hash]
	return exists
}

// len returns the number of queued entries.
func (rq *readyQueue) len() int {
	return len(rq.items)
}

// ordered returns the queued hashes in selection order. It drains a copy of
// the heap, leaving the live queue untouched, and stops early once limit
// hashes have been produced. A negative limit returns everything.
func (rq *readyQueue) ordered(limit int) []chainhash.Hash {
	if limit < 0 || limit > len(rq.items) {
		limit = len(rq.items)
	}

	// Items are copied by value: the heap operations on the snapshot
	// rewrite index slots, which must not leak back into the live queue.
	tmp := &readyHeap{items: make([]*queueItem, len(rq.items))}
	for i, item := range rq.items {
		dup := *item
		tmp.items[i] = &dup
	}

	out := make([]chainhash.Hash, 0, limit)
	for len(out) < limit {
		item := heap.Pop(tmp).(*queueItem)
		out = append(out, item.hash)
	}
	return out
}

// readyHeap adapts readyQueue to heap.Interface. The indirection keeps the
// heap plumbing off the queue's public face.
type readyHeap readyQueue

func (h *readyHeap) Len() int { return len(h.items) }

func (h *readyHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	if a.sequence != b.sequence {
		return a.sequence < b.sequence
	}
	return bytes.Compare(a.hash[:], b.hash[:]) < 0
}

func (h *readyHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

func (h *readyHeap) Push(x any) {
	item := x.(*queueItem)
	item.index = len(h.items)
	h.items = append(h.items, item)
}

func (h *readyHeap) Pop() any {
	n := len(h.items)
	item := h.items[n-1]
	h.items[n-1] = nil // avoid memory leak
	h.items = h.items[:n-1]
	return item
}

var _ heap.Interface = (*readyHeap)(nil)
