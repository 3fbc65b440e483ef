// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txpool

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// entryTable owns the full record of every admitted transaction, keyed by
// hash, and enforces the pool's capacity bound. It also maintains per-status
// counts so the ready/future split is always available in O(1).
//
// The table performs no locking; the pool serializes access.
type entryTable struct {
	maxEntries int
	entries    map[chainhash.Hash]*PoolEntry

	readyCount  int
	futureCount int
}

// newEntryTable creates an empty table bounded to maxEntries.
func newEntryTable(maxEntries int) *entryTable {
	return &entryTable{
		maxEntries: maxEntries,
		entries:    make(map[chainhash.Hash]*PoolEntry),
	}
}

// insert admits an entry. Fails with ErrDuplicateTransaction if the hash is
// already present and with ErrPoolFull when at capacity.
func (t *entryTable) insert(entry *PoolEntry) error {
	hash := entry.Tx.Hash
	if _, exists := t.entries[hash]; exists {
		return fmt.Errorf("%w: %v", ErrDuplicateTransaction, hash)
	}
	if len(t.entries) >= t.maxEntries {
		return fmt.Errorf("%w: %d entries", ErrPoolFull, t.maxEntries)
	}

	t.entries[hash] = entry
	t.bumpCount(entry.Status, 1)

	return nil
}

// remove deletes an entry, returning it and whether it existed.
func (t *entryTable) remove(hash chainhash.Hash) (*PoolEntry, bool) {
	entry, exists := t.entries[hash]
	if !exists {
		return nil, false
	}

	delete(t.entries, hash)
	t.bumpCount(entry.Status, -1)

	return entry, true
}

// get returns the entry for the hash, if admitted.
func (t *entryTable) get(hash chainhash.Hash) (*PoolEntry, bool) {
	entry, exists := t.entries[hash]
	return entry, exists
}

// contains returns whether the hash is admitted.
func (t *entryTable) contains(hash chainhash.Hash) bool {
	_, exists := t.entries[hash]
	return exists
}

// setStatus transitions an entry between lifecycle states, keeping the
// per-status counts consistent. All status changes must go through here.
func (t *entryTable) setStatus(entry *PoolEntry, status EntryStatus) {
	if entry.Status == status {
		return
	}
	t.bumpCount(entry.Status, -1)
	entry.Status = status
	t.bumpCount(status, 1)
}

// bumpCount adjusts the counter for the given status by delta.
func (t *entryTable) bumpCount(status EntryStatus, delta int) {
	switch status {
	case StatusReady:
		t.readyCount += delta
	case StatusFuture:
		t.futureCount += delta
	}
}

// size returns the number of admitted entries.
func (t *entryTable) size() int {
	return len(t.entries)
}
