// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txpool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEntryTableInsert verifies admission, duplicate rejection, and the
// capacity bound.
func TestEntryTableInsert(t *testing.T) {
	table := newEntryTable(2)

	tx1 := makeTx("alice", 1, 100, 10, nil, nil)
	tx2 := makeTx("bob", 1, 100, 10, nil, nil)
	tx3 := makeTx("carol", 1, 100, 10, nil, nil)

	require.NoError(t, table.insert(&PoolEntry{Tx: tx1}))
	require.NoError(t, table.insert(&PoolEntry{Tx: tx2}))
	require.Equal(t, 2, table.size())

	err := table.insert(&PoolEntry{Tx: tx1})
	require.ErrorIs(t, err, ErrDuplicateTransaction)

	err = table.insert(&PoolEntry{Tx: tx3})
	require.ErrorIs(t, err, ErrPoolFull)
	require.Equal(t, 2, table.size())

	require.True(t, table.contains(tx1.Hash))
	require.False(t, table.contains(tx3.Hash))
}

// TestEntryTableRemove verifies removal returns the entry and frees
// capacity.
func TestEntryTableRemove(t *testing.T) {
	table := newEntryTable(1)

	tx1 := makeTx("alice", 1, 100, 10, nil, nil)
	require.NoError(t, table.insert(&PoolEntry{Tx: tx1}))

	entry, ok := table.remove(tx1.Hash)
	require.True(t, ok)
	require.Equal(t, tx1.Hash, entry.Tx.Hash)
	require.Equal(t, 0, table.size())

	_, ok = table.remove(tx1.Hash)
	require.False(t, ok)

	// Capacity is available again.
	tx2 := makeTx("bob", 1, 100, 10, nil, nil)
	require.NoError(t, table.insert(&PoolEntry{Tx: tx2}))
}

// TestEntryTableStatusCounts verifies the per-status counters track
// transitions and removals.
func TestEntryTableStatusCounts(t *testing.T) {
	table := newEntryTable(10)

	tx1 := makeTx("alice", 1, 100, 10, nil, nil)
	tx2 := makeTx("bob", 1, 100, 10, nil, nil)
	e1 := &PoolEntry{Tx: tx1, Status: StatusFuture}
	e2 := &PoolEntry{Tx: tx2, Status: StatusFuture}
	require.NoError(t, table.insert(e1))
	require.NoError(t, table.insert(e2))

	require.Equal(t, 0, table.readyCount)
	require.Equal(t, 2, table.futureCount)

	table.setStatus(e1, StatusReady)
	require.Equal(t, 1, table.readyCount)
	require.Equal(t, 1, table.futureCount)

	// Redundant transition changes nothing.
	table.setStatus(e1, StatusReady)
	require.Equal(t, 1, table.readyCount)

	table.setStatus(e1, StatusFuture)
	require.Equal(t, 0, table.readyCount)
	require.Equal(t, 2, table.futureCount)

	table.setStatus(e2, StatusReady)
	table.remove(e2.Tx.Hash)
	require.Equal(t, 0, table.readyCount)
	require.Equal(t, 1, table.futureCount)
}
