// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txpool

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/btcsuite/tagpool/txpool/taggraph"
)

// Tag is an opaque dependency identifier. See the taggraph package for the
// satisfaction semantics.
type Tag = taggraph.Tag

// Transaction is a candidate for inclusion in a block. It is immutable once
// submitted: the pool takes ownership at admission and never modifies it,
// and callers must not mutate it afterwards either.
//
// The pool does not verify intrinsic validity (signatures, balances); an
// upstream validity layer is expected to have done so. Only the dependency
// declaration, priority, and longevity are interpreted here.
type Transaction struct {
	// Hash uniquely identifies the transaction. It is caller-supplied and
	// assumed globally unique per logical transaction.
	Hash chainhash.Hash

	// Sender identifies the submitting account.
	Sender string

	// Nonce is the sender's sequence number for this transaction.
	Nonce uint64

	// Priority orders ready transactions for block inclusion. Higher
	// values are selected first.
	Priority uint64

	// Longevity is the number of heights the transaction remains eligible
	// for inclusion after admission before it is swept.
	Longevity uint64

	// Requires lists the tags that must be satisfied before the
	// transaction may be considered ready.
	Requires []Tag

	// Provides lists the tags this transaction satisfies once ready.
	Provides []Tag

	// Payload is opaque to the pool.
	Payload []byte
}

// NonceTag derives the conventional tag for a sender's sequence number.
// A transaction carrying nonce n typically requires NonceTag(sender, n-1)
// and provides NonceTag(sender, n), which makes per-sender ordering a plain
// tag dependency.
func NonceTag(sender string, nonce uint64) Tag {
	return Tag(fmt.Sprintf("nonce:%s:%d", sender, nonce))
}

// EntryStatus identifies the lifecycle state of a pool entry.
type EntryStatus uint8

const (
	// StatusFuture marks an entry awaiting satisfaction of at least one
	// required tag.
	StatusFuture EntryStatus = iota

	// StatusReady marks an entry whose required tags are all currently
	// satisfied, making it eligible for block selection.
	StatusReady

	// StatusInvalid marks an entry rejected after admission. No path in
	// the pool currently produces it; rejection happens at submission
	// time, before an entry exists.
	StatusInvalid
)

// String returns the status as a human-readable string.
func (s EntryStatus) String() string {
	switch s {
	case StatusFuture:
		return "future"
	case StatusReady:
		return "ready"
	case StatusInvalid:
		return "invalid"
	}
	return fmt.Sprintf("unknown(%d)", uint8(s))
}

// PoolEntry wraps an admitted transaction with its lifecycle state. Entries
// returned by queries are copies; the pool's own records are only mutated
// by the promotion/demotion machinery and the expiry sweep.
type PoolEntry struct {
	// Tx is the admitted transaction. Shared, immutable.
	Tx *Transaction

	// Status is the entry's current lifecycle state.
	Status EntryStatus

	// InsertedAt is the pool height at admission, the base for longevity
	// expiry.
	InsertedAt uint64

	// Sequence is the entry's position in global admission order. It
	// breaks priority ties so selection order is deterministic even when
	// several entries are admitted at the same height.
	Sequence uint64

	// Retries counts failed promotion attempts. Informational only.
	Retries int
}

// expired reports whether the entry's longevity has elapsed at the given
// height. A longevity large enough to overflow the deadline means the entry
// never expires.
func (e *PoolEntry) expired(height uint64) bool {
	deadline := e.InsertedAt + e.Tx.Longevity
	if deadline < e.InsertedAt {
		return false
	}
	return height > deadline
}
