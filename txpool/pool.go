// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txpool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/lru"

	"github.com/btcsuite/tagpool/txpool/taggraph"
)

const (
	// DefaultMaxPoolSize is the default maximum number of transactions
	// the pool will admit.
	DefaultMaxPoolSize = 5000

	// DefaultFinalizedCacheSize is the default number of recently
	// finalized transaction hashes remembered for duplicate rejection.
	DefaultFinalizedCacheSize = 1000
)

// Policy houses the configuration parameters which control transaction
// admission.
type Policy struct {
	// MaxPoolSize is the maximum number of transactions admitted at any
	// one time. Zero selects DefaultMaxPoolSize.
	MaxPoolSize int

	// LowPriorityEviction allows a submission into a full pool to evict
	// the resident entry with the lowest priority, provided the incoming
	// transaction's priority is strictly higher. When disabled,
	// submissions into a full pool fail with ErrPoolFull.
	LowPriorityEviction bool
}

// Config is a descriptor containing the transaction pool configuration.
type Config struct {
	// Policy defines the admission policy parameters.
	Policy Policy

	// FinalizedCacheSize overrides the number of recently finalized
	// hashes remembered for duplicate rejection. Zero selects
	// DefaultFinalizedCacheSize.
	FinalizedCacheSize uint
}

// Stats is a point-in-time snapshot of pool state and lifetime counters.
type Stats struct {
	// PoolSize is the number of admitted entries.
	PoolSize int

	// ReadyCount is the number of entries eligible for selection.
	ReadyCount int

	// FutureCount is the number of entries awaiting dependencies.
	FutureCount int

	// Height is the pool's current height.
	Height uint64

	// Lifetime counters.
	Admitted  uint64
	Promoted  uint64
	Demoted   uint64
	Finalized uint64
	Expired   uint64
	Evicted   uint64
}

// TxPool holds candidate transactions until their ordering dependencies are
// satisfied, orders the satisfied ones by priority for block construction,
// and reclaims space through finalization and longevity expiry.
//
// All mutable state sits behind a single lock: mutating operations run
// their cascades to completion before any other operation observes the
// pool, and read-only queries copy out under the read lock. No operation
// blocks on I/O; everything is synchronous and bounded by the pool size.
type TxPool struct {
	cfg Config

	// entries owns every admitted transaction's record and the capacity
	// bound.
	entries *entryTable

	// graph indexes entries by required and provided tags and drives the
	// promotion/demotion cascades.
	graph *taggraph.TagGraph

	// ready orders the hashes of ready entries for selection.
	ready *readyQueue

	// finalized remembers recently committed hashes so their
	// resubmission is rejected as a duplicate. Expired entries are
	// deliberately not recorded; they may be resubmitted.
	finalized lru.Cache

	// height is the pool's view of the chain height, advanced only by
	// AdvanceHeight.
	height uint64

	// nextSequence is the global admission counter used for priority
	// tie-breaking.
	nextSequence uint64

	// senderNonces tracks the highest finalized nonce per sender.
	senderNonces map[string]uint64

	stats struct {
		admitted  uint64
		promoted  uint64
		demoted   uint64
		finalized uint64
		expired   uint64
		evicted   uint64
	}

	mtx sync.RWMutex
}

// New returns a new transaction pool for the given configuration. A nil
// config selects defaults.
func New(cfg *Config) *TxPool {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	if c.Policy.MaxPoolSize <= 0 {
		c.Policy.MaxPoolSize = DefaultMaxPoolSize
	}
	if c.FinalizedCacheSize == 0 {
		c.FinalizedCacheSize = DefaultFinalizedCacheSize
	}

	return &TxPool{
		cfg:          c,
		entries:      newEntryTable(c.Policy.MaxPoolSize),
		graph:        taggraph.New(),
		ready:        newReadyQueue(c.Policy.MaxPoolSize),
		finalized:    lru.NewCache(c.FinalizedCacheSize),
		senderNonces: make(map[string]uint64),
	}
}

// Submit admits a transaction into the pool as a future entry and runs the
// promotion cascade, so a transaction with no unsatisfied requirements
// becomes ready immediately, along with any dependents it unblocks.
//
// Fails with ErrDuplicateTransaction when the hash is already admitted or
// recently finalized, and with ErrPoolFull when the pool is at capacity and
// policy does not allow eviction.
func (tp *TxPool) Submit(tx *Transaction) error {
	tp.mtx.Lock()
	defer tp.mtx.Unlock()

	if tp.finalized.Contains(tx.Hash) {
		return fmt.Errorf("%w: %v was recently finalized",
			ErrDuplicateTransaction, tx.Hash)
	}

	entry := &PoolEntry{
		Tx:         tx,
		Status:     StatusFuture,
		InsertedAt: tp.height,
		Sequence:   tp.nextSequence,
	}

	err := tp.entries.insert(entry)
	if errors.Is(err, ErrPoolFull) && tp.cfg.Policy.LowPriorityEviction {
		if tp.evictLowestLocked(tx.Priority) {
			err = tp.entries.insert(entry)
		}
	}
	if err != nil {
		return err
	}
	tp.nextSequence++

	if err := tp.graph.AddNode(tx.Hash, tx.Requires, tx.Provides); err != nil {
		// The table accepted the hash, so the graph cannot already
		// know it.
		tp.entries.remove(tx.Hash)
		return err
	}

	tp.stats.admitted++
	tp.promoteCascade(tx.Hash)

	log.Debugf("Accepted transaction %v (pool size: %d, ready: %d)",
		tx.Hash, tp.entries.size(), tp.entries.readyCount)

	return nil
}

// evictLowestLocked removes the resident entry with the strictly lowest
// priority when that priority is below the incoming one, routing it through
// the standard removal path so dependents demote correctly. Among equal
// priorities the youngest admission is preferred as the victim. Returns
// whether an entry was evicted.
func (tp *TxPool) evictLowestLocked(incoming uint64) bool {
	var victim *PoolEntry
	for _, entry := range tp.entries.entries {
		if victim == nil ||
			entry.Tx.Priority < victim.Tx.Priority ||
			(entry.Tx.Priority == victim.Tx.Priority &&
				entry.Sequence > victim.Sequence) {

			victim = entry
		}
	}

	if victim == nil || victim.Tx.Priority >= incoming {
		return false
	}

	tp.removeEntry(victim.Tx.Hash)
	tp.stats.evicted++

	log.Debugf("Evicted transaction %v (priority %d) for higher priority "+
		"submission", victim.Tx.Hash, victim.Tx.Priority)

	return true
}

// SelectForBlock returns up to limit ready transactions in selection order:
// highest priority first, admission order among equals. Selection is a
// preview; pool membership is unchanged. A negative limit returns the
// entire ready set.
func (tp *TxPool) SelectForBlock(limit int) []*Transaction {
	tp.mtx.RLock()
	defer tp.mtx.RUnlock()

	return tp.readyTransactionsLocked(limit)
}

// ReadySnapshot returns every ready transaction in selection order.
func (tp *TxPool) ReadySnapshot() []*Transaction {
	tp.mtx.RLock()
	defer tp.mtx.RUnlock()

	return tp.readyTransactionsLocked(-1)
}

// readyTransactionsLocked materializes the ordered ready set from a queue
// snapshot. Must be called with the pool lock held.
func (tp *TxPool) readyTransactionsLocked(limit int) []*Transaction {
	hashes := tp.ready.ordered(limit)

	txns := make([]*Transaction, 0, len(hashes))
	for _, hash := range hashes {
		entry, exists := tp.entries.get(hash)
		if !exists {
			// The queue mirrors the ready set under the lock, so a
			// miss means the indexes diverged.
			log.Errorf("Ready queue entry %v missing from table",
				hash)
			continue
		}
		txns = append(txns, entry.Tx)
	}
	return txns
}

// FinalizeBlock removes the given committed transactions from the pool,
// retracting their provided tags and demoting any dependents that lose
// their last provider. Hashes no longer known to the pool are skipped, not
// errors: a committed transaction may already have been swept by expiry, so
// repeating a finalization is a harmless no-op.
//
// Returns the number of entries removed.
func (tp *TxPool) FinalizeBlock(hashes []chainhash.Hash) int {
	tp.mtx.Lock()
	defer tp.mtx.Unlock()

	removed := 0
	for _, hash := range hashes {
		entry, ok := tp.removeEntry(hash)
		if !ok {
			continue
		}

		tp.finalized.Add(hash)
		if entry.Tx.Nonce > tp.senderNonces[entry.Tx.Sender] {
			tp.senderNonces[entry.Tx.Sender] = entry.Tx.Nonce
		}

		removed++
		tp.stats.finalized++
	}

	log.Debugf("Finalized %d of %d transactions (pool size: %d)", removed,
		len(hashes), tp.entries.size())

	return removed
}

// AdvanceHeight moves the pool to the given height and sweeps every entry
// whose longevity has elapsed, routing each through the same removal path
// as finalization regardless of its state.
//
// Returns the number of entries expired.
func (tp *TxPool) AdvanceHeight(newHeight uint64) int {
	tp.mtx.Lock()
	defer tp.mtx.Unlock()

	tp.height = newHeight

	var stale []chainhash.Hash
	for hash, entry := range tp.entries.entries {
		if entry.expired(newHeight) {
			stale = append(stale, hash)
		}
	}

	expired := 0
	for _, hash := range stale {
		// A cascade triggered by an earlier removal cannot have
		// dropped another stale entry, but the guard costs nothing.
		if _, ok := tp.removeEntry(hash); ok {
			expired++
			tp.stats.expired++
		}
	}

	if expired > 0 {
		log.Debugf("Expired %d transactions at height %d (remaining: "+
			"%d)", expired, newHeight, tp.entries.size())
	}

	return expired
}

// Height returns the pool's current height.
func (tp *TxPool) Height() uint64 {
	tp.mtx.RLock()
	defer tp.mtx.RUnlock()

	return tp.height
}

// Count returns the total number of admitted transactions.
func (tp *TxPool) Count() int {
	tp.mtx.RLock()
	defer tp.mtx.RUnlock()

	return tp.entries.size()
}

// ReadyCount returns the number of transactions eligible for selection.
func (tp *TxPool) ReadyCount() int {
	tp.mtx.RLock()
	defer tp.mtx.RUnlock()

	return tp.entries.readyCount
}

// FutureCount returns the number of transactions awaiting dependencies.
func (tp *TxPool) FutureCount() int {
	tp.mtx.RLock()
	defer tp.mtx.RUnlock()

	return tp.entries.futureCount
}

// HaveTransaction returns whether the hash is currently admitted.
func (tp *TxPool) HaveTransaction(hash chainhash.Hash) bool {
	tp.mtx.RLock()
	defer tp.mtx.RUnlock()

	return tp.entries.contains(hash)
}

// GetEntry returns a copy of the entry for the given hash. An entry whose
// longevity elapsed relative to the current height is removed on the spot
// and reported as absent, so lookups never surface stale entries between
// height advances.
func (tp *TxPool) GetEntry(hash chainhash.Hash) (PoolEntry, bool) {
	tp.mtx.Lock()
	defer tp.mtx.Unlock()

	entry, exists := tp.entries.get(hash)
	if !exists {
		return PoolEntry{}, false
	}

	if entry.expired(tp.height) {
		tp.removeEntry(hash)
		tp.stats.expired++

		log.Debugf("Expired transaction %v on lookup at height %d",
			hash, tp.height)

		return PoolEntry{}, false
	}

	return *entry, true
}

// IsRecentlyFinalized returns whether the hash was committed into a block
// recently enough to still be in the duplicate-rejection cache.
func (tp *TxPool) IsRecentlyFinalized(hash chainhash.Hash) bool {
	tp.mtx.RLock()
	defer tp.mtx.RUnlock()

	return tp.finalized.Contains(hash)
}

// NextNonce returns the next expected nonce for a sender, one past the
// highest nonce the sender has had finalized. Senders with no finalized
// transactions start at 1.
func (tp *TxPool) NextNonce(sender string) uint64 {
	tp.mtx.RLock()
	defer tp.mtx.RUnlock()

	return tp.senderNonces[sender] + 1
}

// Stats returns a snapshot of pool state and lifetime counters.
func (tp *TxPool) Stats() Stats {
	tp.mtx.RLock()
	defer tp.mtx.RUnlock()

	return Stats{
		PoolSize:    tp.entries.size(),
		ReadyCount:  tp.entries.readyCount,
		FutureCount: tp.entries.futureCount,
		Height:      tp.height,
		Admitted:    tp.stats.admitted,
		Promoted:    tp.stats.promoted,
		Demoted:     tp.stats.demoted,
		Finalized:   tp.stats.finalized,
		Expired:     tp.stats.expired,
		Evicted:     tp.stats.evicted,
	}
}
