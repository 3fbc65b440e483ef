// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txpool

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/btcsuite/tagpool/txpool/taggraph"
)

// promoteCascade attempts to promote the given future entry and then any
// future entries that become satisfied as a consequence, breadth-first over
// the tag adjacency. The traversal is iterative with an explicit worklist
// so its depth is bounded by memory rather than the stack, and each visit
// re-checks the entry's status so re-enqueued hashes are harmless.
//
// Returns the number of entries promoted. Must be called with the pool
// lock held.
func (tp *TxPool) promoteCascade(start chainhash.Hash) int {
	work := taggraph.NewQueue[chainhash.Hash]()
	work.Enqueue(start)

	promoted := 0
	for !work.IsEmpty() {
		hash, _ := work.Dequeue()

		entry, exists := tp.entries.get(hash)
		if !exists || entry.Status != StatusFuture {
			continue
		}

		if !tp.graph.Satisfied(hash) {
			// Not all required tags are provided yet. The entry
			// stays future; a later promotion of one of its
			// providers will re-enqueue it.
			entry.Retries++
			continue
		}

		tp.entries.setStatus(entry, StatusReady)
		if err := tp.graph.MarkProvided(hash); err != nil {
			// The entry was just looked up, so the graph must know
			// it; a miss here means the two indexes diverged.
			log.Errorf("Entry %v missing from tag graph during "+
				"promotion: %v", hash, err)
		}
		tp.ready.push(hash, entry.Tx.Priority, entry.Sequence)

		promoted++
		tp.stats.promoted++

		log.Tracef("Promoted transaction %v (priority %d)", hash,
			entry.Tx.Priority)

		// Re-evaluate every future entry adjacent to a tag this entry
		// just published.
		for _, tag := range entry.Tx.Provides {
			for _, dep := range tp.graph.Dependents(tag) {
				if dep == hash {
					continue
				}
				depEntry, exists := tp.entries.get(dep)
				if exists && depEntry.Status == StatusFuture {
					work.Enqueue(dep)
				}
			}
		}
	}

	return promoted
}

// demoteCascade walks the tags in lost, demoting every ready entry that
// required one of them back to future, retracting the demoted entries' own
// provided tags, and following any tags that become unsatisfied in turn.
// Breadth-first with an explicit worklist; the status guard makes repeat
// visits no-ops, so the pass is idempotent and terminates after touching
// each ready entry at most once.
//
// Returns the number of entries demoted. Must be called with the pool lock
// held.
func (tp *TxPool) demoteCascade(lost []Tag) int {
	work := taggraph.NewQueue[Tag]()
	for _, tag := range lost {
		work.Enqueue(tag)
	}

	demoted := 0
	for !work.IsEmpty() {
		tag, _ := work.Dequeue()

		for _, dep := range tp.graph.Dependents(tag) {
			entry, exists := tp.entries.get(dep)
			if !exists || entry.Status != StatusReady {
				continue
			}

			tp.entries.setStatus(entry, StatusFuture)
			tp.ready.remove(dep)

			log.Tracef("Demoted transaction %v (lost tag %q)", dep,
				tag)

			for _, next := range tp.graph.UnmarkProvided(dep) {
				work.Enqueue(next)
			}

			demoted++
			tp.stats.demoted++
		}
	}

	return demoted
}

// removeEntry routes an entry out of the pool through the common removal
// path used by finalization, expiration, and eviction: when the entry is
// ready, its provided tags are retracted and dependents that lose their
// last provider are demoted, then the entry is dropped from the graph and
// the table. Returns the removed entry, or false when the hash is unknown.
//
// Must be called with the pool lock held.
func (tp *TxPool) removeEntry(hash chainhash.Hash) (*PoolEntry, bool) {
	entry, exists := tp.entries.get(hash)
	if !exists {
		return nil, false
	}

	wasReady := entry.Status == StatusReady

	var lost []Tag
	if wasReady {
		tp.ready.remove(hash)
		lost = tp.graph.UnmarkProvided(hash)
	}

	tp.entries.remove(hash)
	if err := tp.graph.RemoveNode(hash); err != nil {
		log.Errorf("Entry %v missing from tag graph during removal: %v",
			hash, err)
	}

	// The demotion pass runs after the entry is fully gone so the
	// traversal cannot revisit it through a self-referential tag.
	if wasReady {
		tp.demoteCascade(lost)
	}

	return entry, true
}
