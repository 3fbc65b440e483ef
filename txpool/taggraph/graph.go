// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package taggraph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

var (
	// ErrNodeExists is returned when attempting to add a duplicate entry.
	ErrNodeExists = errors.New("entry already exists in graph")

	// ErrNodeNotFound is returned when an entry is not found in the graph.
	ErrNodeNotFound = errors.New("entry not found in graph")
)

// Tag is an opaque identifier expressing an ordering dependency between
// transactions, for example an account's next sequence number. The pool
// never interprets the contents.
type Tag string

// node holds the immutable dependency declaration of a single admitted
// entry.
type node struct {
	hash     chainhash.Hash
	requires []Tag
	provides []Tag
}

// TagGraph indexes admitted entries by the tags they require and provide.
//
// The graph is intentionally free of lifecycle state: it does not know
// whether an entry is ready or future. The caller flips provider membership
// with MarkProvided/UnmarkProvided as entries change state and uses
// Dependents to find the entries a state change may affect.
type TagGraph struct {
	// nodes stores the dependency declaration of every admitted entry.
	nodes map[chainhash.Hash]*node

	// requiredBy maps a tag to the set of entries that require it,
	// regardless of their current state. This is the adjacency index that
	// lets cascades visit only tag-adjacent entries.
	requiredBy map[Tag]map[chainhash.Hash]struct{}

	// providers maps a tag to the set of entries currently providing it
	// while ready. A tag is satisfied exactly while its set is non-empty.
	providers map[Tag]map[chainhash.Hash]struct{}

	// edgeCount tracks the total number of requires edges for metrics.
	edgeCount int

	// mu protects the graph structure. RWMutex allows concurrent reads
	// (queries) while serializing writes.
	mu sync.RWMutex
}

// New creates a new empty tag graph.
func New() *TagGraph {
	return &TagGraph{
		nodes:      make(map[chainhash.Hash]*node),
		requiredBy: make(map[Tag]map[chainhash.Hash]struct{}),
		providers:  make(map[Tag]map[chainhash.Hash]struct{}),
	}
}

// AddNode registers an entry's dependency declaration. The requires and
// provides slices are retained by the graph and must not be mutated by the
// caller afterwards. The entry starts with none of its provided tags
// published; use MarkProvided once it becomes ready.
func (g *TagGraph) AddNode(hash chainhash.Hash, requires,
	provides []Tag) error {

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[hash]; exists {
		return fmt.Errorf("%w: %v", ErrNodeExists, hash)
	}

	g.nodes[hash] = &node{
		hash:     hash,
		requires: requires,
		provides: provides,
	}

	for _, tag := range requires {
		deps, exists := g.requiredBy[tag]
		if !exists {
			deps = make(map[chainhash.Hash]struct{})
			g.requiredBy[tag] = deps
		}
		if _, exists := deps[hash]; !exists {
			deps[hash] = struct{}{}
			g.edgeCount++
		}
	}

	return nil
}

// RemoveNode drops an entry from the graph, including any provider
// registrations that are still live. Callers that need the uniquely-lost
// tags of a ready entry must call UnmarkProvided before removal.
func (g *TagGraph) RemoveNode(hash chainhash.Hash) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, exists := g.nodes[hash]
	if !exists {
		return fmt.Errorf("%w: %v", ErrNodeNotFound, hash)
	}

	for _, tag := range n.requires {
		if deps, exists := g.requiredBy[tag]; exists {
			if _, member := deps[hash]; member {
				delete(deps, hash)
				g.edgeCount--
			}
			if len(deps) == 0 {
				delete(g.requiredBy, tag)
			}
		}
	}

	// Strip any remaining provider registrations so a missed unmark
	// cannot leave a tag satisfied with no live provider.
	g.unmarkProvidedLocked(n)

	delete(g.nodes, hash)

	return nil
}

// HasNode returns whether the entry is known to the graph.
func (g *TagGraph) HasNode(hash chainhash.Hash) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, exists := g.nodes[hash]
	return exists
}

// NodeCount returns the number of entries in the graph.
func (g *TagGraph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.nodes)
}

// EdgeCount returns the total number of requires edges in the graph.
func (g *TagGraph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.edgeCount
}

// IsSatisfied returns whether at least one ready entry currently provides
// the tag.
func (g *TagGraph) IsSatisfied(tag Tag) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.providers[tag]) > 0
}

// Satisfied reports whether every tag the entry requires is currently
// provided. An unknown entry is never satisfied. An entry's own provides
// are not published until it is marked, so a transaction requiring a tag it
// also provides cannot satisfy itself.
func (g *TagGraph) Satisfied(hash chainhash.Hash) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, exists := g.nodes[hash]
	if !exists {
		return false
	}

	for _, tag := range n.requires {
		if len(g.providers[tag]) == 0 {
			return false
		}
	}

	return true
}

// MarkProvided publishes every tag the entry provides, registering the
// entry as a provider. Idempotent.
func (g *TagGraph) MarkProvided(hash chainhash.Hash) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, exists := g.nodes[hash]
	if !exists {
		return fmt.Errorf("%w: %v", ErrNodeNotFound, hash)
	}

	for _, tag := range n.provides {
		set, exists := g.providers[tag]
		if !exists {
			set = make(map[chainhash.Hash]struct{})
			g.providers[tag] = set
		}
		set[hash] = struct{}{}
	}

	return nil
}

// UnmarkProvided retracts the entry's provider registrations and returns
// the tags that became unsatisfied because this entry was their only
// remaining provider. Idempotent: retracting an entry that is not a
// provider returns nil.
func (g *TagGraph) UnmarkProvided(hash chainhash.Hash) []Tag {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, exists := g.nodes[hash]
	if !exists {
		return nil
	}

	return g.unmarkProvidedLocked(n)
}

// unmarkProvidedLocked removes the node from all provider sets it appears
// in, collecting tags whose sets became empty. Must be called with the
// write lock held.
func (g *TagGraph) unmarkProvidedLocked(n *node) []Tag {
	var lost []Tag
	for _, tag := range n.provides {
		set, exists := g.providers[tag]
		if !exists {
			continue
		}
		if _, member := set[n.hash]; !member {
			continue
		}
		delete(set, n.hash)
		if len(set) == 0 {
			delete(g.providers, tag)
			lost = append(lost, tag)
		}
	}
	return lost
}

// Dependents returns the entries that require the given tag. The result is
// a copy and remains valid across subsequent graph mutations.
func (g *TagGraph) Dependents(tag Tag) []chainhash.Hash {
	g.mu.RLock()
	defer g.mu.RUnlock()

	deps, exists := g.requiredBy[tag]
	if !exists {
		return nil
	}

	hashes := make([]chainhash.Hash, 0, len(deps))
	for hash := range deps {
		hashes = append(hashes, hash)
	}
	return hashes
}
