// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package taggraph

import (
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// testHash derives a deterministic hash for test entries.
func testHash(id int) chainhash.Hash {
	return chainhash.HashH([]byte(fmt.Sprintf("entry-%d", id)))
}

// TestAddNode verifies insertion, duplicate rejection, and edge accounting.
func TestAddNode(t *testing.T) {
	g := New()

	h1 := testHash(1)
	err := g.AddNode(h1, []Tag{"a", "b"}, []Tag{"c"})
	require.NoError(t, err)
	require.True(t, g.HasNode(h1))
	require.Equal(t, 1, g.NodeCount())
	require.Equal(t, 2, g.EdgeCount())

	err = g.AddNode(h1, nil, nil)
	require.ErrorIs(t, err, ErrNodeExists)
	require.Equal(t, 1, g.NodeCount())
}

// TestRemoveNode verifies removal cleans up adjacency and provider state.
func TestRemoveNode(t *testing.T) {
	g := New()

	h1 := testHash(1)
	require.NoError(t, g.AddNode(h1, []Tag{"a"}, []Tag{"b"}))
	require.NoError(t, g.MarkProvided(h1))
	require.True(t, g.IsSatisfied("b"))

	require.NoError(t, g.RemoveNode(h1))
	require.False(t, g.HasNode(h1))
	require.Equal(t, 0, g.NodeCount())
	require.Equal(t, 0, g.EdgeCount())

	// Removal must retract provider registrations even without an
	// explicit unmark.
	require.False(t, g.IsSatisfied("b"))
	require.Empty(t, g.Dependents("a"))

	err := g.RemoveNode(h1)
	require.ErrorIs(t, err, ErrNodeNotFound)
}

// TestSatisfaction verifies the provider index semantics.
func TestSatisfaction(t *testing.T) {
	g := New()

	provider := testHash(1)
	consumer := testHash(2)
	require.NoError(t, g.AddNode(provider, nil, []Tag{"t0"}))
	require.NoError(t, g.AddNode(consumer, []Tag{"t0"}, []Tag{"t1"}))

	// Nothing is marked yet.
	require.False(t, g.IsSatisfied("t0"))
	require.False(t, g.Satisfied(consumer))

	// The provider itself has no requirements.
	require.True(t, g.Satisfied(provider))

	require.NoError(t, g.MarkProvided(provider))
	require.True(t, g.IsSatisfied("t0"))
	require.True(t, g.Satisfied(consumer))

	// Unknown entries are never satisfied.
	require.False(t, g.Satisfied(testHash(99)))

	// Marking an unknown entry fails.
	require.ErrorIs(t, g.MarkProvided(testHash(99)), ErrNodeNotFound)
}

// TestSelfProvidedTagDoesNotSelfSatisfy verifies that an entry requiring a
// tag it also provides cannot satisfy itself: its provides are not
// published until it is marked, which callers only do after promotion.
func TestSelfProvidedTagDoesNotSelfSatisfy(t *testing.T) {
	g := New()

	h1 := testHash(1)
	require.NoError(t, g.AddNode(h1, []Tag{"loop"}, []Tag{"loop"}))
	require.False(t, g.Satisfied(h1))

	// Another ready entry providing the tag does satisfy it.
	h2 := testHash(2)
	require.NoError(t, g.AddNode(h2, nil, []Tag{"loop"}))
	require.NoError(t, g.MarkProvided(h2))
	require.True(t, g.Satisfied(h1))
}

// TestUnmarkProvidedUniqueLoss verifies that a tag only reports as lost
// once its final provider retracts.
func TestUnmarkProvidedUniqueLoss(t *testing.T) {
	g := New()

	h1 := testHash(1)
	h2 := testHash(2)
	require.NoError(t, g.AddNode(h1, nil, []Tag{"shared", "only1"}))
	require.NoError(t, g.AddNode(h2, nil, []Tag{"shared"}))
	require.NoError(t, g.MarkProvided(h1))
	require.NoError(t, g.MarkProvided(h2))

	// h1 retracts: "shared" still has h2, "only1" is uniquely lost.
	lost := g.UnmarkProvided(h1)
	require.ElementsMatch(t, []Tag{"only1"}, lost)
	require.True(t, g.IsSatisfied("shared"))
	require.False(t, g.IsSatisfied("only1"))

	// Unmark is idempotent.
	require.Empty(t, g.UnmarkProvided(h1))

	// h2 retracts: now "shared" is lost too.
	lost = g.UnmarkProvided(h2)
	require.ElementsMatch(t, []Tag{"shared"}, lost)
	require.False(t, g.IsSatisfied("shared"))
}

// TestDependents verifies the adjacency index returns copies.
func TestDependents(t *testing.T) {
	g := New()

	h1 := testHash(1)
	h2 := testHash(2)
	h3 := testHash(3)
	require.NoError(t, g.AddNode(h1, []Tag{"t"}, nil))
	require.NoError(t, g.AddNode(h2, []Tag{"t"}, nil))
	require.NoError(t, g.AddNode(h3, []Tag{"other"}, nil))

	deps := g.Dependents("t")
	require.ElementsMatch(t, []chainhash.Hash{h1, h2}, deps)
	require.Empty(t, g.Dependents("unknown"))

	// The returned slice must stay valid across mutations.
	require.NoError(t, g.RemoveNode(h1))
	require.ElementsMatch(t, []chainhash.Hash{h1, h2}, deps)
	require.ElementsMatch(t, []chainhash.Hash{h2}, g.Dependents("t"))
}

// TestPropertyProviderIndexConsistency verifies, across random mark/unmark
// sequences, that a tag is satisfied exactly while at least one marked
// entry provides it.
func TestPropertyProviderIndexConsistency(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := New()

		tags := []Tag{"a", "b", "c"}
		numNodes := rapid.IntRange(1, 12).Draw(t, "numNodes")

		type nodeState struct {
			hash     chainhash.Hash
			provides []Tag
			marked   bool
		}
		nodes := make([]*nodeState, numNodes)

		for i := 0; i < numNodes; i++ {
			var provides []Tag
			for _, tag := range tags {
				if rapid.Bool().Draw(t, "provides") {
					provides = append(provides, tag)
				}
			}
			hash := testHash(i)
			require.NoError(t, g.AddNode(hash, nil, provides))
			nodes[i] = &nodeState{hash: hash, provides: provides}
		}

		ops := rapid.IntRange(1, 40).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			idx := rapid.IntRange(0, numNodes-1).Draw(t, "idx")
			node := nodes[idx]
			if rapid.Bool().Draw(t, "mark") {
				require.NoError(t, g.MarkProvided(node.hash))
				node.marked = true
			} else {
				g.UnmarkProvided(node.hash)
				node.marked = false
			}

			// Recompute expected satisfaction from scratch.
			for _, tag := range tags {
				want := false
				for _, n := range nodes {
					if !n.marked {
						continue
					}
					for _, p := range n.provides {
						if p == tag {
							want = true
						}
					}
				}
				require.Equal(t, want, g.IsSatisfied(tag),
					"tag %q satisfaction diverged", tag)
			}
		}
	})
}
