// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package taggraph implements the dependency structure underneath the
transaction pool.

Transactions declare ordering dependencies through opaque tags: a
transaction requires a set of tags before it may be considered ready and
provides a set of tags once it is. The graph tracks two indexes over the
admitted set:

  - requiredBy: for each tag, the entries that require it. Promotion and
    demotion cascades consult this index so that a state change only visits
    tag-adjacent entries instead of rescanning the whole pool.

  - providers: for each tag, the entries that currently provide it while
    ready. A tag is satisfied exactly while this set is non-empty. The set
    is not a reference count; several ready entries may provide the same
    tag, and the tag only becomes unsatisfied once the last of them is
    retracted.

The graph stores no lifecycle state itself. Callers flip providers on and
off as entries move between ready and future, and the graph reports which
tags were uniquely lost so the caller can drive its demotion cascade.
*/
package taggraph
