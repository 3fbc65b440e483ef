// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package txpool provides a priority- and dependency-aware transaction
admission pool.

Transactions are submitted with a declaration of the tags they require and
the tags they provide. The pool holds each transaction as a future entry
until every required tag is provided by some ready entry, at which point it
is promoted to ready, publishes its own tags, and may unblock further
promotions in cascade. Ready entries are ordered by priority for block
construction: selection previews the highest-priority candidates without
removing them, finalization removes the committed ones and demotes any
dependents that lose their last tag provider, and advancing the pool height
sweeps entries whose longevity has elapsed.

The pool enforces dependency ordering and capacity only. Intrinsic
transaction validity (signatures, balances) is the submitter's
responsibility, and block production is the consumer's: the expected usage
is Submit from the transaction source, then SelectForBlock, FinalizeBlock,
and AdvanceHeight from the block producer.

All operations are synchronous and safe for concurrent use; mutations are
serialized behind a single lock so promotion and demotion cascades always
run to completion before any other caller observes the pool.
*/
package txpool
