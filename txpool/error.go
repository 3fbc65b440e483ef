// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txpool

import "errors"

// Pool-specific errors. Callers should test for them with errors.Is since
// the pool wraps them with contextual detail.
var (
	// ErrDuplicateTransaction indicates the transaction hash is already
	// admitted, or was recently finalized into a block. The caller should
	// treat the transaction as already accepted rather than retry.
	ErrDuplicateTransaction = errors.New("transaction already admitted")

	// ErrPoolFull indicates the pool is at capacity and the transaction
	// was not admitted. Backoff and eviction policy are the caller's
	// concern.
	ErrPoolFull = errors.New("transaction pool is full")
)
