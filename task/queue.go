// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import "context"

// Queue is the durable task queue interface (§4.3): a FIFO of Envelopes
// shared by every worker process. Put always succeeds or returns a fatal
// backing-store error (§7); Fetch blocks up to the backing store's own
// timeout and returns ErrEmpty on a spurious or genuine miss so callers
// loop.
type Queue interface {
	// Put serialises e and appends it to the tail of the queue.
	Put(ctx context.Context, e Envelope) error

	// Fetch pop-deletes the head of the queue and decodes it. Returns
	// ErrEmpty if nothing was available within the backing store's
	// blocking-pop timeout.
	Fetch(ctx context.Context) (Envelope, error)
}
