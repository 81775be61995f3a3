// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package job

import (
	"runtime"
	"time"
)

// Options configures a Manager.
type Options struct {
	// Workers is the number of worker goroutines. Zero or negative
	// selects runtime.NumCPU()-1, matching the original's cpu_count()-1
	// default (clamped to at least 1).
	Workers int

	// IdleSleep is how long a worker sleeps after finding no job to run
	// on its own queue or any peer's, before retrying. Resolves the
	// spec's "hard-coded 300ms" open question by making it configurable.
	IdleSleep time.Duration

	// QueueSize is the capacity of each worker's private run queue.
	// Rounded up to a power of two by lfq.
	QueueSize int

	// Compact selects the CAS/sequence-based MPMC algorithm for worker
	// run queues instead of the default FAA-based SCQ algorithm. See
	// lfq's package doc for the trade-off.
	Compact bool
}

const (
	defaultIdleSleep = 300 * time.Millisecond
	defaultQueueSize = 1024
)

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU() - 1
		if o.Workers < 1 {
			o.Workers = 1
		}
	}
	if o.IdleSleep <= 0 {
		o.IdleSleep = defaultIdleSleep
	}
	if o.QueueSize <= 0 {
		o.QueueSize = defaultQueueSize
	}
	return o
}
