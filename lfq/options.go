// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

// Options configures queue creation and algorithm selection.
type Options struct {
	singleProducer bool
	singleConsumer bool
	compact        bool
	capacity       int
}

// Builder creates queues with fluent configuration.
//
// The builder selects one of two shapes based on the declared producer
// and consumer constraints:
//
//	SingleProducer + SingleConsumer → SPSC (Lamport ring buffer)
//	neither                         → MPMC (default queue shape)
//
// There is no single-consumer-only (MPSC) selector: this module's only
// fan-in shape is the workflow package matching TaskResult deliveries to
// pending Steps, and that already runs through a sync.Map instead of a
// funnel queue (see workflow/manager.go), so no caller ever needs one.
//
// Example:
//
//	// worker-local run queue: many goroutines schedule, owner + thieves pop
//	q := lfq.Build[*Job](lfq.New(4096))
//
//	// subprocess output drain: one poller, one log writer
//	q := lfq.Build[string](lfq.New(256).SingleProducer().SingleConsumer())
type Builder struct {
	opts Options
}

// New creates a queue builder with the given capacity.
//
// Capacity rounds up to the next power of 2. Panics if capacity < 2.
func New(capacity int) *Builder {
	if capacity < 2 {
		panic("lfq: capacity must be >= 2")
	}
	return &Builder{opts: Options{capacity: capacity}}
}

// SingleProducer declares that only one goroutine will enqueue.
func (b *Builder) SingleProducer() *Builder {
	b.opts.singleProducer = true
	return b
}

// SingleConsumer declares that only one goroutine will dequeue.
func (b *Builder) SingleConsumer() *Builder {
	b.opts.singleConsumer = true
	return b
}

// Compact selects the CAS/sequence-based MPMC algorithm (Vyukov) instead
// of the default FAA-based SCQ algorithm. Ignored for SPSC, which has no
// FAA/CAS dual implementation.
//
// Trade-off: the sequence variant uses n physical slots instead of 2n, and
// degrades more gracefully under moderate contention; the FAA variant
// scales better under very high contention at twice the memory cost.
func (b *Builder) Compact() *Builder {
	b.opts.compact = true
	return b
}

// Build creates a Queue[T] with automatic algorithm selection.
//
// Declaring only one side of SingleProducer/SingleConsumer is not
// supported — this queue library only implements the SPSC and MPMC
// shapes the task-and-workflow core actually needs; there is no
// single-producer/multi-consumer or multi-producer/single-consumer
// component anywhere in that core.
func Build[T any](b *Builder) Queue[T] {
	switch {
	case b.opts.singleProducer && b.opts.singleConsumer:
		return NewSPSC[T](b.opts.capacity)
	case b.opts.singleProducer || b.opts.singleConsumer:
		panic("lfq: declaring only one of SingleProducer/SingleConsumer is not supported; use MPMC")
	case b.opts.compact:
		return NewMPMCSeq[T](b.opts.capacity)
	default:
		return NewMPMC[T](b.opts.capacity)
	}
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte
