// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lfq provides the bounded, lock-free FIFO queues that back the
// job package's worker pool and the audio-conversion handler's subprocess
// logging.
//
// Two queue shapes are implemented, both with a call site elsewhere in
// this module:
//
//   - SPSC: Single-Producer Single-Consumer — used by the audio conversion
//     handler to stream an ffmpeg subprocess's combined stdout/stderr
//     lines from the scanning goroutine to the log-writer goroutine.
//   - MPMC: Multi-Producer Multi-Consumer — used by the job package as
//     each worker's local run queue: any goroutine may schedule a job
//     (push), and both the owning worker and thieves stealing idle work
//     may pop concurrently.
//
// A Multi-Producer Single-Consumer fan-in shape is deliberately absent:
// the workflow package matches TaskResult deliveries to pending Steps
// through a sync.Map instead, since that already gives every caller O(1)
// concurrent access without a funnel goroutine in the way (see
// workflow/manager.go). There is no other fan-in point in this module, so
// carrying an unused MPSC implementation bought nothing.
//
// # Quick Start
//
//	q := lfq.NewMPMC[*Job](4096)
//	q := lfq.Build[Event](lfq.New(1024).SingleProducer().SingleConsumer())  // → SPSC
//	q := lfq.Build[Event](lfq.New(1024))                                  // → MPMC
//
// # Basic Usage
//
// All queues share the same non-blocking interface:
//
//	q := lfq.NewMPMC[int](1024)
//
//	value := 42
//	if err := q.Enqueue(&value); err != nil {
//	    // lfq.IsWouldBlock(err): queue is full, apply back-pressure
//	}
//
//	elem, err := q.Dequeue()
//	if err == nil {
//	    fmt.Println(elem)
//	}
//
// # Algorithm Selection
//
// MPMC has two interchangeable implementations:
//
//	NewMPMC    - FAA-based SCQ algorithm (Nikolaev, DISC 2019): 2n physical
//	             slots for capacity n, scales better under heavy contention.
//	NewMPMCSeq - CAS-based per-slot sequence algorithm (Vyukov): n physical
//	             slots, simpler invariants, the algorithm described for the
//	             worker pool's run queue.
//
// The job package's JobManager selects between them via its Compact
// option: Compact enables the sequence-based algorithm to trade peak
// throughput for half the memory footprint. Both are wired through the
// same Builder:
//
//	q := lfq.Build[*Job](lfq.New(4096))           // FAA-based, default
//	q := lfq.Build[*Job](lfq.New(4096).Compact()) // CAS-based sequence queue
//
// # Capacity
//
// Capacity rounds up to the next power of 2. Minimum capacity is 2.
// Panics if capacity < 2.
//
// Length is intentionally not provided: accurate counts in lock-free
// algorithms require expensive cross-core synchronization. Track counts
// in application logic when needed. The job package's JobManager keeps no
// counts: it decides idle/work-stealing from Dequeue's ErrWouldBlock.
//
// # Thread Safety
//
//   - SPSC: one producer goroutine, one consumer goroutine.
//   - MPMC: many producer and consumer goroutines.
//
// Violating these constraints causes undefined behavior including data
// corruption and races.
//
// # Graceful Shutdown
//
// The FAA-based MPMC includes a threshold mechanism that
// prevents livelock under contention; this can cause Dequeue to report
// ErrWouldBlock even when items remain, until producer activity refreshes
// the threshold. For shutdown, once producers are known to be done, call
// Drain so consumers can empty the queue without the threshold check:
//
//	prodWg.Wait()
//	if d, ok := q.(lfq.Drainer); ok {
//	    d.Drain()
//	}
//
// SPSC and the sequence-based MPMC do not implement Drainer; they have no
// threshold to bypass, so the type assertion naturally skips them.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives (mutex,
// channel, WaitGroup) but not the happens-before relationships these
// queues establish purely through acquire/release atomics. The algorithms
// are correct; tests that would produce false positives under the race
// detector skip themselves when RaceEnabled is true (set by the
// "//go:build race" file race.go).
//
// # Dependencies
//
// This package uses code.hybscloud.com/iox for semantic errors,
// code.hybscloud.com/atomix for atomic primitives with explicit memory
// ordering, and code.hybscloud.com/spin for CPU pause instructions during
// contended retries.
package lfq
