// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package job implements the worker pool and job manager: a fixed set of
// long-lived goroutines, each owning a private lock-free run queue, that
// execute closures (Jobs) with cooperative child-job fan-out and
// work-stealing.
//
// # Overview
//
//	mgr := job.NewManager(job.Options{Workers: 4}, zerolog.Nop())
//	mgr.Start()
//	defer mgr.Shutdown(context.Background())
//
//	root := mgr.CreateJob(func(ctx *job.Context) error {
//	    children := make([]*job.Job, 3)
//	    for i := range children {
//	        children[i] = ctx.Manager.CreateChildJob(ctx.Job, func(*job.Context) error {
//	            time.Sleep(100 * time.Millisecond)
//	            return nil
//	        })
//	        ctx.Manager.Schedule(children[i])
//	    }
//	    return ctx.Manager.WaitAll(children...)
//	})
//	mgr.Schedule(root)
//
// # Work-stealing
//
// Each worker owns a private lfq queue (see the lfq package). A worker first
// pops from its own queue; if empty, it steals from a randomly chosen peer's
// queue. If both are empty, the worker sleeps for Options.IdleSleep and
// retries.
//
// # Cooperative wait
//
// Wait/WaitAll do not block the calling goroutine on a channel or condition
// variable. Instead the caller becomes a helper: it repeatedly pulls and
// runs any available job from the pool until the jobs being waited on are
// done. This keeps a parent handler's worker slot productive while its
// children are still in flight, and is the one property of this package
// that must never be "optimized away" into a plain blocking wait — a pool
// of W workers where W of them are each waiting on children would
// otherwise deadlock.
//
// Waiting on the very job whose own closure is doing the waiting is not
// supported: a job's own completion is only recorded after its closure
// returns, so such a wait could never observe completion. Wait targets
// children (or any other job), never ctx.Job itself.
package job
