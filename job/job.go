// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package job

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"github.com/google/uuid"
)

// Func is a unit of work scheduled onto the pool. ctx carries the Job
// running fn and the owning Manager, so fn can create child jobs and wait
// on them.
type Func func(ctx *Context) error

// Context is passed to a running Job's Func.
type Context struct {
	Job     *Job
	Manager *Manager
}

// Job is an in-process unit of scheduled work. A Job may have children,
// created via Manager.CreateChildJob; the parent's unfinished counter is
// incremented on every child's creation and decremented on every job's
// (self or descendant) completion.
type Job struct {
	id         string
	fn         Func
	parent     *Job
	unfinished int64 // atomic; see the package doc for the wait invariant
	err        error
}

func newJob(fn Func, parent *Job) *Job {
	j := &Job{
		id:         uuid.NewString(),
		fn:         fn,
		parent:     parent,
		unfinished: 1,
	}
	return j
}

// ID returns the job's unique identifier.
func (j *Job) ID() string { return j.id }

// addChild registers one more outstanding child, incrementing unfinished.
func (j *Job) addChild() {
	atomic.AddInt64(&j.unfinished, 1)
}

// Done reports whether the job and every descendant have finished. A job
// whose closure errored or panicked is marked with the negative failure
// sentinel as soon as its closure returns, so Done reports true for it
// even while children of it are still running.
func (j *Job) Done() bool {
	return atomic.LoadInt64(&j.unfinished) <= 0
}

// Failed reports whether the job's closure returned an error or panicked.
// Meaningful only once Done reports true.
func (j *Job) Failed() bool {
	return atomic.LoadInt64(&j.unfinished) < 0 || j.err != nil
}

// Err returns the error the job's closure returned or recovered from, if
// any. Meaningful only once Done reports true.
func (j *Job) Err() error {
	return j.err
}

// run executes the job's closure, recovering from panics and converting
// them into a failed job per §7's handler-exception error kind, logs the
// failure (with a stack trace for a panic) through the owning Manager's
// logger when ctx carries one, then propagates completion to the parent.
func (j *Job) run(ctx *Context) {
	defer func() {
		if r := recover(); r != nil {
			j.err = fmt.Errorf("job: panic: %v", r)
			if ctx.Manager != nil {
				ctx.Manager.log.Error().Err(j.err).Str("job_id", j.id).Bytes("stack", debug.Stack()).Msg("job: panicked")
			}
		} else if j.err != nil && ctx.Manager != nil {
			ctx.Manager.log.Error().Err(j.err).Str("job_id", j.id).Msg("job: failed")
		}
		j.finish()
	}()
	j.err = j.fn(ctx)
}

// finish consumes this job's own "self" credit from its unfinished
// counter, marking it failed (negative sentinel) if its closure errored
// or panicked, and if it has a parent, consumes the credit the parent is
// holding on this job's behalf.
func (j *Job) finish() {
	if j.err != nil {
		atomic.StoreInt64(&j.unfinished, -1)
	} else if atomic.LoadInt64(&j.unfinished) > 0 {
		atomic.AddInt64(&j.unfinished, -1)
	}
	if j.parent != nil {
		atomic.AddInt64(&j.parent.unfinished, -1)
	}
}
