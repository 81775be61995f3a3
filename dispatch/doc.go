// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dispatch implements the task dispatcher: the bridge between the
// durable task queue (package task) and the worker pool (package job). It
// owns a handler registry keyed by task type and a single pump goroutine
// that pulls envelopes and schedules one root Job per matching handler.
//
// # Registration
//
//	d := dispatch.New(queue, jobManager, log)
//	dispatch.Register[Echo](d, func(ctx context.Context, id string, t Echo, j *job.Context) error {
//	    _, err := d.Post(ctx, EchoResult{Result: task.NewResult(id, nil), Msg: t.Msg})
//	    return err
//	})
//
// Registration is explicit and imperative (§6): a task type may have zero
// or more handlers, scheduled in registration order (§3).
//
// # Pump
//
//	go d.Run(ctx)
//
// Run loops: fetch a task, look up handlers by its registered type, wrap
// each invocation as a root Job on the pool, and schedule it. Tasks with
// no registered handler are logged at warn and dropped (§7). Handler
// invocations run concurrently on the pool; no ordering between distinct
// tasks is promised (§4.4).
package dispatch
