// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package job

import (
	"sync/atomic"

	"github.com/caiwan/audioarchive/lfq"
)

// worker owns a private run queue and executes jobs pushed to it, or
// stolen from a peer, until terminated.
type worker struct {
	index      int
	manager    *Manager
	queue      lfq.Queue[*Job]
	terminated int32 // atomic
}

func newWorker(index int, manager *Manager, opts Options) *worker {
	b := lfq.New(opts.QueueSize)
	if opts.Compact {
		b = b.Compact()
	}
	return &worker{
		index:   index,
		manager: manager,
		queue:   lfq.Build[*Job](b),
	}
}

func (w *worker) schedule(j *Job) error {
	return w.queue.Enqueue(&j)
}

func (w *worker) terminate() {
	atomic.StoreInt32(&w.terminated, 1)
}

func (w *worker) isTerminated() bool {
	return atomic.LoadInt32(&w.terminated) == 1
}

// loop is the worker's main goroutine body: repeatedly fetch a runnable
// job (own queue first, then steal) and run it. On idle, sleep for
// Options.IdleSleep before retrying, matching §5's "worker idle" suspension
// point.
func (w *worker) loop() {
	for !w.isTerminated() {
		j, err := w.manager.nextJobFor(w)
		if err != nil {
			w.manager.sleepIdle()
			continue
		}
		j.run(&Context{Job: j, Manager: w.manager})
	}
}
