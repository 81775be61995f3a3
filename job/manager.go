// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package job

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/zoobzio/metricz"
)

const (
	metricScheduled = metricz.Key("job.scheduled.total")
	metricStolen    = metricz.Key("job.stolen.total")
	metricIdle      = metricz.Key("job.idle.total")
)

// Manager owns a fixed pool of worker goroutines, each with a private
// lock-free run queue, and schedules Jobs onto them. See the package doc
// for the work-stealing and cooperative-wait design.
type Manager struct {
	opts    Options
	workers []*worker
	log     zerolog.Logger
	metrics *metricz.Registry

	wg sync.WaitGroup
}

// NewManager creates a Manager. Call Start to spawn its workers.
func NewManager(opts Options, log zerolog.Logger) *Manager {
	opts = opts.withDefaults()
	metrics := metricz.New()
	metrics.Counter(metricScheduled)
	metrics.Counter(metricStolen)
	metrics.Counter(metricIdle)

	m := &Manager{
		opts:    opts,
		log:     log,
		metrics: metrics,
	}
	m.workers = make([]*worker, opts.Workers)
	for i := range m.workers {
		m.workers[i] = newWorker(i, m, opts)
	}
	return m
}

// Start spawns the worker goroutines.
func (m *Manager) Start() {
	m.log.Debug().Int("workers", len(m.workers)).Msg("job: starting pool")
	m.wg.Add(len(m.workers))
	for _, w := range m.workers {
		w := w
		go func() {
			defer m.wg.Done()
			w.loop()
		}()
	}
}

// Shutdown signals every worker to stop after its current job and waits
// for them to exit, or for ctx to be cancelled, whichever comes first.
// Jobs still queued when a worker observes termination are abandoned, per
// §4.2.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.log.Debug().Msg("job: terminating pool")
	for _, w := range m.workers {
		w.terminate()
	}
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CreateJob creates a new root Job. It is not scheduled until passed to
// Schedule.
func (m *Manager) CreateJob(fn Func) *Job {
	return newJob(fn, nil)
}

// CreateChildJob creates a Job linked to parent, incrementing parent's
// unfinished counter. The child must still be passed to Schedule to run.
func (m *Manager) CreateChildJob(parent *Job, fn Func) *Job {
	child := newJob(fn, parent)
	parent.addChild()
	return child
}

// Schedule pushes j onto a uniformly-random worker's queue.
func (m *Manager) Schedule(j *Job) error {
	w := m.workers[rand.Intn(len(m.workers))]
	if err := w.schedule(j); err != nil {
		return err
	}
	m.metrics.Counter(metricScheduled).Inc()
	return nil
}

// Wait blocks the calling goroutine until j is done, helping the pool make
// progress in the meantime by running any job it can pull instead of
// parking. See the package doc: j must not be the job whose closure is
// performing the wait.
func (m *Manager) Wait(j *Job) error {
	for !j.Done() {
		helper, err := m.stealAny()
		if err != nil {
			m.sleepIdle()
			continue
		}
		helper.run(&Context{Job: helper, Manager: m})
	}
	return nil
}

// WaitAll waits for every job in js to be done.
func (m *Manager) WaitAll(js ...*Job) error {
	for _, j := range js {
		if err := m.Wait(j); err != nil {
			return err
		}
	}
	return nil
}

// nextJobFor returns a runnable job for w: its own queue first, then a
// random peer's queue (work-stealing), matching §4.2.
func (m *Manager) nextJobFor(w *worker) (*Job, error) {
	if j, err := w.queue.Dequeue(); err == nil {
		return j, nil
	}
	return m.stealFrom(w)
}

// stealFrom pops from a randomly chosen peer of w (or w itself, which is
// equivalent to finding nothing new).
func (m *Manager) stealFrom(w *worker) (*Job, error) {
	peer := m.workers[rand.Intn(len(m.workers))]
	if peer == w {
		return nil, ErrNoJob
	}
	j, err := peer.queue.Dequeue()
	if err != nil {
		return nil, ErrNoJob
	}
	m.metrics.Counter(metricStolen).Inc()
	return j, nil
}

// stealAny pops from any worker's queue, used by Wait's helper loop which
// has no queue of its own to check first.
func (m *Manager) stealAny() (*Job, error) {
	start := rand.Intn(len(m.workers))
	for i := range m.workers {
		w := m.workers[(start+i)%len(m.workers)]
		if j, err := w.queue.Dequeue(); err == nil {
			return j, nil
		}
	}
	return nil, ErrNoJob
}

func (m *Manager) sleepIdle() {
	m.metrics.Counter(metricIdle).Inc()
	time.Sleep(m.opts.IdleSleep)
}
