// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/caiwan/audioarchive/dispatch"
	"github.com/caiwan/audioarchive/job"
	"github.com/caiwan/audioarchive/task"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zoobzio/metricz"
)

const (
	metricResultsMatched   = metricz.Key("workflow.results.matched.total")
	metricResultsUnmatched = metricz.Key("workflow.results.unmatched.total")
	metricStepsPolled      = metricz.Key("workflow.steps.polled.total")
)

// Manager owns a set of Workflows, polls them forward, and matches
// inbound TaskResults to the Step awaiting each one in O(1) via an
// internal task_id index (SPEC_FULL.md §9 — resolves the original's
// linear "for workflow: for step: if step.task_id == result.task_id"
// scan, see DESIGN.md).
type Manager struct {
	d                  *dispatch.Dispatcher
	log                zerolog.Logger
	metrics            *metricz.Registry
	maxConcurrentSteps int

	mu        sync.Mutex
	workflows []*Workflow

	index sync.Map // task id -> Step
}

// NewManager creates a Manager bound to d and registers its TaskResult
// handler on it (§4.5 "Result injection"). maxConcurrentSteps bounds the
// total Steps advanced per Run tick across all workflows; 0 means
// unbounded.
func NewManager(d *dispatch.Dispatcher, log zerolog.Logger, maxConcurrentSteps int) *Manager {
	metrics := metricz.New()
	metrics.Counter(metricResultsMatched)
	metrics.Counter(metricResultsUnmatched)
	metrics.Counter(metricStepsPolled)

	m := &Manager{
		d:                  d,
		log:                log,
		metrics:            metrics,
		maxConcurrentSteps: maxConcurrentSteps,
	}
	dispatch.Register[task.Result](d, m.handleTaskResult)
	return m
}

// CreateWorkflow creates and registers a fresh, empty Workflow.
func (m *Manager) CreateWorkflow() *Workflow {
	m.mu.Lock()
	defer m.mu.Unlock()
	wf := newWorkflow(uuid.NewString())
	m.workflows = append(m.workflows, wf)
	return wf
}

// Workflows returns a snapshot of every registered Workflow.
func (m *Manager) Workflows() []*Workflow {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Workflow, len(m.workflows))
	copy(out, m.workflows)
	return out
}

// AllDone reports whether every registered workflow is done.
func (m *Manager) AllDone() bool {
	for _, wf := range m.Workflows() {
		if !wf.IsDone() {
			return false
		}
	}
	return true
}

// Poll advances every registered workflow by one tick, bounded by
// maxConcurrentSteps across all of them (§4.5 "Poll algorithm"), and
// refreshes the task_id index from each Step's current state.
func (m *Manager) Poll(ctx context.Context) int {
	total := 0
	for _, wf := range m.Workflows() {
		remaining := 0
		if m.maxConcurrentSteps > 0 {
			remaining = m.maxConcurrentSteps - total
			if remaining <= 0 {
				break
			}
		}
		n := wf.Poll(ctx, remaining)
		m.syncIndex(wf)
		total += n
	}
	m.metrics.Counter(metricStepsPolled).Add(float64(total))
	return total
}

// ResetTimeouts returns every TIMEOUT step across all workflows to NEW
// (§4.5 "Timeouts").
func (m *Manager) ResetTimeouts(ctx context.Context) {
	for _, wf := range m.Workflows() {
		wf.ResetTimeouts(ctx)
	}
}

// Run polls on interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Poll(ctx)
			m.ResetTimeouts(ctx)
		}
	}
}

// syncIndex registers every PENDING Step's current task id so
// handleTaskResult can find it in O(1), and removes the task id of every
// Step that has left PENDING (DONE, ERROR, TIMEOUT).
func (m *Manager) syncIndex(wf *Workflow) {
	for _, s := range wf.Steps() {
		b := s.Base()
		id := b.TaskID()
		if id == "" {
			continue
		}
		if b.State() == StatePending {
			m.index.Store(id, s)
		} else {
			m.index.Delete(id)
		}
	}
}

// handleTaskResult is registered as the dispatcher's handler for the
// base TaskResult type (§4.5 "Result injection"): it looks the result's
// task id up in the index and, if found, hands it to that Step.
func (m *Manager) handleTaskResult(ctx context.Context, _ string, r task.Result, jctx *job.Context) error {
	v, ok := m.index.Load(r.TaskID)
	if !ok {
		m.metrics.Counter(metricResultsUnmatched).Inc()
		m.log.Debug().Str("task_id", r.TaskID).Msg("workflow: no step awaiting this task result")
		return nil
	}
	step := v.(Step)
	step.Base().SetTaskResult(r)
	m.index.Delete(r.TaskID)
	m.metrics.Counter(metricResultsMatched).Inc()
	m.log.Info().Str("task_id", r.TaskID).Str("step", step.Name()).Msg("workflow: task result matched to step")
	return nil
}
