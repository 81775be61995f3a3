// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/caiwan/audioarchive/task"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
)

// State is one of the five Step states (§3).
type State int

const (
	StateNew State = iota
	StatePending
	StateDone
	StateError
	StateTimeout
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StatePending:
		return "pending"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	case StateTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// EventStepTransition fires on every Step state change.
const EventStepTransition = hookz.Key("workflow.step.transition")

// StepTransition is the payload delivered on EventStepTransition.
type StepTransition struct {
	Step string
	From State
	To   State
	At   time.Time
}

// Step is the contract every workflow node implements (§4.5): CreateTask
// produces the side-effecting task, VerifyDone is an idempotent
// post-condition check run both at creation (short-circuit to DONE) and
// on result receipt.
type Step interface {
	Name() string
	Base() *BaseStep
	CreateTask(ctx context.Context) (string, error)
	VerifyDone(ctx context.Context) (bool, error)
}

// PostStepper is implemented by Steps that need a one-shot action after
// reaching DONE. Optional: BaseStep's embedder need not implement it.
type PostStepper interface {
	PostStep(ctx context.Context) error
}

// BaseStep carries the state machine, the outstanding task id, the last
// received result, timestamps, timeout, and dirty flag (§3). Concrete step
// types embed BaseStep and implement CreateTask/VerifyDone.
type BaseStep struct {
	name    string
	timeout time.Duration
	clock   clockz.Clock
	hooks   *hookz.Hooks[StepTransition]

	mu        sync.Mutex
	state     State
	taskID    string
	result    *task.Result
	createdAt time.Time
	dirty     bool
}

// NewBaseStep creates a BaseStep in state NEW. timeout of zero disables
// the PENDING→TIMEOUT transition. clock defaults to clockz.RealClock.
func NewBaseStep(name string, timeout time.Duration, clock clockz.Clock) BaseStep {
	if clock == nil {
		clock = clockz.RealClock
	}
	return BaseStep{
		name:    name,
		timeout: timeout,
		clock:   clock,
		hooks:   hookz.New[StepTransition](),
		state:   StateNew,
		dirty:   true,
	}
}

// Name returns the step's unique name.
func (s *BaseStep) Name() string { return s.name }

// Base returns s itself, so a concrete step embedding BaseStep by value
// satisfies the Step interface's Base() method via promotion.
func (s *BaseStep) Base() *BaseStep { return s }

// State reports the step's current state.
func (s *BaseStep) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TaskID is the id of the step's outstanding task, if any.
func (s *BaseStep) TaskID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taskID
}

// IsDone reports whether the step has reached DONE.
func (s *BaseStep) IsDone() bool { return s.State() == StateDone }

// IsPending reports whether the step is still incomplete and eligible for
// polling (NEW or PENDING, §4.5's iterate_incomplete_steps predicate).
func (s *BaseStep) IsPending() bool {
	switch s.State() {
	case StateNew, StatePending:
		return true
	default:
		return false
	}
}

// IsFailed reports whether the step landed in ERROR or TIMEOUT.
func (s *BaseStep) IsFailed() bool {
	switch s.State() {
	case StateError, StateTimeout:
		return true
	default:
		return false
	}
}

// IsDirty reports whether the step changed state since the last
// ClearDirty call, for external polling UIs (§4.5).
func (s *BaseStep) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// ClearDirty clears the dirty flag.
func (s *BaseStep) ClearDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}

// HasResult reports whether a TaskResult has been injected since the step
// last created a task. Steps commonly gate VerifyDone's "now check the
// real post-condition" branch on this.
func (s *BaseStep) HasResult() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result != nil
}

// Result returns the last TaskResult injected via SetTaskResult, if any.
func (s *BaseStep) Result() (task.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return task.Result{}, false
	}
	return *s.result, true
}

// SetTaskResult records a TaskResult for a pending step, to be consumed on
// the next poll (§4.5 "Result injection").
func (s *BaseStep) SetTaskResult(r task.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rc := r
	s.result = &rc
}

// OnTransition subscribes to this step's transitions.
func (s *BaseStep) OnTransition(fn func(context.Context, StepTransition) error) error {
	_, err := s.hooks.Hook(EventStepTransition, fn)
	return err
}

// Reset returns a PENDING, ERROR, or TIMEOUT step to NEW (§3), e.g. via
// reset_steps_with_timeout.
func (s *BaseStep) Reset(ctx context.Context) {
	s.mu.Lock()
	cur := s.state
	if cur != StatePending && cur != StateError && cur != StateTimeout {
		s.mu.Unlock()
		return
	}
	s.taskID = ""
	s.result = nil
	s.transitionLocked(ctx, StateNew)
	s.mu.Unlock()
}

func (s *BaseStep) transitionLocked(ctx context.Context, to State) {
	from := s.state
	if from == to {
		return
	}
	s.state = to
	s.dirty = true
	_ = s.hooks.Emit(ctx, EventStepTransition, StepTransition{
		Step: s.name,
		From: from,
		To:   to,
		At:   time.Now(),
	})
}

// pollNew runs the NEW-state transition: verify_done short-circuit, else
// create_task (§4.5 "Poll algorithm").
func pollNew(ctx context.Context, step Step) {
	b := step.Base()
	done, err := step.VerifyDone(ctx)
	if err != nil {
		b.mu.Lock()
		b.transitionLocked(ctx, StateError)
		b.mu.Unlock()
		return
	}
	if done {
		b.mu.Lock()
		b.transitionLocked(ctx, StateDone)
		b.mu.Unlock()
		return
	}

	id, err := step.CreateTask(ctx)
	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil || id == "" {
		b.transitionLocked(ctx, StateError)
		return
	}
	b.taskID = id
	b.createdAt = b.clock.Now()
	b.transitionLocked(ctx, StatePending)
}

// pollPending runs the PENDING-state transition: timeout check, then
// result-gated verify_done (§4.5).
func pollPending(ctx context.Context, step Step) {
	b := step.Base()
	b.mu.Lock()
	if b.timeout > 0 && b.clock.Now().Sub(b.createdAt) > b.timeout {
		b.transitionLocked(ctx, StateTimeout)
		b.mu.Unlock()
		return
	}
	haveResult := b.result != nil
	b.mu.Unlock()

	if !haveResult {
		return
	}

	done, err := step.VerifyDone(ctx)
	if err != nil || !done {
		b.mu.Lock()
		b.transitionLocked(ctx, StateError)
		b.mu.Unlock()
		return
	}

	if ps, ok := step.(PostStepper); ok {
		if perr := ps.PostStep(ctx); perr != nil {
			b.mu.Lock()
			b.transitionLocked(ctx, StateError)
			b.mu.Unlock()
			return
		}
	}

	b.mu.Lock()
	b.transitionLocked(ctx, StateDone)
	b.mu.Unlock()
}

// Poll advances step by exactly one state-machine step, per §4.5.
func Poll(ctx context.Context, step Step) {
	switch step.Base().State() {
	case StateNew:
		pollNew(ctx, step)
	case StatePending:
		pollPending(ctx, step)
	}
}
