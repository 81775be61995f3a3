// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/caiwan/audioarchive/task"
	"github.com/zoobzio/clockz"
)

type fakeStep struct {
	BaseStep
	verifyDone  func() (bool, error)
	createTask  func() (string, error)
	postStepErr error
	postStepRan bool
}

func (s *fakeStep) CreateTask(ctx context.Context) (string, error) { return s.createTask() }
func (s *fakeStep) VerifyDone(ctx context.Context) (bool, error)   { return s.verifyDone() }
func (s *fakeStep) PostStep(ctx context.Context) error {
	s.postStepRan = true
	return s.postStepErr
}

func alwaysFalse() (bool, error) { return false, nil }
func alwaysTrue() (bool, error)  { return true, nil }

func TestStep_NewToDoneShortCircuit(t *testing.T) {
	s := &fakeStep{
		BaseStep:   NewBaseStep("precheck", 0, nil),
		verifyDone: alwaysTrue,
		createTask: func() (string, error) { t.Fatal("create_task should not run"); return "", nil },
	}
	Poll(context.Background(), s)
	if s.State() != StateDone {
		t.Fatalf("state = %v, want DONE", s.State())
	}
}

func TestStep_NewToPendingToDone(t *testing.T) {
	s := &fakeStep{
		BaseStep:   NewBaseStep("convert", 0, nil),
		verifyDone: alwaysFalse,
		createTask: func() (string, error) { return "task-1", nil },
	}
	Poll(context.Background(), s)
	if s.State() != StatePending {
		t.Fatalf("state = %v, want PENDING", s.State())
	}
	if s.TaskID() != "task-1" {
		t.Fatalf("task id = %q, want task-1", s.TaskID())
	}

	// No result yet: poll is a no-op.
	Poll(context.Background(), s)
	if s.State() != StatePending {
		t.Fatalf("state = %v, want still PENDING", s.State())
	}

	s.verifyDone = alwaysTrue
	s.SetTaskResult(fakeResult())
	Poll(context.Background(), s)
	if s.State() != StateDone {
		t.Fatalf("state = %v, want DONE", s.State())
	}
	if !s.postStepRan {
		t.Fatal("expected post_step to run")
	}
}

func TestStep_CreateTaskFailureGoesToError(t *testing.T) {
	s := &fakeStep{
		BaseStep:   NewBaseStep("convert", 0, nil),
		verifyDone: alwaysFalse,
		createTask: func() (string, error) { return "", ErrNoTaskID },
	}
	Poll(context.Background(), s)
	if s.State() != StateError {
		t.Fatalf("state = %v, want ERROR", s.State())
	}
}

func TestStep_VerifyFailAfterResultGoesToError(t *testing.T) {
	s := &fakeStep{
		BaseStep:   NewBaseStep("convert", 0, nil),
		verifyDone: alwaysFalse,
		createTask: func() (string, error) { return "task-1", nil },
	}
	Poll(context.Background(), s)
	s.SetTaskResult(fakeResult())
	Poll(context.Background(), s)
	if s.State() != StateError {
		t.Fatalf("state = %v, want ERROR", s.State())
	}
}

func TestStep_Timeout(t *testing.T) {
	clock := clockz.NewFakeClock()
	s := &fakeStep{
		BaseStep:   NewBaseStep("slow", 10*time.Millisecond, clock),
		verifyDone: alwaysFalse,
		createTask: func() (string, error) { return "task-1", nil },
	}
	Poll(context.Background(), s)
	if s.State() != StatePending {
		t.Fatalf("state = %v, want PENDING", s.State())
	}

	clock.Advance(20 * time.Millisecond)
	Poll(context.Background(), s)
	if s.State() != StateTimeout {
		t.Fatalf("state = %v, want TIMEOUT", s.State())
	}
}

func TestStep_ResetFromTimeout(t *testing.T) {
	clock := clockz.NewFakeClock()
	s := &fakeStep{
		BaseStep:   NewBaseStep("slow", 10*time.Millisecond, clock),
		verifyDone: alwaysFalse,
		createTask: func() (string, error) { return "task-1", nil },
	}
	Poll(context.Background(), s)
	clock.Advance(20 * time.Millisecond)
	Poll(context.Background(), s)
	if s.State() != StateTimeout {
		t.Fatalf("precondition: state = %v, want TIMEOUT", s.State())
	}

	s.Reset(context.Background())
	if s.State() != StateNew {
		t.Fatalf("state after reset = %v, want NEW", s.State())
	}
	if s.TaskID() != "" {
		t.Fatalf("task id after reset = %q, want empty", s.TaskID())
	}
}

func TestStep_DirtyFlag(t *testing.T) {
	s := &fakeStep{
		BaseStep:   NewBaseStep("x", 0, nil),
		verifyDone: alwaysTrue,
		createTask: func() (string, error) { return "", nil },
	}
	if !s.IsDirty() {
		t.Fatal("expected fresh step to be dirty")
	}
	s.ClearDirty()
	if s.IsDirty() {
		t.Fatal("expected dirty flag cleared")
	}
	Poll(context.Background(), s)
	if !s.IsDirty() {
		t.Fatal("expected transition to set dirty again")
	}
}

func TestStep_OnTransitionHook(t *testing.T) {
	s := &fakeStep{
		BaseStep:   NewBaseStep("x", 0, nil),
		verifyDone: alwaysTrue,
		createTask: func() (string, error) { return "", nil },
	}
	var got StepTransition
	if err := s.OnTransition(func(ctx context.Context, ev StepTransition) error {
		got = ev
		return nil
	}); err != nil {
		t.Fatalf("OnTransition: %v", err)
	}
	Poll(context.Background(), s)
	if got.From != StateNew || got.To != StateDone {
		t.Fatalf("got transition %+v, want NEW->DONE", got)
	}
}

func fakeResult() task.Result { return task.Result{} }
