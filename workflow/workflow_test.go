// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package workflow

import (
	"context"
	"testing"
)

func newFakeStep(name string, done bool) *fakeStep {
	d := done
	return &fakeStep{
		BaseStep:   NewBaseStep(name, 0, nil),
		verifyDone: func() (bool, error) { return d, nil },
		createTask: func() (string, error) { return name + "-task", nil },
	}
}

func TestWorkflow_ThenBuildsTree(t *testing.T) {
	wf := newWorkflow("wf-1")
	a := newFakeStep("a", false)
	b := newFakeStep("b", false)

	if err := wf.Then(a, ""); err != nil {
		t.Fatalf("Then(a): %v", err)
	}
	if err := wf.Then(b, "a"); err != nil {
		t.Fatalf("Then(b after a): %v", err)
	}

	steps := wf.Steps()
	if len(steps) != 2 {
		t.Fatalf("len(Steps()) = %d, want 2", len(steps))
	}
}

func TestWorkflow_ThenRejectsDuplicateName(t *testing.T) {
	wf := newWorkflow("wf-1")
	a := newFakeStep("a", false)
	if err := wf.Then(a, ""); err != nil {
		t.Fatalf("Then(a): %v", err)
	}
	dup := newFakeStep("a", false)
	if err := wf.Then(dup, ""); err == nil {
		t.Fatal("expected ErrDuplicateStepName")
	}
}

func TestWorkflow_ThenRejectsUnknownParent(t *testing.T) {
	wf := newWorkflow("wf-1")
	a := newFakeStep("a", false)
	if err := wf.Then(a, "no-such-step"); err == nil {
		t.Fatal("expected ErrStepNotFound")
	}
}

func TestWorkflow_EligibilityChildWaitsForParentDone(t *testing.T) {
	wf := newWorkflow("wf-1")
	a := newFakeStep("a", false)
	b := newFakeStep("b", false)
	_ = wf.Then(a, "")
	_ = wf.Then(b, "a")

	incomplete := wf.IncompleteSteps()
	if len(incomplete) != 1 || incomplete[0].Name() != "a" {
		t.Fatalf("incomplete = %v, want only [a]", namesOf(incomplete))
	}

	// Advance a to DONE.
	a.verifyDone = func() (bool, error) { return true, nil }
	wf.Poll(context.Background(), 0)
	if a.State() != StateDone {
		t.Fatalf("a state = %v, want DONE", a.State())
	}

	incomplete = wf.IncompleteSteps()
	if len(incomplete) != 1 || incomplete[0].Name() != "b" {
		t.Fatalf("incomplete after a done = %v, want only [b]", namesOf(incomplete))
	}
}

func namesOf(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Name()
	}
	return out
}

func TestWorkflow_PollBudget(t *testing.T) {
	wf := newWorkflow("wf-1")
	a := newFakeStep("a", true)
	b := newFakeStep("b", true)
	c := newFakeStep("c", true)
	_ = wf.Then(a, "")
	_ = wf.Then(b, "")
	_ = wf.Then(c, "")

	n := wf.Poll(context.Background(), 2)
	if n != 2 {
		t.Fatalf("Poll(max=2) advanced %d steps, want 2", n)
	}
}

func TestWorkflow_IsDoneAndIsFailed(t *testing.T) {
	wf := newWorkflow("wf-1")
	a := newFakeStep("a", true)
	_ = wf.Then(a, "")

	if wf.IsDone() {
		t.Fatal("expected not done before polling")
	}
	wf.Poll(context.Background(), 0)
	if !wf.IsDone() {
		t.Fatal("expected done after polling a verify_done=true step")
	}
	if wf.IsFailed() {
		t.Fatal("expected not failed")
	}
}
