// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package job

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJob_RunSuccess(t *testing.T) {
	j := newJob(func(*Context) error { return nil }, nil)
	j.run(&Context{Job: j})

	assert.True(t, j.Done(), "expected job to be done after run")
	assert.False(t, j.Failed(), "expected job not to be failed")
}

func TestJob_RunError(t *testing.T) {
	want := errors.New("nope")
	j := newJob(func(*Context) error { return want }, nil)
	j.run(&Context{Job: j})

	assert.True(t, j.Done(), "expected job to be done after run")
	assert.True(t, j.Failed(), "expected job to be failed")
	assert.ErrorIs(t, j.Err(), want)
}

func TestJob_ParentChildAccounting(t *testing.T) {
	parent := newJob(func(*Context) error { return nil }, nil)
	child := newJob(func(*Context) error { return nil }, parent)
	parent.addChild()

	assert.False(t, parent.Done(), "parent should not be done before self or child finish")

	child.run(&Context{Job: child})
	assert.False(t, parent.Done(), "parent should not be done until its own closure also finishes")

	parent.run(&Context{Job: parent})
	assert.True(t, parent.Done(), "parent should be done once self and child both finish")
}

func TestJob_ChildFailureDoesNotBlockParent(t *testing.T) {
	parent := newJob(func(*Context) error { return nil }, nil)
	child := newJob(func(*Context) error { return errors.New("boom") }, parent)
	parent.addChild()

	child.run(&Context{Job: child})
	parent.run(&Context{Job: parent})

	assert.True(t, parent.Done(), "parent should be done even though child failed")
	assert.False(t, parent.Failed(), "a failed child should not mark the parent itself failed")
}
