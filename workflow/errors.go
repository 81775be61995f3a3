// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package workflow

import "errors"

// ErrDuplicateStepName is returned by Then when a name already exists in
// the owning workflow (§3: unique-name invariant).
var ErrDuplicateStepName = errors.New("workflow: duplicate step name")

// ErrStepNotFound is returned when building a tree against a parent name
// that does not yet exist.
var ErrStepNotFound = errors.New("workflow: step not found")

// ErrNoTaskID indicates CreateTask returned no id, which transitions the
// step straight to ERROR (§3).
var ErrNoTaskID = errors.New("workflow: create_task returned no task id")
