// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
)

// ErrNoHandler is the semantic condition for a fetched task whose type has
// no registered handler (§7): the dispatcher logs and drops, it never
// blocks the pump or retries.
var ErrNoHandler = errors.New("dispatch: no handler registered")

// ErrHandlerTypeMismatch should never surface in practice: Register binds
// the type-erased wrapper to the exact reflect.Type it closes over, so a
// mismatch would indicate a registry bug, not a runtime input error.
var ErrHandlerTypeMismatch = errors.New("dispatch: handler type mismatch")

func errHandlerTypeMismatch(want reflect.Type, got any) error {
	return fmt.Errorf("%w: got %T want %s", ErrHandlerTypeMismatch, got, want)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
