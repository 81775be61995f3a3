// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import "errors"

// ErrEmpty indicates Fetch found nothing to pop. A semantic, non-failure
// condition: callers loop and retry.
var ErrEmpty = errors.New("task: queue is empty")

// ErrUnregisteredType indicates an envelope's "__type__" discriminator has
// no matching Register call. Per §7, the caller should log and drop.
var ErrUnregisteredType = errors.New("task: unregistered task type")

// IsEmpty reports whether err is ErrEmpty, including wrapped instances.
func IsEmpty(err error) bool {
	return errors.Is(err, ErrEmpty)
}
