// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package blob

import "errors"

// ErrNotFound indicates no blob exists under the given id.
var ErrNotFound = errors.New("blob: not found")
