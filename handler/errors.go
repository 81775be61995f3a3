// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package handler

import "errors"

// ErrAtCapacity names an admission-control rejection. Nothing in this
// package returns it: acquire reports a rejection as false, and the
// handler re-posts the task and returns nil.
var ErrAtCapacity = errors.New("handler: at capacity")

// ErrFFmpegFailed wraps a non-zero ffmpeg exit.
var ErrFFmpegFailed = errors.New("handler: ffmpeg failed")
