// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package blob implements the §6 blob store interface the core treats as
// opaque: Store writes bytes under a fresh id, Open returns a read-only
// handle by id, AsTempfile stages a blob at a real filesystem path for
// collaborators (ffmpeg via os/exec) that need one.
//
// FSStore is the only implementation: a filesystem-backed reference store,
// sufficient for the handler package's temp-file needs without pulling in
// an external object-storage service.
package blob
