// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package blob

import "io"

// Store is the §6 blob store interface. The core never inspects blob
// bytes; it only carries ids (e.g. ConvertAudio.SourceFileID) through
// task payloads.
type Store interface {
	// Store writes r to a fresh blob and returns its id.
	Store(name string, r io.Reader) (id string, err error)
	// Open returns a handle to the blob identified by id. The caller
	// must Close it.
	Open(id string) (io.ReadCloser, error)
	// AsTempfile materialises the blob at a real filesystem path with
	// the given suffix, for collaborators that require one (ffmpeg via
	// os/exec). The returned cleanup removes the temp file; callers
	// must call it once done, mirroring the original's context-managed
	// as_tempfile.
	AsTempfile(id, suffix string) (path string, cleanup func(), err error)
}
