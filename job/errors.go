// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package job

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrNoJob indicates no job was available to run (local queue and every
// peer's queue were empty). It is a semantic, non-failure condition: the
// worker loop treats it as "sleep and retry", never as an error to log.
var ErrNoJob = errors.New("job: no job available")

// ErrSelfWait names the condition of waiting on the job whose own closure
// is performing the wait. Wait and WaitAll do not detect that case and
// never return this error; such a wait never completes (see the package
// doc).
var ErrSelfWait = errors.New("job: cannot wait on the currently executing job")

// IsNoJob reports whether err is ErrNoJob, including wrapped instances.
func IsNoJob(err error) bool {
	return errors.Is(err, ErrNoJob)
}

// IsSemantic reports whether err is a control-flow signal rather than a
// failure, delegating to iox for consistency with the lfq package.
func IsSemantic(err error) bool {
	return iox.IsSemantic(err) || IsNoJob(err)
}
