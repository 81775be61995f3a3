// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package handler implements the audio-conversion task handlers that sit
// behind the dispatcher (§12, supplemented from
// original_source/tapearchive/tasks/audio_convert.py): AudioConverter
// shells out to ffmpeg to convert, slice, or tag audio blobs.
//
// # Admission control
//
// AudioConverter bounds concurrent ffmpeg subprocesses with a buffered
// channel used as a semaphore. A task that arrives at capacity is
// re-posted to the tail of the queue instead of blocking the calling
// worker (scenario S3) — the same "put back the task at the end of the
// queue" behavior the original's task_handler methods implement inline.
//
// # Cooperative waiting
//
// Each ffmpeg invocation runs inside a child Job of the task's own root
// job; the handler calls job.Manager.Wait on it so the worker helps the
// pool make progress instead of blocking a whole OS thread on process
// exit (§4.2).
//
// # Subprocess output
//
// ffmpeg's combined stdout/stderr is scanned line by line on one
// goroutine and drained through a bounded lfq.SPSC queue by a single
// log-writer goroutine, so a slow logger never backs up ffmpeg's own
// output pipe.
package handler
