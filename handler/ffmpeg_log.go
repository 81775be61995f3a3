// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package handler

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"time"

	"github.com/caiwan/audioarchive/lfq"
)

// ffmpegLogQueueCapacity bounds how far the scanner goroutine can run
// ahead of the log-writer goroutine before it back-pressures.
const ffmpegLogQueueCapacity = 64

// runFFmpegCommand runs name/args, draining its combined stdout/stderr
// through a bounded SPSC queue to a single log-writer goroutine — one
// scanner, one writer, matching the original's poll_subprocess/LOGGER.debug
// loop without ever blocking ffmpeg's own output pipe on a slow logger.
func (c *AudioConverter) runFFmpegCommand(ctx context.Context, name string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	consumerDone := c.streamCommandOutput(pr)

	if err := cmd.Start(); err != nil {
		pw.Close()
		<-consumerDone
		return -1, err
	}
	waitErr := cmd.Wait()
	pw.Close()
	<-consumerDone

	if waitErr == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, waitErr
}

// streamCommandOutput scans r line by line on one goroutine, pushes each
// line onto a bounded lfq.SPSC queue, and drains it on a second goroutine
// that logs at debug level. The returned channel closes once the drain
// goroutine has logged everything the scanner produced.
func (c *AudioConverter) streamCommandOutput(r io.Reader) <-chan struct{} {
	queue := lfq.NewSPSC[string](ffmpegLogQueueCapacity)
	producerDone := make(chan struct{})
	consumerDone := make(chan struct{})

	go func() {
		defer close(producerDone)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := scanner.Text()
			for queue.Enqueue(&line) != nil {
				time.Sleep(time.Millisecond)
			}
		}
	}()

	go func() {
		defer close(consumerDone)
		for {
			line, err := queue.Dequeue()
			if err == nil {
				c.log.Debug().Str("ffmpeg", line).Msg("handler: ffmpeg output")
				continue
			}
			select {
			case <-producerDone:
				if line, err := queue.Dequeue(); err == nil {
					c.log.Debug().Str("ffmpeg", line).Msg("handler: ffmpeg output")
					continue
				}
				return
			default:
				time.Sleep(time.Millisecond)
			}
		}
	}()

	return consumerDone
}
