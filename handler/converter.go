// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package handler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caiwan/audioarchive/blob"
	"github.com/caiwan/audioarchive/catalog"
	"github.com/caiwan/audioarchive/dispatch"
	"github.com/caiwan/audioarchive/job"
	"github.com/caiwan/audioarchive/task"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zoobzio/metricz"
)

const (
	metricRunning   = metricz.Key("handler.audio.running")
	metricAtCap     = metricz.Key("handler.audio.at_capacity.total")
	metricSucceeded = metricz.Key("handler.audio.succeeded.total")
	metricFailed    = metricz.Key("handler.audio.failed.total")
)

// runFunc runs an external command and returns its exit code, or an error
// if it could not be started at all. Swappable in tests so they never
// shell out to a real ffmpeg binary.
type runFunc func(ctx context.Context, name string, args ...string) (int, error)

// AudioConverter handles ConvertAudio, SliceAudio, and AppendAlbumArt
// tasks by shelling out to ffmpeg (§12). Concurrency is bounded by a
// buffered channel used as a semaphore: a handler that cannot acquire a
// slot re-posts its task and returns, rather than blocking (S3).
type AudioConverter struct {
	store      blob.Store
	dispatcher *dispatch.Dispatcher
	jobs       *job.Manager
	log        zerolog.Logger
	metrics    *metricz.Registry

	run runFunc
	sem chan struct{}
}

// NewAudioConverter creates a converter bounded to maxProcesses concurrent
// ffmpeg invocations.
func NewAudioConverter(store blob.Store, d *dispatch.Dispatcher, jobs *job.Manager, log zerolog.Logger, maxProcesses int) *AudioConverter {
	if maxProcesses <= 0 {
		maxProcesses = 16
	}
	metrics := metricz.New()
	metrics.Gauge(metricRunning)
	metrics.Counter(metricAtCap)
	metrics.Counter(metricSucceeded)
	metrics.Counter(metricFailed)

	c := &AudioConverter{
		store:      store,
		dispatcher: d,
		jobs:       jobs,
		log:        log,
		metrics:    metrics,
		sem:        make(chan struct{}, maxProcesses),
	}
	c.run = c.runFFmpegCommand
	return c
}

// Register wires the converter's handlers into d, plus logging-only
// result handlers mirroring the original's convert_audio_result /
// slice_audio_result / append_album_art_result methods.
func (c *AudioConverter) Register(d *dispatch.Dispatcher) {
	dispatch.Register[ConvertAudio](d, c.handleConvertAudio)
	dispatch.Register[SliceAudio](d, c.handleSliceAudio)
	dispatch.Register[AppendAlbumArt](d, c.handleAppendAlbumArt)
	dispatch.Register[ConvertAudioResult](d, c.handleConvertAudioResult)
	dispatch.Register[SliceAudioResult](d, c.handleSliceAudioResult)
	dispatch.Register[AppendAlbumArtResult](d, c.handleAppendAlbumArtResult)
}

// acquire tries to take a semaphore slot without blocking. If the pool is
// at capacity, it re-posts payload to the tail of the queue so another
// worker picks it up once a slot frees (S3), matching the original's
// "put back the task at the end of the queue" behavior.
func (c *AudioConverter) acquire(ctx context.Context, payload any) bool {
	select {
	case c.sem <- struct{}{}:
		c.metrics.Gauge(metricRunning).Set(float64(len(c.sem)))
		return true
	default:
		c.metrics.Counter(metricAtCap).Inc()
		if _, err := c.dispatcher.Post(ctx, payload); err != nil {
			c.log.Error().Err(err).Msg("handler: re-post at capacity failed")
		}
		return false
	}
}

func (c *AudioConverter) release() {
	<-c.sem
	c.metrics.Gauge(metricRunning).Set(float64(len(c.sem)))
}

// runFFmpeg runs name/args as a child Job of jctx.Job, waiting on it
// cooperatively so the calling worker helps the pool make progress
// instead of blocking an OS thread on process exit (§4.2).
func (c *AudioConverter) runFFmpeg(ctx context.Context, jctx *job.Context, name string, args ...string) (int, error) {
	var code int
	var runErr error
	child := c.jobs.CreateChildJob(jctx.Job, func(*job.Context) error {
		code, runErr = c.run(ctx, name, args...)
		return runErr
	})
	if err := c.jobs.Schedule(child); err != nil {
		return -1, err
	}
	if err := c.jobs.Wait(child); err != nil {
		return -1, err
	}
	return code, runErr
}

func filterStack(channel catalog.ChannelMode) []string {
	switch channel {
	case catalog.ChannelLeft:
		return []string{"[0:a]channelsplit=channel_layout=stereo:channels=FL[in]"}
	case catalog.ChannelRight:
		return []string{"[0:a]channelsplit=channel_layout=stereo:channels=FR[in]"}
	default:
		return []string{"acopy[in]"}
	}
}

func (c *AudioConverter) handleConvertAudio(ctx context.Context, id string, t ConvertAudio, jctx *job.Context) error {
	if !c.acquire(ctx, t) {
		return nil
	}
	defer c.release()

	sourcePath, cleanupSource, err := c.store.AsTempfile(t.SourceFileID, "."+t.SourceFormat)
	if err != nil {
		return c.fail(ctx, id, t, fmt.Errorf("stage source: %w", err))
	}
	defer cleanupSource()

	targetFile, err := os.CreateTemp("", "convert-*."+t.TargetFormat)
	if err != nil {
		return c.fail(ctx, id, t, fmt.Errorf("create target temp file: %w", err))
	}
	targetPath := targetFile.Name()
	_ = targetFile.Close()
	defer os.Remove(targetPath)

	filters := filterStack(t.SourceChannel)
	filters = append(filters, "[in]dynaudnorm=framelen=1000:maxgain=3:coupling=false[out]")

	args := []string{"-y", "-i", sourcePath, "-filter_complex", strings.Join(filters, ";"), "-map", "[out]"}
	if t.BitrateKbps > 0 {
		args = append(args, "-b:a", fmt.Sprintf("%dk", t.BitrateKbps))
	}
	args = append(args, targetPath)

	code, runErr := c.runFFmpeg(ctx, jctx, "ffmpeg", args...)
	if runErr != nil {
		return c.fail(ctx, id, t, fmt.Errorf("run ffmpeg: %w", runErr))
	}
	if code != 0 {
		return c.fail(ctx, id, t, fmt.Errorf("%w: exit code %d", ErrFFmpegFailed, code))
	}

	f, err := os.Open(targetPath)
	if err != nil {
		return c.fail(ctx, id, t, fmt.Errorf("open converted file: %w", err))
	}
	defer f.Close()

	targetID, err := c.store.Store(filepath.Base(targetPath), f)
	if err != nil {
		return c.fail(ctx, id, t, fmt.Errorf("store converted file: %w", err))
	}

	c.metrics.Counter(metricSucceeded).Inc()
	_, err = c.dispatcher.Post(ctx, ConvertAudioResult{
		Result:       task.NewResult(id, nil),
		TargetFileID: targetID,
	})
	return err
}

func (c *AudioConverter) handleSliceAudio(ctx context.Context, id string, t SliceAudio, jctx *job.Context) error {
	if !c.acquire(ctx, t) {
		return nil
	}
	defer c.release()

	format := t.FileFormat
	if format == "" {
		format = "mp3"
	}
	segmentLength := t.SegmentLength
	if segmentLength <= 0 {
		segmentLength = 15
	}

	sourcePath, cleanupSource, err := c.store.AsTempfile(t.SourceFileID, "")
	if err != nil {
		return c.fail(ctx, id, t, fmt.Errorf("stage source: %w", err))
	}
	defer cleanupSource()

	targetDir, err := os.MkdirTemp("", "slice-*")
	if err != nil {
		return c.fail(ctx, id, t, fmt.Errorf("create target dir: %w", err))
	}
	defer os.RemoveAll(targetDir)

	pattern := filepath.Join(targetDir, "output_%03d."+format)
	args := []string{"-y", "-i", sourcePath, "-f", "segment", "-segment_time", fmt.Sprintf("%d", segmentLength), "-c", "copy", pattern}

	code, runErr := c.runFFmpeg(ctx, jctx, "ffmpeg", args...)
	if runErr != nil {
		return c.fail(ctx, id, t, fmt.Errorf("run ffmpeg: %w", runErr))
	}
	if code != 0 {
		return c.fail(ctx, id, t, fmt.Errorf("%w: exit code %d", ErrFFmpegFailed, code))
	}

	entries, err := os.ReadDir(targetDir)
	if err != nil {
		return c.fail(ctx, id, t, fmt.Errorf("read segments: %w", err))
	}

	targetIDs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		f, err := os.Open(filepath.Join(targetDir, entry.Name()))
		if err != nil {
			return c.fail(ctx, id, t, fmt.Errorf("open segment %q: %w", entry.Name(), err))
		}
		segID, err := c.store.Store(uuid.NewString()+"."+format, f)
		f.Close()
		if err != nil {
			return c.fail(ctx, id, t, fmt.Errorf("store segment %q: %w", entry.Name(), err))
		}
		targetIDs = append(targetIDs, segID)
	}

	c.metrics.Counter(metricSucceeded).Inc()
	_, err = c.dispatcher.Post(ctx, SliceAudioResult{
		Result:        task.NewResult(id, nil),
		TargetFileIDs: targetIDs,
	})
	return err
}

// handleAppendAlbumArt embeds album art into an audio file. Not yet
// implemented upstream (the original leaves this handler a stub); we keep
// that scope here too and only wire admission control and the result
// round trip.
func (c *AudioConverter) handleAppendAlbumArt(ctx context.Context, id string, t AppendAlbumArt, jctx *job.Context) error {
	if !c.acquire(ctx, t) {
		return nil
	}
	defer c.release()

	_ = jctx
	return c.fail(ctx, id, t, fmt.Errorf("append album art: not implemented"))
}

func (c *AudioConverter) fail(ctx context.Context, id string, t any, cause error) error {
	c.metrics.Counter(metricFailed).Inc()
	c.log.Error().Err(cause).Str("task_id", id).Msg("handler: audio task failed")

	var err error
	switch t.(type) {
	case ConvertAudio:
		_, err = c.dispatcher.Post(ctx, ConvertAudioResult{Result: task.NewResult(id, cause)})
	case SliceAudio:
		_, err = c.dispatcher.Post(ctx, SliceAudioResult{Result: task.NewResult(id, cause)})
	case AppendAlbumArt:
		_, err = c.dispatcher.Post(ctx, AppendAlbumArtResult{Result: task.NewResult(id, cause)})
	}
	if err != nil {
		c.log.Error().Err(err).Msg("handler: post failure result failed")
	}
	return cause
}

// handleConvertAudioResult, handleSliceAudioResult, and
// handleAppendAlbumArtResult mirror the original's convert_audio_result /
// slice_audio_result / append_album_art_result: they only log, matching
// the original's inert result-reporting handlers.
func (c *AudioConverter) handleConvertAudioResult(_ context.Context, _ string, r ConvertAudioResult, _ *job.Context) error {
	c.logResult("audio conversion", r.TaskID, r.IsFailed, r.FailureReason)
	return nil
}

func (c *AudioConverter) handleSliceAudioResult(_ context.Context, _ string, r SliceAudioResult, _ *job.Context) error {
	c.logResult("audio slicing", r.TaskID, r.IsFailed, r.FailureReason)
	return nil
}

func (c *AudioConverter) handleAppendAlbumArtResult(_ context.Context, _ string, r AppendAlbumArtResult, _ *job.Context) error {
	c.logResult("album art append", r.TaskID, r.IsFailed, r.FailureReason)
	return nil
}

func (c *AudioConverter) logResult(label, taskID string, isFailed bool, reason string) {
	if isFailed {
		c.log.Error().Str("task_id", taskID).Str("reason", reason).Msgf("handler: %s failed", label)
		return
	}
	c.log.Debug().Str("task_id", taskID).Msgf("handler: %s finished", label)
}
