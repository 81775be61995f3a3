// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package handler

import (
	"context"
	"errors"
	"time"

	"github.com/caiwan/audioarchive/catalog"
	"github.com/caiwan/audioarchive/dispatch"
	"github.com/caiwan/audioarchive/workflow"
)

// ErrNoTracks is returned when a Recording has no Track to convert, the
// Go counterpart of AudioConversionStep.create_task's "not
// recording.audio_sources" early-return.
var ErrNoTracks = errors.New("handler: recording has no tracks")

// ConversionStep is a workflow.Step grounded on
// original_source/tapearchive/workflow/conversion_workflow.py's
// AudioConversionStep: it resolves a catalog.Recording's first Track and
// posts a ConvertAudio task for it, carrying the source's own format and
// channel layout through to the target (§12).
//
// Only the first Track is converted, mirroring the original's
// more_itertools.first(recording.audio_sources) and its accompanying TODO
// that multi-source recordings are not yet handled.
type ConversionStep struct {
	workflow.BaseStep
	dispatcher   *dispatch.Dispatcher
	recording    catalog.Recording
	targetFormat string
	bitrateKbps  int
}

// NewConversionStep builds a ConversionStep for recording, converting its
// first Track to targetFormat at bitrateKbps.
func NewConversionStep(name string, timeout time.Duration, d *dispatch.Dispatcher, recording catalog.Recording, targetFormat string, bitrateKbps int) *ConversionStep {
	return &ConversionStep{
		BaseStep:     workflow.NewBaseStep(name, timeout, nil),
		dispatcher:   d,
		recording:    recording,
		targetFormat: targetFormat,
		bitrateKbps:  bitrateKbps,
	}
}

// CreateTask resolves recording's first Track and posts a ConvertAudio
// task for it.
func (s *ConversionStep) CreateTask(ctx context.Context) (string, error) {
	if len(s.recording.Tracks) == 0 {
		return "", ErrNoTracks
	}
	track := s.recording.Tracks[0]

	return s.dispatcher.Post(ctx, ConvertAudio{
		SourceFileID:  track.BlobID,
		SourceFormat:  track.Format,
		SourceChannel: track.Channel,
		TargetFormat:  s.targetFormat,
		BitrateKbps:   s.bitrateKbps,
	})
}

// VerifyDone reports whether the posted ConvertAudio task has produced a
// result yet; the manager calls this both right before CreateTask (to
// short-circuit an already-satisfied step) and whenever a matching
// task.Result arrives.
func (s *ConversionStep) VerifyDone(ctx context.Context) (bool, error) {
	return s.Base().HasResult(), nil
}
