// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package handler

import (
	"github.com/caiwan/audioarchive/catalog"
	"github.com/caiwan/audioarchive/task"
)

// ConvertAudio converts a single audio blob to a target format/bitrate,
// optionally extracting one channel first (§12).
type ConvertAudio struct {
	SourceFileID  string              `json:"source_file_id"`
	SourceFormat  string              `json:"source_format"`
	SourceChannel catalog.ChannelMode `json:"source_channel"`
	TargetFormat  string              `json:"target_format"`
	BitrateKbps   int                 `json:"bitrate_kbps,omitempty"`
}

// ConvertAudioResult reports the outcome of a ConvertAudio task.
type ConvertAudioResult struct {
	task.Result
	TargetFileID string `json:"target_file_id,omitempty"`
}

// SliceAudio splits a blob into fixed-length segments.
type SliceAudio struct {
	SourceFileID  string `json:"source_file_id"`
	FileFormat    string `json:"file_format"`
	SegmentLength int    `json:"segment_length"`
}

// SliceAudioResult reports the outcome of a SliceAudio task.
type SliceAudioResult struct {
	task.Result
	TargetFileIDs []string `json:"target_file_ids,omitempty"`
}

// AppendAlbumArt embeds album art into an audio blob.
type AppendAlbumArt struct {
	SourceFileID   string `json:"source_file_id"`
	AlbumArtFileID string `json:"album_art_file_id"`
}

// AppendAlbumArtResult reports the outcome of an AppendAlbumArt task.
type AppendAlbumArtResult struct {
	task.Result
	TargetFileID string `json:"target_file_id,omitempty"`
}

func init() {
	task.Register[ConvertAudio]("ConvertAudio")
	task.Register[ConvertAudioResult]("ConvertAudioResult")
	task.Register[SliceAudio]("SliceAudio")
	task.Register[SliceAudioResult]("SliceAudioResult")
	task.Register[AppendAlbumArt]("AppendAlbumArt")
	task.Register[AppendAlbumArtResult]("AppendAlbumArtResult")
}
