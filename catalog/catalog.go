// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package catalog provides the minimal record types the audio-conversion
// handler resolves against (§12, supplemented from
// original_source/tapearchive/models/catalog.py's RecordingEntry/
// CatalogEntry): enough to let handler.ConversionStep turn a
// Recording's Track into a ConvertAudio task, without the original's
// catalog persistence, CSV import, or HTTP surface (out of scope per §1).
package catalog

// ChannelMode mirrors the original's source-channel enum: a tape side may
// be recorded left-only, right-only, or as a proper stereo pair.
type ChannelMode string

const (
	ChannelLeft   ChannelMode = "left"
	ChannelRight  ChannelMode = "right"
	ChannelStereo ChannelMode = "stereo"
)

// Track is one audio file belonging to a Recording: a blob id plus the
// format/bitrate metadata a conversion task needs to act on it.
type Track struct {
	ID      string
	BlobID  string
	Format  string
	Bitrate int
	Channel ChannelMode
}

// Recording groups the tracks captured from a single physical tape side.
// SourceTapeID identifies that physical tape in the (out-of-scope)
// archive inventory; Title/Artist are the metadata the original's
// RecordingEntry carries as free-form name/description fields.
type Recording struct {
	ID           string
	Title        string
	Artist       string
	SourceTapeID string
	Tracks       []Track
}
