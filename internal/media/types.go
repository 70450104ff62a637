// Package media defines shared types for the clipstream application.
package media

import (
	"context"
	"io"
	"math"
	"time"
)

// DurationUnknown marks a track whose length the upstream API did not report.
const DurationUnknown int64 = math.MaxInt64

// Info describes a resolved video. It is never mutated after a source builds it.
type Info struct {
	Title        string `json:"title"`
	Author       string `json:"author"`
	Length       int64  `json:"length"`     // Milliseconds, or DurationUnknown
	Identifier   string `json:"identifier"` // Reddit CDN video id or TikTok aweme id
	IsStream     bool   `json:"isStream"`
	URI          string `json:"uri"` // Direct media URL (Reddit) or canonical page URL (TikTok)
	ThumbnailURL string `json:"thumbnailUrl"`
}

// HasLength reports whether the track length is known.
func (i Info) HasLength() bool {
	return i.Length != DurationUnknown
}

// Duration returns the track length, or zero when it is unknown.
func (i Info) Duration() time.Duration {
	if !i.HasLength() {
		return 0
	}
	return time.Duration(i.Length) * time.Millisecond
}

// Processor consumes an opened media stream, typically by demuxing the
// MPEG container and decoding or forwarding it.
type Processor interface {
	Process(ctx context.Context, info Info, r io.ReadSeeker) error
}

// HistoryEntry is the persisted envelope of a previously played track.
type HistoryEntry struct {
	ID        string // Row id
	Source    string // Name of the source that produced the track
	Info      Info
	PlayedAt  time.Time
	PlayCount int
}
