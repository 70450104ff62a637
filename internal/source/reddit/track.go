package reddit

import (
	"clipstream/internal/media"
	"clipstream/internal/source"
)

// Track is a Reddit video. Its fallback URL does not expire quickly, so it
// is played directly from Info().URI.
type Track struct {
	info media.Info
}

func (t *Track) Info() media.Info { return t.info }

func (t *Track) SourceName() string { return Name }

func (t *Track) Clone() source.Track {
	return &Track{info: t.info}
}
