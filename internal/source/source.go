// Package source defines the interface for media sources and the manager
// that routes user-supplied URLs to them.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"clipstream/internal/log"
	"clipstream/internal/media"
)

// ErrNotRecognized is returned when no source matches an identifier.
var ErrNotRecognized = errors.New("no source recognizes this URL")

// Source turns URLs of one platform into tracks.
type Source interface {
	// Name returns the source name, e.g. "reddit".
	Name() string

	// Resolve returns the track behind url. It returns ErrNotRecognized,
	// without any network access, when url does not belong to the source.
	Resolve(ctx context.Context, url string) (Track, error)

	// Decode rebuilds a track from its persisted info.
	Decode(info media.Info) (Track, error)

	// Close releases pooled connections.
	Close()
}

// Track is a resolved item. Its Info never changes.
type Track interface {
	Info() media.Info

	// SourceName names the source that produced the track.
	SourceName() string

	// Clone returns an independent copy sharing no connection state.
	Clone() Track
}

// Streamer is implemented by tracks whose media URL expires and must be
// fetched when playback starts. Tracks without it are played from Info().URI.
type Streamer interface {
	Track

	// Process opens a fresh stream and hands it to p together with the
	// track's info. The stream is closed when Process returns.
	Process(ctx context.Context, p media.Processor) error
}

// Manager routes identifiers to the registered sources in order.
type Manager struct {
	sources []Source
}

// NewManager creates a manager over sources, tried in the given order.
func NewManager(sources ...Source) *Manager {
	return &Manager{sources: sources}
}

// Names lists the registered source names.
func (m *Manager) Names() []string {
	return lo.Map(m.sources, func(s Source, _ int) string { return s.Name() })
}

// Resolve asks each source in turn. The first source that recognizes the
// identifier decides the outcome.
func (m *Manager) Resolve(ctx context.Context, identifier string) (Track, error) {
	for _, s := range m.sources {
		track, err := s.Resolve(ctx, identifier)
		if errors.Is(err, ErrNotRecognized) {
			continue
		}
		if err != nil {
			report(s.Name(), identifier, err)
			return nil, err
		}

		log.WithFields(map[string]interface{}{
			"source":     s.Name(),
			"identifier": track.Info().Identifier,
		}).Debug("resolved track")
		return track, nil
	}

	return nil, ErrNotRecognized
}

// Decode rebuilds a track persisted by the named source.
func (m *Manager) Decode(sourceName string, info media.Info) (Track, error) {
	s, ok := lo.Find(m.sources, func(s Source) bool { return s.Name() == sourceName })
	if !ok {
		return nil, fmt.Errorf("unknown source %q", sourceName)
	}
	return s.Decode(info)
}

// Close closes every source.
func (m *Manager) Close() {
	for _, s := range m.sources {
		s.Close()
	}
}

// report logs upstream failures loudly since they usually mean the
// platform API changed; unplayable content is routine.
func report(sourceName, identifier string, err error) {
	entry := log.WithFields(map[string]interface{}{
		"source": sourceName,
		"url":    identifier,
	})
	if media.KindOf(err) == media.NotPlayableContent {
		entry.Debugf("content not playable: %v", err)
		return
	}
	entry.Warnf("loading failed: %v", err)
}
