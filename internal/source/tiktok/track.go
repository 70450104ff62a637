package tiktok

import (
	"context"
	"fmt"

	"clipstream/internal/httputil"
	"clipstream/internal/log"
	"clipstream/internal/media"
	"clipstream/internal/source"
	"clipstream/internal/stream"
)

// Track is a TikTok video. It holds no media URL; Process asks the detail
// API for a current one every time.
type Track struct {
	info   media.Info
	source *TikTok
}

func (t *Track) Info() media.Info { return t.info }

func (t *Track) SourceName() string { return Name }

// Clone returns an unconnected duplicate.
func (t *Track) Clone() source.Track {
	return &Track{info: t.info, source: t.source}
}

// Process fetches a fresh playback URL, opens a seekable stream over it and
// hands the stream to p.
func (t *Track) Process(ctx context.Context, p media.Processor) error {
	h := t.source.pool.Get()
	defer h.Close()

	playbackURL, err := t.loadPlaybackURL(ctx, h)
	if err != nil {
		return err
	}

	log.Debugf("starting tiktok track from url: %s", playbackURL)

	s, err := stream.Open(ctx, h, playbackURL, nil)
	if err != nil {
		return media.Upstream("loading track from tiktok failed", err)
	}
	defer s.Close()

	if err := s.Connect(); err != nil {
		return media.Upstream("loading track from tiktok failed", err)
	}

	return p.Process(ctx, t.info, s)
}

func (t *Track) loadPlaybackURL(ctx context.Context, h *httputil.Interface) (string, error) {
	detail, err := t.source.fetchDetail(ctx, h, t.info.Identifier)
	if err != nil {
		return "", media.Upstream("failed to get tiktok video playback url", err)
	}

	playbackURL := detail.Video.PlayAddr.first()
	if playbackURL == "" {
		return "", media.Upstream("failed to get tiktok video playback url", fmt.Errorf("play_addr has no urls"))
	}
	return playbackURL, nil
}
