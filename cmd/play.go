package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"clipstream/internal/download"
	"clipstream/internal/history"
	"clipstream/internal/log"
	"clipstream/internal/player"
	"clipstream/internal/source"
	"clipstream/internal/ui"
)

// playRun is the default command: clipstream <url>
func playRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var rawURL string
	if len(args) > 0 {
		rawURL = args[0]
	} else {
		// Prompt for the link via fzf
		var err error
		rawURL, err = ui.Input(ctx, "URL")
		if err != nil {
			return fmt.Errorf("no url provided")
		}
	}

	m, err := newManager()
	if err != nil {
		return err
	}
	defer m.Close()

	track, err := resolve(ctx, m, rawURL)
	if err != nil {
		return err
	}
	return handleTrack(ctx, track)
}

// resolve turns rawURL into a track with a user-facing error.
func resolve(ctx context.Context, m *source.Manager, rawURL string) (source.Track, error) {
	log.Debugf("resolving: %s", rawURL)

	track, err := m.Resolve(ctx, rawURL)
	if errors.Is(err, source.ErrNotRecognized) {
		return nil, fmt.Errorf("%q is not a Reddit post or TikTok video link (supported sources: %v)", rawURL, m.Names())
	}
	if err != nil {
		return nil, err
	}
	return track, nil
}

// handleTrack prints, downloads or plays track according to the flags.
func handleTrack(ctx context.Context, track source.Track) error {
	info := track.Info()
	log.Debugf("resolved %s track %s: %q", track.SourceName(), info.Identifier, info.Title)

	if flagJSON {
		return writeJSON(os.Stdout, track)
	}

	if flagDownload != "" {
		d := &download.Downloader{Dir: flagDownload}
		outputPath, err := d.Track(ctx, track)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Downloaded: %s\n", outputPath)
		return nil
	}

	if err := player.PlayTrack(ctx, player.New(cfg.Player), track); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}

	if cfg.History {
		saveHistory(track)
	}
	return nil
}

func saveHistory(track source.Track) {
	store, err := history.OpenDefault()
	if err != nil {
		log.Warnf("opening history failed: %v", err)
		return
	}
	defer store.Close()

	if err := store.Save(track.SourceName(), track.Info(), time.Now()); err != nil {
		log.Warnf("saving history failed: %v", err)
	}
}
