// Package player launches media players. All player invocations use
// exec.Command with explicit argument slices, so titles and URLs taken from
// upstream APIs are never interpreted by a shell.
package player

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"clipstream/internal/log"
	"clipstream/internal/media"
	"clipstream/internal/source"
)

// Input is what the player opens: a direct URL, or media piped on stdin
// when Stdin is set.
type Input struct {
	URL   string
	Stdin io.Reader
}

func (in Input) target() string {
	if in.Stdin != nil {
		return "-"
	}
	return in.URL
}

// Player is the interface for media player implementations.
type Player interface {
	// Play starts playback and blocks until the player exits. Returns the
	// last playback position in seconds when the player reports one.
	Play(ctx context.Context, in Input, info media.Info) (float64, error)

	// Name returns the player name.
	Name() string

	// Available checks if the player binary exists in PATH.
	Available() bool
}

// New creates a player by name.
func New(name string) Player {
	switch name {
	case "mpv":
		return &MPV{}
	case "vlc":
		return &VLC{}
	case "iina", "celluloid":
		return &Generic{name: name}
	default:
		return &MPV{} // Default to mpv
	}
}

// execCommand is swapped out in tests.
var execCommand = exec.CommandContext

// Processor feeds an opened track stream to a player through its stdin.
type Processor struct {
	Player Player
}

// Process checks that the stream holds an MPEG-4 container and pipes it to
// the player.
func (p *Processor) Process(ctx context.Context, info media.Info, r io.ReadSeeker) error {
	brand, err := media.SniffContainer(r)
	if err != nil {
		return media.Upstream("stream is not playable video", err)
	}
	log.Debugf("piping %s stream (brand %s) to %s", info.Identifier, brand, p.Player.Name())

	pos, err := p.Player.Play(ctx, Input{Stdin: r}, info)
	if err != nil {
		return err
	}
	log.Debugf("playback of %s stopped at %.0fs", info.Identifier, pos)
	return nil
}

// PlayTrack plays track with pl. Tracks that open their own stream are piped
// through a Processor; the rest are handed to the player by URI.
func PlayTrack(ctx context.Context, pl Player, track source.Track) error {
	if !pl.Available() {
		return fmt.Errorf("player %q not found in PATH", pl.Name())
	}

	if s, ok := track.(source.Streamer); ok {
		return s.Process(ctx, &Processor{Player: pl})
	}

	info := track.Info()
	if info.URI == "" {
		return fmt.Errorf("track %s has no playable uri", info.Identifier)
	}
	pos, err := pl.Play(ctx, Input{URL: info.URI}, info)
	if err != nil {
		return err
	}
	log.Debugf("playback of %s stopped at %.0fs", info.Identifier, pos)
	return nil
}

// title is the window title shown by the player.
func title(info media.Info) string {
	switch {
	case info.Title != "" && info.Author != "":
		return info.Title + " - " + info.Author
	case info.Title != "":
		return info.Title
	default:
		return info.Identifier
	}
}
