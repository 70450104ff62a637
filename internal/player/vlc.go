package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"clipstream/internal/media"
)

// VLC implements the Player interface for VLC media player.
type VLC struct{}

func (v *VLC) Name() string { return "vlc" }

func (v *VLC) Available() bool {
	_, err := exec.LookPath("vlc")
	return err == nil
}

func (v *VLC) args(in Input, info media.Info) []string {
	return []string{
		in.target(),
		"--meta-title", title(info),
		"--play-and-exit",
	}
}

// Play launches VLC. VLC doesn't have IPC position tracking like mpv,
// so we return 0 for position.
func (v *VLC) Play(ctx context.Context, in Input, info media.Info) (float64, error) {
	cmd := execCommand(ctx, "vlc", v.args(in, info)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if in.Stdin != nil {
		cmd.Stdin = in.Stdin
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return 0, nil // VLC exits non-zero on user close
		}
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("running vlc: %w", err)
	}

	return 0, nil
}
