package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"clipstream/internal/media"
)

// Generic implements the Player interface for players like iina and celluloid
// that accept mpv-compatible arguments.
type Generic struct {
	name string
}

func (g *Generic) Name() string { return g.name }

func (g *Generic) Available() bool {
	_, err := exec.LookPath(g.name)
	return err == nil
}

func (g *Generic) args(in Input, info media.Info) []string {
	return []string{in.target(), "--force-media-title=" + title(info)}
}

// Play launches the generic player. Position tracking is not supported.
func (g *Generic) Play(ctx context.Context, in Input, info media.Info) (float64, error) {
	cmd := execCommand(ctx, g.name, g.args(in, info)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if in.Stdin != nil {
		cmd.Stdin = in.Stdin
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return 0, nil
		}
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("running %s: %w", g.name, err)
	}

	return 0, nil
}
