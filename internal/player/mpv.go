package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"clipstream/internal/media"
)

// MPV implements the Player interface for mpv.
// Uses IPC via Unix socket at a randomized temp path to track position.
type MPV struct{}

func (m *MPV) Name() string { return "mpv" }

func (m *MPV) Available() bool {
	_, err := exec.LookPath("mpv")
	return err == nil
}

func (m *MPV) args(in Input, info media.Info, socketPath string) []string {
	args := []string{
		in.target(),
		"--force-media-title=" + title(info),
		"--input-ipc-server=" + socketPath,
		"--really-quiet",
	}
	if in.Stdin != nil {
		// Keys would otherwise be read from the media pipe.
		args = append(args, "--no-input-terminal")
	}
	return args
}

// Play launches mpv and returns the final playback position.
func (m *MPV) Play(ctx context.Context, in Input, info media.Info) (float64, error) {
	// Randomized IPC socket path prevents symlink attacks
	socketDir, err := os.MkdirTemp("", "clipstream-mpv-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp dir for mpv socket: %w", err)
	}
	defer os.RemoveAll(socketDir)

	socketPath := filepath.Join(socketDir, "socket")

	cmd := execCommand(ctx, "mpv", m.args(in, info, socketPath)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if in.Stdin != nil {
		cmd.Stdin = in.Stdin
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting mpv: %w", err)
	}

	posCh := make(chan float64, 1)
	go func() {
		posCh <- trackPosition(socketPath)
	}()

	err = cmd.Wait()
	var lastPos float64
	select {
	case lastPos = <-posCh:
	case <-time.After(time.Second):
	}

	if err != nil {
		var exitErr *exec.ExitError
		// mpv exits 4 when the user quits, which is normal
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 4 {
			return lastPos, nil
		}
		if ctx.Err() != nil {
			return lastPos, ctx.Err()
		}
		return lastPos, fmt.Errorf("running mpv: %w", err)
	}

	return lastPos, nil
}

// trackPosition observes mpv's time-pos over the IPC socket until mpv
// closes it.
func trackPosition(socketPath string) float64 {
	var lastPos float64

	// Wait for socket to appear
	for i := 0; i < 50; i++ {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return 0
	}
	defer conn.Close()

	cmd := map[string]interface{}{
		"command":    []interface{}{"observe_property", 1, "time-pos"},
		"request_id": 100,
	}
	data, _ := json.Marshal(cmd)
	data = append(data, '\n')
	conn.Write(data)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		if pos, ok := parsePositionEvent(scanner.Bytes()); ok {
			lastPos = pos
		}
	}

	return lastPos
}

// parsePositionEvent extracts time-pos from one IPC event line.
func parsePositionEvent(line []byte) (float64, bool) {
	var event struct {
		Event string   `json:"event"`
		Name  string   `json:"name"`
		Data  *float64 `json:"data"`
	}
	if err := json.Unmarshal(line, &event); err != nil {
		return 0, false
	}
	if event.Name != "time-pos" || event.Data == nil || *event.Data <= 0 {
		return 0, false
	}
	return *event.Data, true
}
