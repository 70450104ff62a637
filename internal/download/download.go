// Package download saves tracks to disk with ffmpeg.
// Uses exec.Command with explicit argument slices and validates
// output paths against directory traversal attacks.
package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"clipstream/internal/httputil"
	"clipstream/internal/log"
	"clipstream/internal/media"
	"clipstream/internal/source"
)

// execCommand is swapped out in tests.
var execCommand = exec.CommandContext

// Downloader writes tracks into Dir. For streamed tracks it acts as the
// media.Processor that receives the opened stream.
type Downloader struct {
	Dir string

	// Path is set to the written file after a successful download.
	Path string
}

// Track downloads track. Tracks that open their own stream are piped into
// ffmpeg; the rest are fetched by ffmpeg from their URI.
func (d *Downloader) Track(ctx context.Context, track source.Track) (string, error) {
	if s, ok := track.(source.Streamer); ok {
		if err := s.Process(ctx, d); err != nil {
			return "", err
		}
		return d.Path, nil
	}

	info := track.Info()
	if info.URI == "" {
		return "", fmt.Errorf("track %s has no downloadable uri", info.Identifier)
	}
	if err := d.run(ctx, info, info.URI, nil); err != nil {
		return "", err
	}
	return d.Path, nil
}

// Process implements media.Processor by piping r into ffmpeg.
func (d *Downloader) Process(ctx context.Context, info media.Info, r io.ReadSeeker) error {
	if _, err := media.SniffContainer(r); err != nil {
		return media.Upstream("stream is not downloadable video", err)
	}
	return d.run(ctx, info, "pipe:0", r)
}

func (d *Downloader) run(ctx context.Context, info media.Info, input string, stdin io.Reader) error {
	// Validate ffmpeg is available
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	outputPath, err := OutputPath(d.Dir, info)
	if err != nil {
		return err
	}

	cmd := execCommand(ctx, ffmpegPath, Args(input, info, outputPath)...)
	cmd.Stdin = stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	log.Infof("downloading %s to %s", info.Identifier, outputPath)
	fmt.Fprintf(os.Stderr, "Downloading to: %s\n", outputPath)

	if err := cmd.Run(); err != nil {
		// Clean up partial download on failure
		os.Remove(outputPath)
		return fmt.Errorf("ffmpeg download failed: %w", err)
	}

	d.Path = outputPath
	return nil
}

// OutputPath creates dir if needed and returns the sanitized file path for info.
func OutputPath(dir string, info media.Info) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving output directory: %w", err)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	name := info.Title
	if name == "" {
		name = info.Identifier
	}
	filename := httputil.SanitizeFilename(name) + ".mp4"
	outputPath, err := httputil.SafeDownloadPath(absDir, filename)
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}
	return outputPath, nil
}

// Args builds the ffmpeg argument list. Streams are copied, never re-encoded.
func Args(input string, info media.Info, outputPath string) []string {
	args := []string{
		"-y", // Overwrite output
		"-hide_banner",
		"-loglevel", "error",
		"-i", input,
		"-c", "copy",
		"-metadata", "title=" + info.Title,
	}
	if info.Author != "" {
		args = append(args, "-metadata", "artist="+info.Author)
	}
	if info.URI != "" {
		args = append(args, "-metadata", "comment="+info.URI)
	}
	return append(args, outputPath)
}
