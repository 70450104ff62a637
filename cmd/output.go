package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"clipstream/internal/media"
	"clipstream/internal/source"
)

// trackJSON is the --json form of a track: its persisted envelope.
type trackJSON struct {
	Source   string     `json:"source"`
	Info     media.Info `json:"info"`
	Streamed bool       `json:"streamed"`
}

func writeJSON(w io.Writer, track source.Track) error {
	_, streamed := track.(source.Streamer)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(trackJSON{Source: track.SourceName(), Info: track.Info(), Streamed: streamed})
}

// fields lists the label/value pairs shown for a track.
func fields(track source.Track) [][2]string {
	info := track.Info()
	return [][2]string{
		{"Source", track.SourceName()},
		{"Title", info.Title},
		{"Author", info.Author},
		{"Length", media.FormatLength(info.Length)},
		{"ID", info.Identifier},
		{"URI", info.URI},
		{"Thumbnail", info.ThumbnailURL},
	}
}

func writePlain(w io.Writer, track source.Track) error {
	for _, f := range fields(track) {
		if f[1] == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s:\t%s\n", f[0], f[1]); err != nil {
			return err
		}
	}
	return nil
}

var (
	accentColor = lipgloss.Color("205")
	faintColor  = lipgloss.Color("245")

	cardStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accentColor).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	labelStyle = lipgloss.NewStyle().Foreground(faintColor).Width(10)
)

// renderCard draws the metadata card shown on a terminal.
func renderCard(track source.Track, width int) string {
	info := track.Info()

	title := info.Title
	if title == "" {
		title = info.Identifier
	}

	inner := width - 4 // border and padding
	if inner < 20 {
		inner = 20
	}

	lines := []string{titleStyle.MaxWidth(inner).Render(title), ""}
	for _, f := range fields(track)[2:] {
		if f[1] == "" {
			continue
		}
		lines = append(lines, lipgloss.NewStyle().MaxWidth(inner).Render(labelStyle.Render(f[0])+f[1]))
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(faintColor).Render("via "+track.SourceName()))

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
