package media

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDurationText converts "45", "1:30" or "1:02:03" into milliseconds.
// Each colon-separated field is an integer; fields accumulate base 60.
func ParseDurationText(text string) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("empty duration")
	}

	parts := strings.Split(text, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("too many fields in duration %q", text)
	}

	var seconds int64
	for _, part := range parts {
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing duration %q: %w", text, err)
		}
		if v < 0 {
			return 0, fmt.Errorf("negative field in duration %q", text)
		}
		seconds = seconds*60 + v
	}

	return seconds * 1000, nil
}

// FormatLength renders a track length as H:MM:SS or M:SS.
func FormatLength(ms int64) string {
	if ms == DurationUnknown {
		return "unknown"
	}
	s := ms / 1000
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
