package httputil

import (
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid HTTPS", "https://example.com/path", false},
		{"valid HTTP", "http://example.com/path", false},
		{"javascript scheme rejected", "javascript:alert(1)", true},
		{"data scheme rejected", "data:text/html,<h1>Hi</h1>", true},
		{"FTP rejected", "ftp://example.com/file", true},
		{"file rejected", "file:///etc/passwd", true},
		{"empty string", "", true},
		{"no host", "https://", true},
		{"scheme-less", "vm.tiktok.com/ZMabc/", true},
		{"valid with port", "https://example.com:8080/path", false},
		{"valid with query", "https://api.reddit.com/api/info/?id=t3_abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestWithScheme(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"vm.tiktok.com/ZMabc/", "https://vm.tiktok.com/ZMabc/"},
		{"https://vm.tiktok.com/ZMabc/", "https://vm.tiktok.com/ZMabc/"},
		{"http://vm.tiktok.com/ZMabc/", "http://vm.tiktok.com/ZMabc/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := WithScheme(tt.input); got != tt.want {
				t.Errorf("WithScheme(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateNumericID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", "7234567890123456789", false},
		{"zero", "0", false},
		{"empty", "", true},
		{"letters", "abc", true},
		{"mixed", "123abc", true},
		{"negative", "-1", true},
		{"decimal", "1.5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNumericID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNumericID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"normal filename", "clip.mp4", "clip.mp4"},
		{"slash in title", "AC/DC cover", "AC_DC cover"},
		{"null bytes", "clip\x00.mp4", "clip.mp4"},
		{"Windows special chars", "clip<>:\"|?*.mp4", "clip_______.mp4"},
		{"newline", "first line\nsecond", "first line second"},
		{"empty string", "", "untitled"},
		{"just dots", "..", "untitled"},
		{"just dot", ".", "untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeFilenameTraversal(t *testing.T) {
	got := SanitizeFilename("../../etc/passwd")
	if strings.Contains(got, "/") || strings.Contains(got, "..") {
		t.Errorf("SanitizeFilename left traversal in %q", got)
	}
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	got := SanitizeFilename(strings.Repeat("#fyp ", 60))
	if n := len([]rune(got)); n > 120 {
		t.Errorf("got %d runes, want at most 120", n)
	}
}

func TestSafeDownloadPath(t *testing.T) {
	tests := []struct {
		name     string
		dir      string
		filename string
		wantErr  bool
	}{
		{"normal", "/tmp/downloads", "clip.mp4", false},
		{"path traversal attempt", "/tmp/downloads", "../../etc/passwd", false}, // sanitized
		{"shell injection", "/tmp/downloads", "$(whoami).mp4", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := SafeDownloadPath(tt.dir, tt.filename)
			if (err != nil) != tt.wantErr {
				t.Errorf("SafeDownloadPath(%q, %q) error = %v, wantErr %v", tt.dir, tt.filename, err, tt.wantErr)
			}
			if err == nil && !strings.HasPrefix(path, "/tmp/downloads/") {
				t.Errorf("SafeDownloadPath escaped the directory: %q", path)
			}
		})
	}
}
