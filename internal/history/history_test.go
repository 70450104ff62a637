package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"clipstream/internal/media"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := openTestStore(t)

	info := media.Info{
		Title:        "making pasta from scratch",
		Author:       "Chef Ana",
		Length:       media.DurationUnknown,
		Identifier:   "7301234567890123456",
		URI:          "https://www.tiktok.com/@chefana/video/7301234567890123456",
		ThumbnailURL: "https://p16-sign.tiktokcdn.com/cover.jpeg",
	}
	playedAt := time.UnixMilli(1_700_000_000_123)

	if err := s.Save("tiktok", info, playedAt); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	entries, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	got := entries[0]
	if got.Source != "tiktok" {
		t.Errorf("Source = %q, want tiktok", got.Source)
	}
	if got.Info != info {
		t.Errorf("Info = %+v, want %+v", got.Info, info)
	}
	if !got.PlayedAt.Equal(playedAt) {
		t.Errorf("PlayedAt = %v, want %v", got.PlayedAt, playedAt)
	}
	if got.PlayCount != 1 {
		t.Errorf("PlayCount = %d, want 1", got.PlayCount)
	}
	if got.ID == "" {
		t.Error("entry should have a row id")
	}
}

func TestSaveUpdatesExisting(t *testing.T) {
	s := openTestStore(t)

	info := media.Info{Title: "Old title", Identifier: "x7k2m9", URI: "https://v.redd.it/x7k2m9/DASH_720.mp4", Length: 1000}
	if err := s.Save("reddit", info, time.UnixMilli(1000)); err != nil {
		t.Fatal(err)
	}

	info.Title = "New title"
	if err := s.Save("reddit", info, time.UnixMilli(2000)); err != nil {
		t.Fatal(err)
	}

	entries, _ := s.Load()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after update, got %d", len(entries))
	}
	if entries[0].Info.Title != "New title" {
		t.Errorf("title = %q, want New title", entries[0].Info.Title)
	}
	if entries[0].PlayCount != 2 {
		t.Errorf("play count = %d, want 2", entries[0].PlayCount)
	}
	if entries[0].PlayedAt.UnixMilli() != 2000 {
		t.Errorf("played at = %d, want 2000", entries[0].PlayedAt.UnixMilli())
	}
}

func TestSameIdentifierDifferentSources(t *testing.T) {
	s := openTestStore(t)

	info := media.Info{Identifier: "123", Length: 0}
	s.Save("reddit", info, time.UnixMilli(1))
	s.Save("tiktok", info, time.UnixMilli(2))

	entries, _ := s.Load()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Most recent first.
	if entries[0].Source != "tiktok" || entries[1].Source != "reddit" {
		t.Errorf("order = %s, %s", entries[0].Source, entries[1].Source)
	}
}

func TestSaveRequiresKey(t *testing.T) {
	s := openTestStore(t)

	if err := s.Save("", media.Info{Identifier: "a"}, time.Now()); err == nil {
		t.Error("Save() without source should fail")
	}
	if err := s.Save("reddit", media.Info{}, time.Now()); err == nil {
		t.Error("Save() without identifier should fail")
	}
}

func TestRemove(t *testing.T) {
	s := openTestStore(t)

	s.Save("reddit", media.Info{Identifier: "a", Title: "A"}, time.UnixMilli(1))
	s.Save("reddit", media.Info{Identifier: "b", Title: "B"}, time.UnixMilli(2))

	entries, _ := s.Load()
	var idA string
	for _, e := range entries {
		if e.Info.Identifier == "a" {
			idA = e.ID
		}
	}

	if err := s.Remove(idA); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}

	entries, _ = s.Load()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after remove, got %d", len(entries))
	}
	if entries[0].Info.Identifier != "b" {
		t.Errorf("remaining entry = %q, want b", entries[0].Info.Identifier)
	}

	if err := s.Remove(idA); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove() error = %v, want ErrNotFound", err)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Save("reddit", media.Info{Identifier: "a"}, time.UnixMilli(1))
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	entries, _ := s.Load()
	if len(entries) != 1 {
		t.Errorf("expected 1 entry after reopen, got %d", len(entries))
	}
}

func TestOpenDefault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	s, err := OpenDefault()
	if err != nil {
		t.Fatalf("OpenDefault() error: %v", err)
	}
	s.Close()
}

func TestFormatForDisplay(t *testing.T) {
	entries := []media.HistoryEntry{
		{Source: "reddit", Info: media.Info{Title: "Cat learns\nto open doors", Author: "whiskers", Length: 83000}, PlayCount: 1},
		{Source: "tiktok", Info: media.Info{Identifier: "730", Length: media.DurationUnknown}, PlayCount: 3},
	}

	items := FormatForDisplay(entries)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	if want := "[reddit] Cat learns to open doors - whiskers (1:23)"; items[0] != want {
		t.Errorf("reddit display = %q, want %q", items[0], want)
	}
	if want := "[tiktok] 730 x3"; items[1] != want {
		t.Errorf("tiktok display = %q, want %q", items[1], want)
	}
}
