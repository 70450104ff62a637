// Package history records played tracks in a SQLite database so they can be
// replayed later. A track is stored in its persisted form: the name of the
// source that produced it plus its info fields.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"clipstream/internal/config"
	"clipstream/internal/log"
	"clipstream/internal/media"
)

const schema = `
CREATE TABLE IF NOT EXISTS tracks (
	id            TEXT PRIMARY KEY,
	source        TEXT NOT NULL,
	identifier    TEXT NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	author        TEXT NOT NULL DEFAULT '',
	length        INTEGER NOT NULL,
	is_stream     BOOLEAN NOT NULL DEFAULT FALSE,
	uri           TEXT NOT NULL DEFAULT '',
	thumbnail_url TEXT NOT NULL DEFAULT '',
	played_at     INTEGER NOT NULL,
	play_count    INTEGER NOT NULL DEFAULT 1,
	UNIQUE (source, identifier)
);
CREATE INDEX IF NOT EXISTS idx_tracks_played_at ON tracks(played_at DESC);`

// ErrNotFound is returned by Remove when no entry has the given id.
var ErrNotFound = errors.New("history entry not found")

// Store is the history database. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	// One writer at a time avoids SQLITE_BUSY from this process.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			log.WithFields(map[string]interface{}{"pragma": pragma}).Warnf("failed to set pragma: %v", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history tables: %w", err)
	}

	log.Debugf("history database ready at %s", path)
	return &Store{db: db}, nil
}

// OpenDefault opens the database at config.HistoryPath.
func OpenDefault() (*Store, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save records that a track was played at playedAt. Playing the same track
// again refreshes its info and bumps its play count.
func (s *Store) Save(sourceName string, info media.Info, playedAt time.Time) error {
	if sourceName == "" || info.Identifier == "" {
		return fmt.Errorf("history entry needs a source and identifier")
	}

	_, err := s.db.Exec(`
		INSERT INTO tracks (id, source, identifier, title, author, length, is_stream, uri, thumbnail_url, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source, identifier) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			length = excluded.length,
			is_stream = excluded.is_stream,
			uri = excluded.uri,
			thumbnail_url = excluded.thumbnail_url,
			played_at = excluded.played_at,
			play_count = tracks.play_count + 1`,
		uuid.NewString(), sourceName, info.Identifier, info.Title, info.Author, info.Length,
		info.IsStream, info.URI, info.ThumbnailURL, playedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("saving history entry: %w", err)
	}
	return nil
}

// Load returns all entries, most recently played first.
func (s *Store) Load() ([]media.HistoryEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, source, identifier, title, author, length, is_stream, uri, thumbnail_url, played_at, play_count
		FROM tracks ORDER BY played_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []media.HistoryEntry
	for rows.Next() {
		var (
			e        media.HistoryEntry
			playedAt int64
		)
		if err := rows.Scan(&e.ID, &e.Source, &e.Info.Identifier, &e.Info.Title, &e.Info.Author,
			&e.Info.Length, &e.Info.IsStream, &e.Info.URI, &e.Info.ThumbnailURL, &playedAt, &e.PlayCount); err != nil {
			return nil, fmt.Errorf("reading history row: %w", err)
		}
		e.PlayedAt = time.UnixMilli(playedAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return entries, nil
}

// Remove deletes the entry with the given row id.
func (s *Store) Remove(id string) error {
	res, err := s.db.Exec(`DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("removing history entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("removing history entry: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// FormatForDisplay creates display strings for fzf selection from history entries.
func FormatForDisplay(entries []media.HistoryEntry) []string {
	var items []string
	for _, e := range entries {
		title := e.Info.Title
		if title == "" {
			title = e.Info.Identifier
		}
		title = strings.Join(strings.Fields(title), " ")

		display := fmt.Sprintf("[%s] %s", e.Source, title)
		if e.Info.Author != "" {
			display += " - " + e.Info.Author
		}
		if e.Info.HasLength() {
			display += " (" + media.FormatLength(e.Info.Length) + ")"
		}
		if e.PlayCount > 1 {
			display += fmt.Sprintf(" x%d", e.PlayCount)
		}
		items = append(items, display)
	}
	return items
}
