package lyriccache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"lyricsync/internal/lyrics"
)

// Store manages cached reference text backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Entry is one cached resolution.
type Entry struct {
	Key      string
	Song     lyrics.SongID
	Source   string
	Text     string
	StoredAt time.Time
}

// Stats summarises cache contents.
type Stats struct {
	Path     string
	Entries  int
	BySource map[string]int
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the cache database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("lyric cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Get returns the cached entry for song. found is false on a miss.
func (s *Store) Get(ctx context.Context, song lyrics.SongID) (Entry, bool, error) {
	if song.Empty() {
		return Entry{}, false, nil
	}
	ctx = ensureContext(ctx)
	key := song.Key()
	var (
		entry    Entry
		storedAt string
	)
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT song_key, artist, title, source, text, stored_at FROM reference_text WHERE song_key = ?`,
			key,
		).Scan(&entry.Key, &entry.Song.Artist, &entry.Song.Title, &entry.Source, &entry.Text, &storedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read cached lyrics: %w", err)
	}
	if ts, parseErr := time.Parse(time.RFC3339, storedAt); parseErr == nil {
		entry.StoredAt = ts
	}
	return entry, true, nil
}

// Put stores a successful resolution, replacing any previous entry.
// Empty text is never cached.
func (s *Store) Put(ctx context.Context, song lyrics.SongID, result lyrics.Result) error {
	if song.Empty() || strings.TrimSpace(result.Text) == "" {
		return nil
	}
	ctx = ensureContext(ctx)
	stamp := s.now().UTC().Format(time.RFC3339)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO reference_text (song_key, artist, title, source, text, stored_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(song_key) DO UPDATE SET
			   artist = excluded.artist,
			   title = excluded.title,
			   source = excluded.source,
			   text = excluded.text,
			   stored_at = excluded.stored_at`,
			song.Key(), song.Artist, song.Title, result.Source, result.Text, stamp,
		)
		if err != nil {
			return fmt.Errorf("store cached lyrics: %w", err)
		}
		return nil
	})
}

// Delete removes the entry for song, if any.
func (s *Store) Delete(ctx context.Context, song lyrics.SongID) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM reference_text WHERE song_key = ?`, song.Key())
		return err
	})
}

// Clear removes all cached entries and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM reference_text`)
		if err != nil {
			return err
		}
		removed, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("clear lyric cache: %w", err)
	}
	return removed, nil
}

// Stats returns entry counts grouped by source.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT source, COUNT(1) FROM reference_text GROUP BY source`)
	if err != nil {
		return Stats{}, fmt.Errorf("lyric cache stats: %w", err)
	}
	defer rows.Close()

	stats := Stats{Path: s.path, BySource: make(map[string]int)}
	for rows.Next() {
		var (
			source string
			count  int
		)
		if err := rows.Scan(&source, &count); err != nil {
			return Stats{}, err
		}
		stats.BySource[source] = count
		stats.Entries += count
	}
	return stats, rows.Err()
}
