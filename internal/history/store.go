// Package history persists one row per claimed dictation session in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one recorded session. Timestamps are stored as unix milliseconds.
type Entry struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    time.Time
	Outcome       string
	Failure       string
	Text          string
	BytesCaptured int64
	AudioDevice   string
	Model         string
	Language      string
	TranscribeMS  int64
}

// Store wraps the SQLite-backed session history.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open creates the database file and schema when missing.
func Open(ctx context.Context, path string, log *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(2000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, log: log}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    started_at INTEGER NOT NULL,
    finished_at INTEGER NOT NULL,
    outcome TEXT NOT NULL,
    failure TEXT,
    text TEXT,
    bytes_captured INTEGER NOT NULL DEFAULT 0,
    audio_device TEXT,
    model TEXT,
    language TEXT,
    transcribe_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Close releases underlying resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts entry, assigning a new ID when empty, and returns the stored ID.
func (s *Store) Record(ctx context.Context, entry Entry) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions(id, started_at, finished_at, outcome, failure, text, bytes_captured, audio_device, model, language, transcribe_ms)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.StartedAt.UnixMilli(),
		entry.FinishedAt.UnixMilli(),
		entry.Outcome,
		entry.Failure,
		entry.Text,
		entry.BytesCaptured,
		entry.AudioDevice,
		entry.Model,
		entry.Language,
		entry.TranscribeMS,
	)
	if err != nil {
		return "", fmt.Errorf("insert history entry: %w", err)
	}
	if s.log != nil {
		s.log.Debug("history entry recorded", slog.String("id", entry.ID), slog.String("outcome", entry.Outcome))
	}
	return entry.ID, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, outcome, failure, text, bytes_captured, audio_device, model, language, transcribe_ms
		 FROM sessions ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                                      Entry
			startedMS, finishedMS                  int64
			failure, text, device, model, language sql.NullString
		)
		if err := rows.Scan(&e.ID, &startedMS, &finishedMS, &e.Outcome, &failure, &text,
			&e.BytesCaptured, &device, &model, &language, &e.TranscribeMS); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.StartedAt = time.UnixMilli(startedMS)
		e.FinishedAt = time.UnixMilli(finishedMS)
		e.Failure = failure.String
		e.Text = text.String
		e.AudioDevice = device.String
		e.Model = model.String
		e.Language = language.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
