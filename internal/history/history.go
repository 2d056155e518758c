// Package history keeps a local journal of completed upload runs.
package history

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	_ "modernc.org/sqlite"
)

// Record is one completed upload run.
type Record struct {
	ID            string
	JobKey        string
	Source        string
	DestHash      string
	StartedAt     time.Time
	Duration      time.Duration
	FilesUploaded int64
	FilesFailed   int64
	Folders       int64
	Bytes         int64
	Success       bool
}

// Store is the SQLite-backed run journal.
type Store struct {
	db   *sql.DB
	path string
}

// Path returns the default journal location,
// $XDG_STATE_HOME/airlift/history.db.
func Path() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "airlift", "history.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home dir: %w", err)
	}
	return filepath.Join(home, ".local", "state", "airlift", "history.db"), nil
}

// Open opens the journal at the default location, creating it on
// first use.
func Open() (*Store, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return OpenAt(path)
}

// OpenAt opens (or creates) a journal at path.
func OpenAt(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id             TEXT PRIMARY KEY,
			job_key        TEXT NOT NULL,
			source         TEXT NOT NULL,
			dest_hash      TEXT NOT NULL,
			started_at     INTEGER NOT NULL,
			duration_ms    INTEGER NOT NULL,
			files_uploaded INTEGER NOT NULL,
			files_failed   INTEGER NOT NULL,
			folders        INTEGER NOT NULL,
			bytes          INTEGER NOT NULL,
			success        INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// Append records one finished run. An empty ID or JobKey is filled in.
func (s *Store) Append(rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.JobKey == "" {
		rec.JobKey = JobKey(rec.Source, rec.DestHash)
	}

	success := 0
	if rec.Success {
		success = 1
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, job_key, source, dest_hash, started_at, duration_ms,
			files_uploaded, files_failed, folders, bytes, success)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.JobKey, rec.Source, rec.DestHash,
		rec.StartedAt.UnixMilli(), rec.Duration.Milliseconds(),
		rec.FilesUploaded, rec.FilesFailed, rec.Folders, rec.Bytes, success,
	)
	if err != nil {
		return fmt.Errorf("append run: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, job_key, source, dest_hash, started_at, duration_ms,
			files_uploaded, files_failed, folders, bytes, success
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec              Record
			startedMs, durMs int64
			success          int
		)
		if err := rows.Scan(&rec.ID, &rec.JobKey, &rec.Source, &rec.DestHash,
			&startedMs, &durMs, &rec.FilesUploaded, &rec.FilesFailed,
			&rec.Folders, &rec.Bytes, &success); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.StartedAt = time.UnixMilli(startedMs)
		rec.Duration = time.Duration(durMs) * time.Millisecond
		rec.Success = success != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DBPath returns the journal's file path.
func (s *Store) DBPath() string {
	return s.path
}

// JobKey derives a stable identifier for a source/destination pair, so
// repeated runs of the same job can be grouped.
func JobKey(source, destHash string) string {
	h := blake3.New()
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write([]byte(destHash))
	digest := h.Sum(nil)
	return hex.EncodeToString(digest[:8])
}
