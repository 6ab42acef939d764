// Package history keeps a SQLite index of generated seeds so mass tests and
// single runs can be compared later.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"
)

// Store is a seed history database
type Store struct {
	db *sql.DB
}

// Run groups the seeds of one command invocation
type Run struct {
	ID        string
	Command   string
	BaseSeed  string
	StartedAt time.Time
}

// Entry is one generated (or failed) seed
type Entry struct {
	RunID         string
	Seed          string
	Hash          string
	OK            bool
	Error         string
	BuildAttempts int
	FillAttempts  int
	Warnings      int
	Duration      time.Duration

	// Spoiler is stored compressed and returned decompressed
	Spoiler []byte
}

// Open opens or creates the database at path
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			command TEXT NOT NULL,
			base_seed TEXT NOT NULL,
			started_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS seeds (
			run_id TEXT NOT NULL REFERENCES runs(id),
			seed TEXT NOT NULL,
			hash TEXT NOT NULL,
			ok INTEGER NOT NULL,
			error TEXT NOT NULL,
			builds INTEGER NOT NULL,
			fills INTEGER NOT NULL,
			warnings INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			spoiler BLOB,
			PRIMARY KEY (run_id, seed)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_seeds_hash ON seeds(hash);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// StartRun registers a new run
func (s *Store) StartRun(ctx context.Context, command, baseSeed string) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		Command:   command,
		BaseSeed:  baseSeed,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(id, command, base_seed, started_at) VALUES(?,?,?,?)`,
		run.ID, run.Command, run.BaseSeed, run.StartedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Run{}, fmt.Errorf("start run: %w", err)
	}
	return run, nil
}

// Record stores one seed
func (s *Store) Record(ctx context.Context, e Entry) error {
	var blob []byte
	if len(e.Spoiler) > 0 {
		var err error
		if blob, err = compress(e.Spoiler); err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO seeds(run_id, seed, hash, ok, error, builds, fills, warnings, duration_ms, spoiler)
		VALUES(?,?,?,?,?,?,?,?,?,?)`,
		e.RunID, e.Seed, e.Hash, e.OK, e.Error, e.BuildAttempts, e.FillAttempts, e.Warnings,
		e.Duration.Milliseconds(), blob)
	if err != nil {
		return fmt.Errorf("record %s: %w", e.Seed, err)
	}
	return nil
}

// Entries returns the seeds of a run in seed order
func (s *Store) Entries(ctx context.Context, runID string) ([]Entry, error) {
	return s.query(ctx, `WHERE run_id = ? ORDER BY seed`, runID)
}

// FindHash returns every recorded seed that produced the given placement hash
func (s *Store) FindHash(ctx context.Context, hash string) ([]Entry, error) {
	return s.query(ctx, `WHERE hash = ? ORDER BY run_id, seed`, hash)
}

// Failures counts the failed seeds of a run by error message
func (s *Store) Failures(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT error, COUNT(*) FROM seeds WHERE run_id = ? AND ok = 0 GROUP BY error`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var msg string
		var n int
		if err := rows.Scan(&msg, &n); err != nil {
			return nil, err
		}
		out[msg] = n
	}
	return out, rows.Err()
}

func (s *Store) query(ctx context.Context, where string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, seed, hash, ok, error, builds, fills, warnings, duration_ms, spoiler FROM seeds `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ms int64
		var blob []byte
		if err := rows.Scan(&e.RunID, &e.Seed, &e.Hash, &e.OK, &e.Error, &e.BuildAttempts, &e.FillAttempts, &e.Warnings, &ms, &blob); err != nil {
			return nil, err
		}
		e.Duration = time.Duration(ms) * time.Millisecond
		if len(blob) > 0 {
			if e.Spoiler, err = decompress(blob); err != nil {
				return nil, fmt.Errorf("seed %s: %w", e.Seed, err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func compress(b []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(b, nil), nil
}

func decompress(b []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(b, nil)
}
