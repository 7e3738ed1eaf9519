// Package runindex maintains a sqlite index of completed ETL runs under an
// output base directory, so past runs can be listed and pruned without
// scanning run folders.
package runindex

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"dpcretl/internal/fileutil"
)

//go:embed schema.sql
var schemaSQL string

// DBFileName is the index database file under the output base.
const DBFileName = "index.db"

// schemaVersion is the current schema version. Bump when the schema changes;
// users clear the index by deleting the database file.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an incompatible
// version.
var ErrSchemaMismatch = errors.New("run index schema version mismatch")

// createdAtLayout keeps a fixed-width fraction so lexicographic ordering on
// the stored text matches chronological ordering.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record is one indexed run.
type Record struct {
	ID         string
	SourceFile string
	RunTime    string
	OutputDir  string
	ValidWells int
	Anomalies  int
	Targets    []string
	ETLVersion string
	CreatedAt  time.Time
}

// Store manages run index persistence backed by SQLite. Writes are guarded
// by a file lock so concurrent invocations sharing an output base serialize.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the index database under baseDir.
func Open(baseDir string) (*Store, error) {
	if err := fileutil.EnsureDir(baseDir); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(baseDir, DBFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open run index db: %w", err)
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

	store := &Store{
		db:   db,
		path: dbPath,
		lock: flock.New(dbPath + ".lock"),
	}
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

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Add records one completed run. A missing ID is assigned a fresh UUID.
func (s *Store) Add(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire index lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source_file, run_time, output_dir, valid_wells, anomalies, targets, etl_version, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.SourceFile,
		rec.RunTime,
		rec.OutputDir,
		rec.ValidWells,
		rec.Anomalies,
		strings.Join(rec.Targets, ","),
		rec.ETLVersion,
		rec.CreatedAt.Format(createdAtLayout),
	)
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}

// List returns indexed runs, newest first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_file, run_time, output_dir, valid_wells, anomalies, targets, etl_version, created_at
         FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var targets, createdAt string
		if err := rows.Scan(&rec.ID, &rec.SourceFile, &rec.RunTime, &rec.OutputDir,
			&rec.ValidWells, &rec.Anomalies, &targets, &rec.ETLVersion, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		if targets != "" {
			rec.Targets = strings.Split(targets, ",")
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			rec.CreatedAt = ts
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Prune deletes all but the newest keep records and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	if err := s.lock.Lock(); err != nil {
		return 0, fmt.Errorf("acquire index lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (
            SELECT id FROM runs ORDER BY created_at DESC, id LIMIT ?
         )`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create run index schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}
