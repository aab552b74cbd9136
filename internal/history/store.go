// Package history persists the recording log backed by SQLite.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"rscapture/internal/config"
	"rscapture/internal/selection"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the schema changes; an existing database
// with a different version is rejected rather than migrated.
const schemaVersion = 1

var (
	// ErrSchemaMismatch indicates the database was created by a different
	// release and must be deleted before use.
	ErrSchemaMismatch = errors.New("schema version mismatch")
	// ErrNotFound indicates no recording exists with the requested ID.
	ErrNotFound = errors.New("recording not found")
)

// Store manages recording history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database under the log
// directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return openAt(filepath.Join(cfg.Paths.LogDir, "history.db"))
}

func openAt(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
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

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// NewRecording inserts a row for a capture that just started.
func (s *Store) NewRecording(ctx context.Context, region selection.Rect, intermediatePath string) (*Recording, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO recordings (
            region_x, region_y, region_width, region_height,
            intermediate_path, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		region.X,
		region.Y,
		region.Width,
		region.Height,
		nullableString(intermediatePath),
		StatusRecording,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert recording: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// MarkEncoding records that the intermediate is being transcoded.
func (s *Store) MarkEncoding(ctx context.Context, id int64, quality string) error {
	return s.update(ctx, id,
		"UPDATE recordings SET status = ?, quality = ?, updated_at = ? WHERE id = ?",
		StatusEncoding, nullableString(quality), now(), id)
}

// MarkCompleted records the final output path for a finished recording.
func (s *Store) MarkCompleted(ctx context.Context, id int64, finalPath string) error {
	return s.update(ctx, id,
		"UPDATE recordings SET status = ?, final_path = ?, updated_at = ? WHERE id = ?",
		StatusCompleted, nullableString(finalPath), now(), id)
}

// MarkDiscarded records that the user threw the capture away.
func (s *Store) MarkDiscarded(ctx context.Context, id int64) error {
	return s.update(ctx, id,
		"UPDATE recordings SET status = ?, updated_at = ? WHERE id = ?",
		StatusDiscarded, now(), id)
}

// MarkFailed records a capture or encode failure with its message.
func (s *Store) MarkFailed(ctx context.Context, id int64, message string) error {
	return s.update(ctx, id,
		"UPDATE recordings SET status = ?, error_message = ?, updated_at = ? WHERE id = ?",
		StatusFailed, nullableString(message), now(), id)
}

func (s *Store) update(ctx context.Context, id int64, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update recording %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

const recordingColumns = "id, region_x, region_y, region_width, region_height, intermediate_path, final_path, quality, status, error_message, created_at, updated_at"

// GetByID fetches one recording.
func (s *Store) GetByID(ctx context.Context, id int64) (*Recording, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+recordingColumns+" FROM recordings WHERE id = ?", id)
	rec, err := scanRecording(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return rec, err
}

// List returns the most recent recordings, newest first. A limit of zero
// or less returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]*Recording, error) {
	query := "SELECT " + recordingColumns + " FROM recordings ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recordings []*Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		recordings = append(recordings, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recordings: %w", err)
	}
	return recordings, nil
}

func scanRecording(scanner interface{ Scan(dest ...any) error }) (*Recording, error) {
	var (
		id           int64
		x, y, w, h   int
		intermediate sql.NullString
		finalPath    sql.NullString
		quality      sql.NullString
		statusStr    string
		errMessage   sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(
		&id, &x, &y, &w, &h,
		&intermediate, &finalPath, &quality,
		&statusStr, &errMessage,
		&createdRaw, &updatedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan recording: %w", err)
	}

	return &Recording{
		ID:               id,
		Region:           selection.Rect{X: x, Y: y, Width: w, Height: h},
		IntermediatePath: intermediate.String,
		FinalPath:        finalPath.String,
		Quality:          quality.String,
		Status:           Status(statusStr),
		ErrorMessage:     errMessage.String,
		CreatedAt:        parseTime(createdRaw),
		UpdatedAt:        parseTime(updatedRaw),
	}, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
