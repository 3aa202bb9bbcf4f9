package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"loom/internal/config"
	"loom/internal/models"
)

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies migrations.
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
	if err := store.applyMigrations(context.Background()); err != nil {
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

// Path returns the on-disk location of the history database.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Begin inserts a new run in the running state and returns the stored record.
func (s *Store) Begin(ctx context.Context, kind models.RunKind, detail string) (*models.RunRecord, error) {
	now := time.Now().UTC()
	runID := uuid.NewString()

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (run_id, kind, status, started_at, detail)
         VALUES (?, ?, ?, ?, ?)`,
		runID,
		string(kind),
		string(models.RunStatusRunning),
		now.Format(time.RFC3339Nano),
		detail,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Finish marks a run as succeeded or failed and records the final detail.
func (s *Store) Finish(ctx context.Context, id int64, status models.RunStatus, detail string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET status = ?, finished_at = ?, detail = ? WHERE id = ?`,
		string(status),
		now,
		detail,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run: id %d not found", id)
	}
	return nil
}

// GetByID returns a single run, or nil when it does not exist.
func (s *Store) GetByID(ctx context.Context, id int64) (*models.RunRecord, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, run_id, kind, status, started_at, finished_at, detail
         FROM runs WHERE id = ?`,
		id,
	)
	record, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	return record, nil
}

// List returns recent runs, newest first, optionally filtered by kind.
// A non-positive limit returns up to 100 rows.
func (s *Store) List(ctx context.Context, kind models.RunKind, limit int) ([]models.RunRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, run_id, kind, status, started_at, finished_at, detail
	          FROM runs`
	args := make([]any, 0, 2)
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []models.RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return records, nil
}

// Prune deletes all but the newest keep rows and returns the removed count.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY id DESC LIMIT ?)`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.RunRecord, error) {
	var (
		record     models.RunRecord
		kind       string
		status     string
		startedAt  string
		finishedAt sql.NullString
	)
	if err := row.Scan(&record.ID, &record.RunID, &kind, &status, &startedAt, &finishedAt, &record.Detail); err != nil {
		return nil, err
	}
	record.Kind = models.RunKind(kind)
	record.Status = models.RunStatus(status)

	parsedStart, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at %q: %w", startedAt, err)
	}
	record.StartedAt = parsedStart

	if finishedAt.Valid && finishedAt.String != "" {
		parsedFinish, err := time.Parse(time.RFC3339Nano, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at %q: %w", finishedAt.String, err)
		}
		record.FinishedAt = &parsedFinish
	}
	return &record, nil
}
