// Package runstore persists pipeline run history in SQLite.
package runstore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/maauso/framestrip-api/internal/thumbnail"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// interruptedError is recorded on runs that were in flight when the process stopped.
const interruptedError = "interrupted by restart"

// Compile-time check that SQLiteRepository implements thumbnail.Repository.
var _ thumbnail.Repository = (*SQLiteRepository)(nil)

// SQLiteRepository is a thumbnail.Repository backed by a SQLite file.
type SQLiteRepository struct {
	conn   *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at dbPath, applies pending
// migrations and fails every run left unfinished by a previous process.
func Open(dbPath string, logger *slog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	r := &SQLiteRepository{conn: conn, logger: logger}

	if err := r.migrate(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if n, err := r.markInterruptedRuns(); err != nil {
		logger.Warn("failed to mark interrupted runs", slog.String("error", err.Error()))
	} else if n > 0 {
		logger.Info("marked interrupted runs as failed", slog.Int64("count", n))
	}

	return r, nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	return r.conn.Close()
}

func (r *SQLiteRepository) migrate() error {
	migrations, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	for _, m := range migrations {
		if m.IsDir() {
			continue
		}

		name := m.Name()
		if r.isMigrationApplied(name) {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := r.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("execute migration %s: %w", name, err)
		}

		if _, err := r.conn.Exec("INSERT INTO _migrations (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}

		r.logger.Info("applied migration", slog.String("name", name))
	}

	return nil
}

func (r *SQLiteRepository) isMigrationApplied(name string) bool {
	var applied int
	err := r.conn.QueryRow("SELECT 1 FROM _migrations WHERE name = ?", name).Scan(&applied)
	return err == nil && applied == 1
}

func (r *SQLiteRepository) markInterruptedRuns() (int64, error) {
	now := formatTime(time.Now())
	res, err := r.conn.ExecContext(context.Background(),
		`UPDATE runs SET state = ?, error = ?, current_frame = 0, updated_at = ?, completed_at = ?
		 WHERE state NOT IN (?, ?)`,
		thumbnail.StateFailed, interruptedError, now, now,
		thumbnail.StateDone, thumbnail.StateFailed,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Save implements thumbnail.Repository.
func (r *SQLiteRepository) Save(ctx context.Context, run *thumbnail.Run) error {
	snap := run.Clone()

	urls := snap.URLs
	if urls == nil {
		urls = []string{}
	}
	encoded, err := json.Marshal(urls)
	if err != nil {
		return fmt.Errorf("encode urls: %w", err)
	}

	_, err = r.conn.ExecContext(ctx, `
		INSERT INTO runs (id, kind, state, frame_count, frames_done, current_frame, error, urls, created_at, updated_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			state = excluded.state,
			frame_count = excluded.frame_count,
			frames_done = excluded.frames_done,
			current_frame = excluded.current_frame,
			error = excluded.error,
			urls = excluded.urls,
			updated_at = excluded.updated_at,
			completed_at = excluded.completed_at`,
		snap.ID, string(snap.Kind), string(snap.State), snap.FrameCount, snap.FramesDone, snap.CurrentFrame,
		snap.Error, string(encoded), formatTime(snap.CreatedAt), formatTime(snap.UpdatedAt), formatTime(snap.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", snap.ID, err)
	}
	return nil
}

const selectRun = `SELECT id, kind, state, frame_count, frames_done, current_frame, error, urls, created_at, updated_at, completed_at FROM runs`

// FindByID implements thumbnail.Repository.
func (r *SQLiteRepository) FindByID(ctx context.Context, id string) (*thumbnail.Run, error) {
	run, err := scanRun(r.conn.QueryRowContext(ctx, selectRun+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, thumbnail.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find run %s: %w", id, err)
	}
	return run, nil
}

// List implements thumbnail.Repository. Runs are returned oldest first.
func (r *SQLiteRepository) List(ctx context.Context) ([]*thumbnail.Run, error) {
	rows, err := r.conn.QueryContext(ctx, selectRun+" ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*thumbnail.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Delete implements thumbnail.Repository.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.conn.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if n == 0 {
		return thumbnail.ErrRunNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*thumbnail.Run, error) {
	var (
		run                                  thumbnail.Run
		kind, state, urls                    string
		createdAt, updatedAt, completedAtStr string
	)
	err := s.Scan(&run.ID, &kind, &state, &run.FrameCount, &run.FramesDone, &run.CurrentFrame,
		&run.Error, &urls, &createdAt, &updatedAt, &completedAtStr)
	if err != nil {
		return nil, err
	}

	run.Kind = thumbnail.Kind(kind)
	run.State = thumbnail.State(state)

	var decoded []string
	if err := json.Unmarshal([]byte(urls), &decoded); err != nil {
		return nil, fmt.Errorf("decode urls: %w", err)
	}
	if len(decoded) > 0 {
		run.URLs = decoded
	}

	if run.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if run.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if run.CompletedAt, err = parseTime(completedAtStr); err != nil {
		return nil, err
	}

	return &run, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
