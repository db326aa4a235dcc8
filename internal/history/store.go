// Package history records walkthrough runs in a local SQLite database so
// past sessions can be listed and inspected.
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
	_ "modernc.org/sqlite" // pure Go sqlite driver
)

// Status is the state of a run or of one challenge within it.
type Status string

// Run and challenge statuses.
const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusStopped   Status = "stopped"
	StatusFailed    Status = "failed"
)

// ErrDisabled is returned when run history is turned off in configuration.
var ErrDisabled = errors.New("run history is disabled (history_path is empty)")

// Run is one invocation of the walkthrough.
type Run struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Selection string     `json:"selection,omitempty"`
	Planned   int        `json:"planned"`
	Completed int        `json:"completed"`
	Status    Status     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	Finished  *time.Time `json:"finished_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Duration is the wall time of a finished run, zero while it is running.
func (r *Run) Duration() time.Duration {
	if r.Finished == nil {
		return 0
	}
	return r.Finished.Sub(r.StartedAt)
}

// ChallengeRun is the outcome of one challenge within a run.
type ChallengeRun struct {
	Number   int           `json:"number"`
	Slug     string        `json:"slug"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
}

// Store persists runs in SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (creating if needed) the history database at path and applies
// pending migrations. Use ":memory:" for a throwaway store.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	s := &Store{db: db, path: path, logger: logger}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("history store opened", slog.String("path", path))
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// CreateRun records the start of a walkthrough.
func (s *Store) CreateRun(ctx context.Context, sessionID, selection string, planned int) (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Selection: selection,
		Planned:   planned,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}

	s.logger.Debug("creating run", slog.String("id", run.ID), slog.String("session", sessionID))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, session_id, selection, planned, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.SessionID, run.Selection, run.Planned, string(run.Status), formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// RecordChallenge stores the outcome of one challenge. A nil runErr marks
// it completed.
func (s *Store) RecordChallenge(ctx context.Context, runID string, number int, slug string, elapsed time.Duration, runErr error) error {
	status := StatusCompleted
	var errMsg *string
	if runErr != nil {
		status = StatusFailed
		msg := runErr.Error()
		errMsg = &msg
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO challenge_runs (run_id, number, slug, status, duration_ms, error) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, number, slug, string(status), elapsed.Milliseconds(), errMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to record challenge %d: %w", number, err)
	}
	return nil
}

// CompleteRun marks a run finished with the given status.
func (s *Store) CompleteRun(ctx context.Context, id string, status Status, errMsg string) error {
	var errPtr *string
	if errMsg != "" {
		errPtr = &errMsg
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, error = ? WHERE id = ?`,
		string(status), formatTime(time.Now().UTC()), errPtr, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

const runColumns = `r.id, r.session_id, r.selection, r.planned, r.status, r.started_at, r.finished_at, r.error,
	(SELECT COUNT(*) FROM challenge_runs c WHERE c.run_id = r.id AND c.status = 'completed')`

// GetRun retrieves a run by ID or by a unique ID prefix.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs r WHERE r.id LIKE ? || '%' ORDER BY r.started_at DESC, r.rowid DESC LIMIT 2`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}

	switch len(runs) {
	case 0:
		return nil, fmt.Errorf("run not found: %s", id)
	case 1:
		return runs[0], nil
	default:
		return nil, fmt.Errorf("run id %q is ambiguous", id)
	}
}

// LatestRun returns the most recent run, or nil when there are none.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	runs, err := s.ListRuns(ctx, 1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return runs[0], nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs r ORDER BY r.started_at DESC, r.rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return scanRuns(rows)
}

// ListChallengeRuns returns the recorded challenges of a run in order.
func (s *Store) ListChallengeRuns(ctx context.Context, runID string) ([]ChallengeRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT number, slug, status, duration_ms, error FROM challenge_runs WHERE run_id = ? ORDER BY number`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenge runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ChallengeRun
	for rows.Next() {
		var (
			cr     ChallengeRun
			status string
			ms     int64
			errMsg sql.NullString
		)
		if err := rows.Scan(&cr.Number, &cr.Slug, &status, &ms, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan challenge run: %w", err)
		}
		cr.Status = Status(status)
		cr.Duration = time.Duration(ms) * time.Millisecond
		cr.Error = errMsg.String
		out = append(out, cr)
	}
	return out, rows.Err()
}

// Prune deletes all but the newest keep runs and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must not be negative, got %d", keep)
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return res.RowsAffected()
}

func scanRuns(rows *sql.Rows) ([]*Run, error) {
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		var (
			run              Run
			status, started  string
			finished, errMsg sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.SessionID, &run.Selection, &run.Planned, &status,
			&started, &finished, &errMsg, &run.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Status = Status(status)
		run.Error = errMsg.String

		t, err := parseTime(started)
		if err != nil {
			return nil, err
		}
		run.StartedAt = t
		if finished.Valid {
			f, err := parseTime(finished.String)
			if err != nil {
				return nil, err
			}
			run.Finished = &f
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
