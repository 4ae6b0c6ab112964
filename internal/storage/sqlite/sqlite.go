package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/slok/bkup/internal/log"
	"github.com/slok/bkup/internal/model"
	"github.com/slok/bkup/internal/storage"
	"github.com/slok/bkup/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.RunRepository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository opens (and migrates) the journal database.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite journal initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// CreateRun stores a new run.
func (r *Repository) CreateRun(ctx context.Context, run model.Run) error {
	query := `
		INSERT INTO runs (id, status, dry_run, notified, subject, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Status,
		run.DryRun,
		run.Notified,
		run.Subject,
		run.StartedAt.Unix(),
		unixPtr(run.FinishedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: runs.") {
			return fmt.Errorf("run %s: %w", run.ID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert run: %w", err)
	}

	r.logger.Debugf("Created run in repository: %s", run.ID)
	return nil
}

// AddTaskResult appends a task result with its failures to a stored run.
func (r *Repository) AddTaskResult(ctx context.Context, runID string, t model.TaskResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // Rollback is safe to call after Commit

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("could not check run: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("run %s: %w", runID, model.ErrNotFound)
	}

	taskID := ulid.Make().String()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO task_results (id, run_id, sequence, name, status, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, taskID, runID, t.Sequence, t.Name, t.Status, t.StartedAt.Unix(), t.FinishedAt.Unix())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: task_results.") {
			return fmt.Errorf("task %d of run %s: %w", t.Sequence, runID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert task result: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO failures (id, task_result_id, run_id, position, kind, task, message, command, exit_code, stdout, stderr)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("could not prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, f := range t.Failures {
		command, err := json.Marshal(f.Command)
		if err != nil {
			return fmt.Errorf("could not encode failure command: %w", err)
		}

		_, err = stmt.ExecContext(ctx, ulid.Make().String(), taskID, runID, i, f.Kind, f.Task, f.Message, string(command), f.ExitCode, f.Stdout, f.Stderr)
		if err != nil {
			return fmt.Errorf("could not insert failure: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Added task %s to run %s", t.Name, runID)
	return nil
}

// UpdateRun updates the run state fields.
func (r *Repository) UpdateRun(ctx context.Context, run model.Run) error {
	query := `
		UPDATE runs
		SET status = ?, dry_run = ?, notified = ?, subject = ?, finished_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		run.Status,
		run.DryRun,
		run.Notified,
		run.Subject,
		unixPtr(run.FinishedAt),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run %s: %w", run.ID, model.ErrNotFound)
	}

	r.logger.Debugf("Updated run in repository: %s", run.ID)
	return nil
}

// GetRun returns a run with its task results and failures.
func (r *Repository) GetRun(ctx context.Context, id string) (*model.Run, error) {
	query := `
		SELECT id, status, dry_run, notified, subject, started_at, finished_at
		FROM runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query run: %w", err)
	}

	tasks, err := r.taskResults(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Tasks = tasks

	return run, nil
}

// ListRuns returns the runs matching the options newest first, without task results.
func (r *Repository) ListRuns(ctx context.Context, opts storage.ListRunsOpts) ([]model.Run, error) {
	query := `
		SELECT id, status, dry_run, notified, subject, started_at, finished_at
		FROM runs
	`
	var args []any
	if opts.Status != nil {
		query += " WHERE status = ?"
		args = append(args, string(*opts.Status))
	}
	query += " ORDER BY started_at DESC, id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query runs: %w", err)
	}
	defer rows.Close()

	runs := []model.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate runs: %w", err)
	}

	return runs, nil
}

func (r *Repository) taskResults(ctx context.Context, runID string) ([]model.TaskResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sequence, name, status, started_at, finished_at
		FROM task_results
		WHERE run_id = ?
		ORDER BY sequence ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("could not query task results: %w", err)
	}
	defer rows.Close()

	var tasks []model.TaskResult
	index := map[string]int{}
	for rows.Next() {
		var (
			id                  string
			t                   model.TaskResult
			startedAt, finished int64
		)
		if err := rows.Scan(&id, &t.Sequence, &t.Name, &t.Status, &startedAt, &finished); err != nil {
			return nil, fmt.Errorf("could not scan task result: %w", err)
		}
		t.StartedAt = time.Unix(startedAt, 0).UTC()
		t.FinishedAt = time.Unix(finished, 0).UTC()
		index[id] = len(tasks)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate task results: %w", err)
	}

	frows, err := r.db.QueryContext(ctx, `
		SELECT task_result_id, kind, task, message, command, exit_code, stdout, stderr
		FROM failures
		WHERE run_id = ?
		ORDER BY task_result_id ASC, position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("could not query failures: %w", err)
	}
	defer frows.Close()

	for frows.Next() {
		var (
			taskID  string
			command string
			f       model.Failure
		)
		if err := frows.Scan(&taskID, &f.Kind, &f.Task, &f.Message, &command, &f.ExitCode, &f.Stdout, &f.Stderr); err != nil {
			return nil, fmt.Errorf("could not scan failure: %w", err)
		}
		if err := json.Unmarshal([]byte(command), &f.Command); err != nil {
			return nil, fmt.Errorf("could not decode failure command: %w", err)
		}

		i, ok := index[taskID]
		if !ok {
			continue
		}
		tasks[i].Failures = append(tasks[i].Failures, f)
	}
	if err := frows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate failures: %w", err)
	}

	return tasks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*model.Run, error) {
	var (
		run        model.Run
		startedAt  int64
		finishedAt *int64
	)

	err := s.Scan(&run.ID, &run.Status, &run.DryRun, &run.Notified, &run.Subject, &startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	run.StartedAt = time.Unix(startedAt, 0).UTC()
	if finishedAt != nil {
		t := time.Unix(*finishedAt, 0).UTC()
		run.FinishedAt = &t
	}

	return &run, nil
}

func unixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.Unix()
	return &u
}

// SchemaVersion returns the applied journal schema version and if the last
// migration was left half applied.
func (r *Repository) SchemaVersion(ctx context.Context) (version uint, dirty bool, err error) {
	migrator, err := migrations.NewMigrator(r.db, r.logger)
	if err != nil {
		return 0, false, fmt.Errorf("could not create migrator: %w", err)
	}

	return migrator.Version(ctx)
}
