package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const runColumns = `id, design_path, input_file, output_dir, ev_count, contrast_count,
	status, exit_code, started_at, completed_at, error`

// CreateRun records a freshly written design with status rendered.
func (s *SQLiteStore) CreateRun(ctx context.Context, in NewRun) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:            generateID(),
		DesignPath:    in.DesignPath,
		InputFile:     in.InputFile,
		OutputDir:     in.OutputDir,
		EVCount:       in.EVCount,
		ContrastCount: in.ContrastCount,
		Status:        RunStatusRendered,
		StartedAt:     time.Now().UTC(),
	}

	s.logger.Debug("creating run", slog.String("id", run.ID), slog.String("design", run.DesignPath))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, design_path, input_file, output_dir, ev_count, contrast_count, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.DesignPath, run.InputFile, run.OutputDir, run.EVCount, run.ContrastCount,
		string(run.Status), run.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return run, nil
}

// CompleteRun stamps a run with its final status.
func (s *SQLiteStore) CompleteRun(ctx context.Context, id string, status RunStatus, exitCode *int, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	var errVal sql.NullString
	if errMsg != "" {
		errVal = sql.NullString{String: errMsg, Valid: true}
	}
	var codeVal sql.NullInt64
	if exitCode != nil {
		codeVal = sql.NullInt64{Int64: int64(*exitCode), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, exit_code = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(status), codeVal, time.Now().UTC().Format(timeLayout), errVal, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run         Run
		status      string
		exitCode    sql.NullInt64
		startedAt   string
		completedAt sql.NullString
		errMsg      sql.NullString
	)
	err := row.Scan(&run.ID, &run.DesignPath, &run.InputFile, &run.OutputDir,
		&run.EVCount, &run.ContrastCount, &status, &exitCode, &startedAt, &completedAt, &errMsg)
	if err != nil {
		return nil, err
	}

	run.Status = RunStatus(status)
	if exitCode.Valid {
		code := int(exitCode.Int64)
		run.ExitCode = &code
	}
	if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if completedAt.Valid {
		t, err := time.Parse(timeLayout, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}
		run.CompletedAt = &t
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	return &run, nil
}
