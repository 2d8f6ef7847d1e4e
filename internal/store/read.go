package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ListRuns returns every run ordered by seq.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, scenario, trace_path, trace_digest, passed
		FROM runs
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns one run. Unknown ids yield ErrRunNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, scenario, trace_path, trace_digest, passed
		FROM runs
		WHERE id = ?
	`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// ReadCheckResults returns the checks of a run ordered by index.
func (s *Store) ReadCheckResults(ctx context.Context, runID string) ([]CheckRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, timestamp, assertion, target, expect, passed, ok, message
		FROM check_results
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query check results: %w", err)
	}
	defer rows.Close()

	checks := []CheckRecord{}
	for rows.Next() {
		var c CheckRecord
		if err := rows.Scan(&c.Index, &c.Timestamp, &c.Assertion, &c.Target, &c.Expect, &c.Passed, &c.OK, &c.Message); err != nil {
			return nil, fmt.Errorf("scan check result: %w", err)
		}
		checks = append(checks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate check results: %w", err)
	}
	return checks, nil
}

// ReadErrors returns the assertion errors of a run ordered by index.
func (s *Store) ReadErrors(ctx context.Context, runID string) ([]ErrorRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, timestamp, assertion_name, message, stacktrace, layer_id, window_token, task_id
		FROM assertion_errors
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query assertion errors: %w", err)
	}
	defer rows.Close()

	errs := []ErrorRecord{}
	for rows.Next() {
		var e ErrorRecord
		if err := rows.Scan(
			&e.Index,
			&e.Timestamp,
			&e.Error.AssertionName,
			&e.Error.Message,
			&e.Error.Stacktrace,
			&e.Error.LayerID,
			&e.Error.WindowToken,
			&e.Error.TaskID,
		); err != nil {
			return nil, fmt.Errorf("scan assertion error: %w", err)
		}
		errs = append(errs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assertion errors: %w", err)
	}
	return errs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	if err := row.Scan(&r.ID, &r.Seq, &r.Scenario, &r.TracePath, &r.TraceDigest, &r.Passed); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	return r, nil
}
