package store

import (
	"context"
	"database/sql"
	"fmt"
)

// WriteRun stores a run with its checks and errors in one transaction and
// returns the new run id. Check and error indexes are taken from slice
// order; the Index fields of the records are ignored.
func (s *Store) WriteRun(ctx context.Context, rec RunRecord) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return "", fmt.Errorf("write run: next seq: %w", err)
	}

	id := s.ids.Generate()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, scenario, trace_path, trace_digest, passed)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, seq, rec.Scenario, rec.TracePath, rec.TraceDigest, rec.Passed)
	if err != nil {
		return "", fmt.Errorf("write run: %w", err)
	}

	if err := writeChecks(ctx, tx, id, rec.Checks); err != nil {
		return "", err
	}
	if err := writeErrors(ctx, tx, id, rec.Errors); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("write run: commit: %w", err)
	}
	return id, nil
}

func writeChecks(ctx context.Context, tx *sql.Tx, runID string, checks []CheckRecord) error {
	for i, c := range checks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO check_results
			(run_id, idx, timestamp, assertion, target, expect, passed, ok, message)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, i, c.Timestamp, c.Assertion, c.Target, c.Expect, c.Passed, c.OK, c.Message)
		if err != nil {
			return fmt.Errorf("write check %d: %w", i, err)
		}
	}
	return nil
}

func writeErrors(ctx context.Context, tx *sql.Tx, runID string, errs []ErrorRecord) error {
	for i, e := range errs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO assertion_errors
			(run_id, idx, timestamp, assertion_name, message, stacktrace, layer_id, window_token, task_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			runID,
			i,
			e.Timestamp,
			e.Error.AssertionName,
			e.Error.Message,
			e.Error.Stacktrace,
			e.Error.LayerID,
			e.Error.WindowToken,
			e.Error.TaskID,
		)
		if err != nil {
			return fmt.Errorf("write assertion error %d: %w", i, err)
		}
	}
	return nil
}
