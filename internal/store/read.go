package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/stockflow/internal/engine"
)

// ErrRunNotFound is returned by ReadRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// ListRuns returns all persisted runs, newest first. SpecText is not
// populated; use ReadRun for the full record.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, spec_hash, rounds, created_at
		FROM runs
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt string
		if err := rows.Scan(&r.ID, &r.SpecHash, &r.Rounds, &createdAt); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("list runs: parse created_at: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ReadRun returns a run and its snapshots reassembled in round order.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, []engine.Snapshot, error) {
	var run Run
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, spec_hash, spec_text, rounds, created_at
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.SpecHash, &run.SpecText, &run.Rounds, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, nil, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, nil, fmt.Errorf("read run %s: %w", id, err)
	}
	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, nil, fmt.Errorf("read run %s: parse created_at: %w", id, err)
	}

	snapshots := make([]engine.Snapshot, run.Rounds+1)
	for i := range snapshots {
		snapshots[i] = make(engine.Snapshot)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT round, stock, value
		FROM snapshots
		WHERE run_id = ?
		ORDER BY round
	`, id)
	if err != nil {
		return Run{}, nil, fmt.Errorf("read run %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var round int
		var stock string
		var value float64
		if err := rows.Scan(&round, &stock, &value); err != nil {
			return Run{}, nil, fmt.Errorf("read run %s: %w", id, err)
		}
		if round < 0 || round >= len(snapshots) {
			return Run{}, nil, fmt.Errorf("read run %s: snapshot round %d out of range", id, round)
		}
		snapshots[round][stock] = value
	}
	return run, snapshots, rows.Err()
}
