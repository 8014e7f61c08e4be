package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/stockflow/internal/engine"
)

// WriteRun inserts a run and all of its snapshot values in a single
// transaction. Uses ON CONFLICT DO NOTHING on the run row so rewriting
// the same run ID is idempotent.
func (s *Store) WriteRun(ctx context.Context, run Run, snapshots []engine.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, spec_hash, spec_text, rounds, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.SpecHash,
		run.SpecText,
		run.Rounds,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write run %s: %w", run.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Run already written; snapshots are immutable once stored.
		return tx.Commit()
	}

	for round, snap := range snapshots {
		for stock, value := range snap {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO snapshots (run_id, round, stock, value)
				VALUES (?, ?, ?, ?)
			`, run.ID, round, stock, value)
			if err != nil {
				return fmt.Errorf("write snapshot %s round %d stock %s: %w", run.ID, round, stock, err)
			}
		}
	}

	return tx.Commit()
}
