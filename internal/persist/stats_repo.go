package persist

import (
	"context"
	"fmt"
	"time"
)

// RunEvent is one journaled gameplay event. Events are buffered in
// memory by the stats system and flushed in batches.
type RunEvent struct {
	Kind    string // "pop", "kill", "death", "jump", "dash", "spawn"
	Account string
	ArenaID int16
	Subject string // bubble/monster type ID, empty for movement events
	Value   int    // score delta, damage, etc.
	At      time.Time
}

type StatsRepo struct {
	db *DB
}

func NewStatsRepo(db *DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// WriteBatch atomically journals a batch of run events in a single
// transaction. Returns nil on success; on failure the caller keeps the
// batch and retries next flush.
func (r *StatsRepo) WriteBatch(ctx context.Context, events []RunEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("stats begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range events {
		if _, err := tx.Exec(ctx,
			`INSERT INTO run_events (kind, account, arena_id, subject, value, at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			e.Kind, e.Account, e.ArenaID, e.Subject, e.Value, e.At,
		); err != nil {
			return fmt.Errorf("stats insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}
