package persist

import (
	"context"
	"time"
)

// RunRow is one finished run: score at death or disconnect.
type RunRow struct {
	ID        int64
	Account   string
	Player    string
	ArenaID   int16
	Score     int
	Pops      int
	Kills     int
	Deaths    int
	BestCombo int
	Duration  time.Duration
	EndedAt   time.Time
}

type ScoreRepo struct {
	db *DB
}

func NewScoreRepo(db *DB) *ScoreRepo {
	return &ScoreRepo{db: db}
}

// InsertRun records one finished run on the scoreboard.
func (r *ScoreRepo) InsertRun(ctx context.Context, run *RunRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO runs (account, player, arena_id, score, pops, kills, deaths, best_combo, duration_secs, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		run.Account, run.Player, run.ArenaID, run.Score,
		run.Pops, run.Kills, run.Deaths, run.BestCombo,
		int64(run.Duration.Seconds()), run.EndedAt,
	)
	return err
}

// TopScores returns the best runs, highest score first.
func (r *ScoreRepo) TopScores(ctx context.Context, limit int) ([]RunRow, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, account, player, arena_id, score, pops, kills, deaths, best_combo, duration_secs, ended_at
		 FROM runs ORDER BY score DESC, ended_at ASC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var run RunRow
		var durSecs int64
		if err := rows.Scan(
			&run.ID, &run.Account, &run.Player, &run.ArenaID, &run.Score,
			&run.Pops, &run.Kills, &run.Deaths, &run.BestCombo,
			&durSecs, &run.EndedAt,
		); err != nil {
			return nil, err
		}
		run.Duration = time.Duration(durSecs) * time.Second
		out = append(out, run)
	}
	return out, rows.Err()
}
