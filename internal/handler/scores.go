package handler

import (
	"context"
	"time"

	"github.com/grottogame/server/internal/net"
	"github.com/grottogame/server/internal/net/packet"
	"go.uber.org/zap"
)

// HandleScores processes C_SCORES: send the top runs. Reads the board
// from the DB with a short deadline; a miss sends an empty board rather
// than stalling the tick.
func HandleScores(sess *net.Session, r *packet.Reader, deps *Deps) {
	limit := int(r.ReadC())
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	runs, err := deps.ScoreRepo.TopScores(ctx, limit)
	if err != nil {
		deps.Log.Warn("top scores query failed", zap.Error(err))
		runs = nil
	}
	SendScores(sess, runs)
}
