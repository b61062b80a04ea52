package handler

import (
	"math"

	"github.com/grottogame/server/internal/net"
	"github.com/grottogame/server/internal/net/packet"
	"go.uber.org/zap"
)

// HandlePop processes C_POP: the player pops a bubble by ID. The server
// re-checks reach; a stale or out-of-range pop is ignored silently (the
// bubble may have burst on its own in flight).
func HandlePop(sess *net.Session, r *packet.Reader, deps *Deps) {
	bubbleID := r.ReadD()

	p := deps.World.GetBySession(sess.ID)
	if p == nil || p.Dead {
		return
	}

	b := deps.World.GetBubble(bubbleID)
	if b == nil || !b.Active || b.ArenaID != p.ArenaID {
		return
	}

	reach := deps.Config.Game.PopRange + b.Template.Radius
	if math.Hypot(b.X-p.X, b.Y-p.Y) > reach {
		deps.Log.Debug("pop out of range",
			zap.Int32("bubble", bubbleID),
			zap.Uint64("session", sess.ID),
		)
		return
	}

	deps.BubbleOps.Pop(bubbleID, p.SessionID)
}
