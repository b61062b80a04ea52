package handler

import (
	"fmt"

	"github.com/grottogame/server/internal/core/event"
	"github.com/grottogame/server/internal/net"
	"github.com/grottogame/server/internal/net/packet"
	"go.uber.org/zap"
)

// Admin subcommands. These are the runtime mutation surface for the
// spawn weights and difficulty — everything else is data files.
const (
	AdminSetDifficulty byte = 1 // [F value] — the one path that may lower it
	AdminToggleType    byte = 2 // [S typeID][C enabled]
	AdminSetMult       byte = 3 // [S typeID][F runtime mult]
	AdminSpawnType     byte = 4 // [S typeID][F x][F y] — force-spawn a bubble
)

// HandleAdmin processes C_ADMIN, gated on the account's access level.
func HandleAdmin(sess *net.Session, r *packet.Reader, deps *Deps) {
	if sess.AccessLevel <= 0 {
		deps.Log.Warn("admin command from non-admin",
			zap.String("account", sess.AccountName), zap.Uint64("session", sess.ID))
		SendAdminResult(sess, false, "not allowed")
		return
	}

	sub := r.ReadC()
	switch sub {
	case AdminSetDifficulty:
		value := float64(r.ReadF())
		old := deps.World.Difficulty()
		now := deps.World.OverrideDifficulty(value)
		event.Emit(deps.Bus, event.DifficultyChanged{Old: old, New: now})
		pkt := BuildDifficulty(old, now)
		for _, p := range deps.World.Players() {
			p.Session.Send(pkt)
		}
		SendAdminResult(sess, true, fmt.Sprintf("difficulty %.2f -> %.2f", old, now))
		deps.Log.Info("admin difficulty override",
			zap.Float64("old", old), zap.Float64("new", now),
			zap.String("account", sess.AccountName))

	case AdminToggleType:
		typeID := r.ReadS()
		enabled := r.ReadC() != 0
		tpl := deps.Bubbles.Get(typeID)
		if tpl == nil {
			SendAdminResult(sess, false, "unknown type "+typeID)
			return
		}
		tpl.Enabled = enabled
		SendAdminResult(sess, true, fmt.Sprintf("%s enabled=%v", typeID, enabled))
		deps.Log.Info("admin type toggle",
			zap.String("type", typeID), zap.Bool("enabled", enabled),
			zap.String("account", sess.AccountName))

	case AdminSetMult:
		typeID := r.ReadS()
		mult := float64(r.ReadF())
		tpl := deps.Bubbles.Get(typeID)
		if tpl == nil {
			SendAdminResult(sess, false, "unknown type "+typeID)
			return
		}
		if mult < 0 {
			SendAdminResult(sess, false, "mult must be >= 0")
			return
		}
		tpl.RuntimeMult = mult
		SendAdminResult(sess, true, fmt.Sprintf("%s runtime_mult=%.2f", typeID, mult))

	case AdminSpawnType:
		typeID := r.ReadS()
		x := float64(r.ReadF())
		y := float64(r.ReadF())
		p := deps.World.GetBySession(sess.ID)
		if p == nil {
			SendAdminResult(sess, false, "not in an arena")
			return
		}
		b := deps.BubbleOps.Spawn(p.ArenaID, typeID, x, y)
		if b == nil {
			SendAdminResult(sess, false, "spawn refused (capacity or unknown type)")
			return
		}
		SendAdminResult(sess, true, fmt.Sprintf("spawned %s as #%d", typeID, b.ID))

	default:
		SendAdminResult(sess, false, "unknown subcommand")
	}
}
