package handler

import (
	"github.com/grottogame/server/internal/core/event"
	"github.com/grottogame/server/internal/net"
	"github.com/grottogame/server/internal/net/packet"
)

// HandleEvent processes C_EVENT: discrete motion notifications (jump,
// land, dash, crouch). The interesting part is the fan-out: each becomes
// a bus event for whoever cares (stats, abilities) and a broadcast so
// other clients can play the animation.
func HandleEvent(sess *net.Session, r *packet.Reader, deps *Deps) {
	kind := r.ReadC()
	arg := r.ReadC()

	p := deps.World.GetBySession(sess.ID)
	if p == nil || p.Dead {
		return
	}

	switch kind {
	case EventJump:
		p.Grounded = false
		event.Emit(deps.Bus, event.PlayerJumped{SessionID: p.SessionID, ArenaID: p.ArenaID})
	case EventLand:
		p.Grounded = true
		event.Emit(deps.Bus, event.PlayerLanded{SessionID: p.SessionID, ArenaID: p.ArenaID})
	case EventDash:
		event.Emit(deps.Bus, event.PlayerDashed{SessionID: p.SessionID, ArenaID: p.ArenaID})
	case EventCrouch:
		p.Crouching = arg != 0
		event.Emit(deps.Bus, event.PlayerCrouched{
			SessionID: p.SessionID,
			ArenaID:   p.ArenaID,
			Crouching: p.Crouching,
		})
	default:
		return // unknown kinds are dropped, not faults
	}

	BroadcastArena(deps, p.ArenaID, BuildPlayerEvent(p.SessionID, kind, arg))
}
