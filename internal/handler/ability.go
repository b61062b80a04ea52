package handler

import (
	"math"

	"github.com/grottogame/server/internal/core/event"
	"github.com/grottogame/server/internal/net"
	"github.com/grottogame/server/internal/net/packet"
	"go.uber.org/zap"
)

// HandleAbility processes C_ABILITY: trigger the ability bound to an
// input slot. Kinds: dash (impulse on self), blast (pops every bubble in
// a radius), slam (AoE monster damage). Lua may rescale the power per
// difficulty before it is applied.
func HandleAbility(sess *net.Session, r *packet.Reader, deps *Deps) {
	slot := int(r.ReadC())

	p := deps.World.GetBySession(sess.ID)
	if p == nil || p.Dead {
		return
	}
	if slot < 1 || slot >= len(p.AbilityCD) {
		return
	}

	ability := deps.Abilities.GetSlot(slot)
	if ability == nil {
		return
	}
	if p.AbilityCD[slot] > 0 {
		return
	}

	power := deps.Scripting.AbilityPower(ability.ID, ability.Power, deps.World.Difficulty())

	switch ability.Kind {
	case "dash":
		dir := -1.0
		if p.FacingRight {
			dir = 1.0
		}
		p.AddForce(dir*power, 0, deps.Config.Game.MaxForce)
		event.Emit(deps.Bus, event.PlayerDashed{SessionID: p.SessionID, ArenaID: p.ArenaID})
		BroadcastArena(deps, p.ArenaID, BuildPlayerEvent(p.SessionID, EventDash, 0))

	case "blast":
		// Pop everything in reach. Collect IDs first: Pop mutates the
		// active list mid-iteration.
		var ids []int32
		for _, b := range deps.World.Bubbles() {
			if b.ArenaID != p.ArenaID || !b.Active {
				continue
			}
			if math.Hypot(b.X-p.X, b.Y-p.Y) <= ability.Radius {
				ids = append(ids, b.ID)
			}
		}
		for _, id := range ids {
			deps.BubbleOps.Pop(id, p.SessionID)
		}

	case "slam":
		var ids []int32
		for _, m := range deps.World.Monsters() {
			if m.ArenaID != p.ArenaID || !m.Active {
				continue
			}
			if math.Hypot(m.X-p.X, m.Y-p.Y) <= ability.Radius {
				ids = append(ids, m.ID)
			}
		}
		dmg := int(power)
		for _, id := range ids {
			deps.MonsterOps.Damage(id, dmg, p.SessionID)
		}

	default:
		deps.Log.Warn("ability with unknown kind",
			zap.String("id", ability.ID), zap.String("kind", ability.Kind))
		return
	}

	p.AbilityCD[slot] = ability.Cooldown
}
