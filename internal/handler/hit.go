package handler

import (
	"math"

	"github.com/grottogame/server/internal/net"
	"github.com/grottogame/server/internal/net/packet"
)

// HandleHit processes C_HIT: a melee swing at a monster. The server owns
// the outcome: cooldown gate, reach and facing checks, then the Lua
// damage curve. A swing at a monster that is still hatching or already
// dying whiffs without error.
func HandleHit(sess *net.Session, r *packet.Reader, deps *Deps) {
	monsterID := r.ReadD()

	p := deps.World.GetBySession(sess.ID)
	if p == nil || p.Dead {
		return
	}
	if p.MeleeCD > 0 {
		return
	}

	m := deps.World.GetMonster(monsterID)
	if m == nil || !m.Active || m.ArenaID != p.ArenaID {
		return
	}

	reach := deps.Config.Game.MeleeRange
	dx := m.X - p.X
	if math.Hypot(dx, m.Y-p.Y) > reach {
		return
	}
	// Swings only land on the side the player faces.
	if (dx > 0) != p.FacingRight && dx != 0 {
		return
	}

	p.MeleeCD = deps.Config.Game.MeleeCooldown.Seconds()

	dmg := deps.Scripting.MeleeDamage(
		deps.Config.Game.MeleeDamage,
		deps.World.Difficulty(),
		p.Combo,
	)

	if deps.MonsterOps.Damage(monsterID, dmg, p.SessionID) {
		p.Combo++
		if p.Combo > p.BestCombo {
			p.BestCombo = p.Combo
		}
	}
}
