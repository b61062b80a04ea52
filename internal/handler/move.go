package handler

import (
	"github.com/grottogame/server/internal/net"
	"github.com/grottogame/server/internal/net/packet"
)

// HandleMove processes C_MOVE: the client's integrated position and
// velocity. The server does not simulate player kinematics; it sanity
// clamps the report to the arena box and trusts the rest. Dead players'
// reports are dropped — the corpse stays where it fell.
func HandleMove(sess *net.Session, r *packet.Reader, deps *Deps) {
	x := float64(r.ReadF())
	y := float64(r.ReadF())
	velX := float64(r.ReadF())
	velY := float64(r.ReadF())
	flags := r.ReadC()

	p := deps.World.GetBySession(sess.ID)
	if p == nil || p.Dead {
		return
	}

	arena := deps.Arenas.Get(p.ArenaID)
	if arena == nil {
		return
	}

	if x < 0 {
		x = 0
	} else if x > arena.Width {
		x = arena.Width
	}
	if y < 0 {
		y = 0
	} else if y > arena.Height {
		y = arena.Height
	}

	p.X = x
	p.Y = y
	p.VelX = velX
	p.VelY = velY
	p.Grounded = flags&0x01 != 0
	p.FacingRight = flags&0x02 != 0
}
