package world

import (
	"math"
	"time"

	"github.com/grottogame/server/internal/net"
)

// PlayerInfo holds in-memory data for a player currently in an arena.
// Accessed only from the game loop goroutine — no locks needed.
type PlayerInfo struct {
	SessionID uint64
	Session   *net.Session
	Account   string
	Name      string
	ArenaID   int16

	X           float64
	Y           float64
	VelX        float64
	VelY        float64
	Grounded    bool
	FacingRight bool
	Crouching   bool

	HP    int
	MaxHP int
	Dead  bool

	Score int
	Combo int // consecutive hits without taking damage; feeds melee damage

	// External force accumulator. The client integrates movement; the
	// server only accumulates knockback/dash impulses and reports them.
	ForceX float64
	ForceY float64

	RespawnTimer float64 // seconds until respawn while dead
	InvulnTimer  float64 // seconds of post-respawn invulnerability left

	AbilityCD [5]float64 // seconds left per input slot, index 1-4
	MeleeCD   float64    // seconds until the next melee swing

	// Per-run stats, flushed to the score log when the run ends.
	Pops      int
	Kills     int
	Deaths    int
	BestCombo int
	StartedAt time.Time

	Dirty bool // needs a persist flush
}

// AddForce accumulates an external impulse, clamping the resulting
// magnitude to maxMag so stacked knockbacks cannot launch a player
// across the arena.
func (p *PlayerInfo) AddForce(fx, fy, maxMag float64) {
	p.ForceX += fx
	p.ForceY += fy
	mag := math.Hypot(p.ForceX, p.ForceY)
	if maxMag > 0 && mag > maxMag {
		scale := maxMag / mag
		p.ForceX *= scale
		p.ForceY *= scale
	}
}

// DecayForce shrinks the force accumulator by the per-tick decay factor,
// snapping to zero below a small threshold so it doesn't trickle forever.
func (p *PlayerInfo) DecayForce(factor float64) {
	p.ForceX *= factor
	p.ForceY *= factor
	if math.Abs(p.ForceX) < 0.01 {
		p.ForceX = 0
	}
	if math.Abs(p.ForceY) < 0.01 {
		p.ForceY = 0
	}
}

// Invulnerable reports whether damage should be ignored right now.
func (p *PlayerInfo) Invulnerable() bool {
	return p.Dead || p.InvulnTimer > 0
}
