package world

import (
	"math"
	"math/rand"

	"github.com/grottogame/server/internal/core/pool"
	"github.com/grottogame/server/internal/data"
)

// BubbleInfo is the live state of one bubble rising through an arena.
// Instances are pool-owned: everything except the pool bookkeeping is
// rewritten by ResetForSpawn on each acquisition.
// Accessed only from the game loop goroutine — no locks needed.
type BubbleInfo struct {
	ID       int32
	Handle   pool.Handle
	TypeID   string
	Template *data.BubbleTemplate
	ArenaID  int16

	X    float64
	Y    float64
	VelX float64
	VelY float64

	Age      float64 // seconds since spawn
	Lifetime float64 // seconds until it bursts on its own

	WobblePhase float64 // sine phase for horizontal wobble
	DriftSeed   float64 // per-bubble drift direction bias

	Active bool
}

// Clear zeroes a bubble so a stale read through an old handle cannot see
// the previous occupant. Registered as the pool reset hook.
func (b *BubbleInfo) Clear() {
	*b = BubbleInfo{}
}

// ResetForSpawn initializes the per-acquisition state: velocity zeroed,
// lifetime rolled uniformly in [min,max], fresh wobble seeds.
func (b *BubbleInfo) ResetForSpawn(tpl *data.BubbleTemplate, rng *rand.Rand) {
	b.TypeID = tpl.ID
	b.Template = tpl
	b.VelX = 0
	b.VelY = 0
	b.Age = 0
	b.Lifetime = tpl.LifetimeMin + rng.Float64()*(tpl.LifetimeMax-tpl.LifetimeMin)
	b.WobblePhase = rng.Float64() * 2 * math.Pi
	b.DriftSeed = rng.Float64()*2 - 1
	b.Active = true
}
