package world

import (
	"math/rand"

	"github.com/grottogame/server/internal/core/pool"
	"github.com/grottogame/server/internal/data"
)

// MonsterState is the FSM state of a live monster.
type MonsterState int

const (
	StateSpawning MonsterState = iota // hatch animation hold, no collision
	StateIdle
	StatePatrolling
	StateChasing
	StateAttacking
	StateDying
	StateDead // terminal; released back to the pool
)

func (s MonsterState) String() string {
	switch s {
	case StateSpawning:
		return "Spawning"
	case StateIdle:
		return "Idle"
	case StatePatrolling:
		return "Patrolling"
	case StateChasing:
		return "Chasing"
	case StateAttacking:
		return "Attacking"
	case StateDying:
		return "Dying"
	case StateDead:
		return "Dead"
	default:
		return "Unknown"
	}
}

// MonsterInfo is the live state of one hatched monster. Pool-owned, same
// lifecycle as BubbleInfo.
// Accessed only from the game loop goroutine — no locks needed.
type MonsterInfo struct {
	ID       int32
	Handle   pool.Handle
	TypeID   string
	Template *data.MonsterTemplate
	ArenaID  int16

	X           float64
	Y           float64
	VelX        float64
	VelY        float64
	FacingRight bool

	HP int

	State     MonsterState
	StateTime float64 // seconds spent in the current state

	Target         uint64  // session ID of the chased player, 0 = none
	AttackCooldown float64 // seconds until the next attack may start
	HitDone        bool    // this attack entry already performed its hit check

	PatrolDir   float64 // ground variant: -1 or +1 along the platform
	PlatformY   float64 // ground variant: Y of the platform being walked
	PlatX1      float64 // ground variant: walkable span of that platform
	PlatX2      float64
	CirclePhase float64 // flying variant: angle on the idle circle
	CircleCX    float64 // flying variant: circle center
	CircleCY    float64

	Age      float64 // seconds since hatch
	Lifetime float64 // seconds until natural expiry; 0 = immortal

	KilledBy uint64 // session that landed the killing blow, 0 = expired

	Active bool
}

// Clear zeroes a monster slot. Registered as the pool reset hook.
func (m *MonsterInfo) Clear() {
	*m = MonsterInfo{}
}

// ResetForSpawn initializes the per-acquisition state for a fresh hatch.
func (m *MonsterInfo) ResetForSpawn(tpl *data.MonsterTemplate, rng *rand.Rand) {
	m.TypeID = tpl.ID
	m.Template = tpl
	m.VelX = 0
	m.VelY = 0
	m.HP = tpl.MaxHP
	m.State = StateSpawning
	m.StateTime = 0
	m.Target = 0
	m.AttackCooldown = 0
	m.HitDone = false
	m.PatrolDir = 1
	if rng.Intn(2) == 0 {
		m.PatrolDir = -1
	}
	m.CirclePhase = 0
	m.Age = 0
	m.KilledBy = 0
	m.Lifetime = 0
	if tpl.LifetimeMax > 0 {
		m.Lifetime = tpl.LifetimeMin + rng.Float64()*(tpl.LifetimeMax-tpl.LifetimeMin)
	}
	m.FacingRight = m.PatrolDir > 0
	m.Active = true
}

// EnterState transitions the FSM, resetting the state clock. Entering
// Attacking re-arms the single hit check for that attack.
func (m *MonsterInfo) EnterState(s MonsterState) {
	m.State = s
	m.StateTime = 0
	if s == StateAttacking {
		m.HitDone = false
	}
}
