package system

import (
	"testing"
	"time"

	"github.com/grottogame/server/internal/core/event"
	"github.com/grottogame/server/internal/world"
)

// hatchMonster spawns a monster the way a burst bubble would and returns it.
func hatchMonster(t *testing.T, sys *MonsterSystem, typeID string, x, y float64) *world.MonsterInfo {
	t.Helper()
	before := len(sys.deps.World.Monsters())
	sys.hatch(event.BubbleBurst{BubbleID: 1, TypeID: "test", MonsterID: typeID, ArenaID: 1, X: x, Y: y})
	list := sys.deps.World.Monsters()
	if len(list) != before+1 {
		t.Fatalf("hatch %q: monster not spawned", typeID)
	}
	return list[len(list)-1]
}

func TestHatchSnapsGroundToPlatform(t *testing.T) {
	deps := testDeps(t)
	sys := NewMonsterSystem(deps)

	var spawned int
	event.Subscribe(deps.Bus, func(event.MonsterSpawned) { spawned++ })

	// Above the ledge: lands on it, not on the floor under it.
	m := hatchMonster(t, sys, "burrower", 15, 8)
	if m.Y != 5 || m.PlatformY != 5 {
		t.Errorf("Y = %v, PlatformY = %v, want ledge at 5", m.Y, m.PlatformY)
	}
	if m.PlatX1 != 10 || m.PlatX2 != 20 {
		t.Errorf("patrol span = [%v, %v], want [10, 20]", m.PlatX1, m.PlatX2)
	}
	if m.State != world.StateSpawning || !m.Active {
		t.Errorf("fresh hatch state = %v active = %v", m.State, m.Active)
	}
	if m.HP != 6 || m.Lifetime != 60 {
		t.Errorf("HP = %d lifetime = %v, want template values", m.HP, m.Lifetime)
	}

	// No ledge at x=30: falls through to the floor.
	m = hatchMonster(t, sys, "burrower", 30, 8)
	if m.Y != 0 || m.PlatX1 != 0 || m.PlatX2 != 40 {
		t.Errorf("floor hatch: Y = %v span [%v, %v]", m.Y, m.PlatX1, m.PlatX2)
	}

	// Burst past the arena edge: position clamps inside first.
	m = hatchMonster(t, sys, "burrower", 45, 8)
	if m.X != 40 {
		t.Errorf("X = %v, want clamp to arena width 40", m.X)
	}

	// Flying hatch anchors its idle circle at the burst point.
	m = hatchMonster(t, sys, "wisp", 12, 7)
	if m.X != 12 || m.Y != 7 || m.CircleCX != 12 || m.CircleCY != 7 {
		t.Errorf("wisp at (%v, %v) circle (%v, %v), want (12, 7)", m.X, m.Y, m.CircleCX, m.CircleCY)
	}

	dispatch(deps)
	if spawned != 4 {
		t.Errorf("MonsterSpawned events = %d, want 4", spawned)
	}
}

func TestHatchSkipsCapUnknownAndExhausted(t *testing.T) {
	deps := testDeps(t)
	deps.Config.Game.MaxActiveMonsters = 2
	sys := NewMonsterSystem(deps)

	hatchMonster(t, sys, "burrower", 12, 0)
	hatchMonster(t, sys, "burrower", 14, 0)
	sys.hatch(event.BubbleBurst{MonsterID: "burrower", ArenaID: 1, X: 16, Y: 0})
	if n := len(deps.World.Monsters()); n != 2 {
		t.Fatalf("monsters after cap = %d, want 2", n)
	}

	sys.hatch(event.BubbleBurst{MonsterID: "", ArenaID: 1, X: 16, Y: 0})
	sys.hatch(event.BubbleBurst{MonsterID: "no_such_monster", ArenaID: 1, X: 16, Y: 0})
	sys.hatch(event.BubbleBurst{MonsterID: "burrower", ArenaID: 99, X: 16, Y: 0})
	if n := len(deps.World.Monsters()); n != 2 {
		t.Errorf("monsters after bad hatches = %d, want 2", n)
	}

	// Fresh world, cap above the pool ceiling: the pool is the limit.
	deps = testDeps(t)
	sys = NewMonsterSystem(deps)
	for i := 0; i < 10; i++ {
		sys.hatch(event.BubbleBurst{MonsterID: "burrower", ArenaID: 1, X: 12, Y: 0})
	}
	if n := len(deps.World.Monsters()); n != 8 {
		t.Errorf("monsters after pool drain = %d, want ceiling 8", n)
	}
}

func TestSpawningHoldsThenIdlesThenPatrols(t *testing.T) {
	deps := testDeps(t)
	sys := NewMonsterSystem(deps)
	m := hatchMonster(t, sys, "burrower", 15, 8)

	tick(deps, 400*time.Millisecond, sys)
	if m.State != world.StateSpawning {
		t.Fatalf("state at 0.4s = %v, want Spawning until 0.5s", m.State)
	}
	tick(deps, 200*time.Millisecond, sys)
	if m.State != world.StateIdle {
		t.Fatalf("state at 0.6s = %v, want Idle", m.State)
	}

	// Nobody around: idle runs out the wait, then patrol starts.
	tick(deps, 900*time.Millisecond, sys)
	if m.State != world.StateIdle {
		t.Fatalf("state at idle 0.9s = %v, want Idle until 1.0s", m.State)
	}
	tick(deps, 200*time.Millisecond, sys)
	if m.State != world.StatePatrolling {
		t.Fatalf("state at idle 1.1s = %v, want Patrolling", m.State)
	}
}

func TestGroundDetectionRedirectsToPatrol(t *testing.T) {
	deps := testDeps(t)
	sys := NewMonsterSystem(deps)
	m := hatchMonster(t, sys, "burrower", 15, 8)
	addPlayer(t, deps, "bait", 13, 5) // well inside detection range 8

	tick(deps, 600*time.Millisecond, sys)
	if m.State != world.StateIdle {
		t.Fatalf("state = %v, want Idle after spawn hold", m.State)
	}

	// Detection fires long before idle_wait, but ground cannot chase.
	tick(deps, 100*time.Millisecond, sys)
	if m.State != world.StatePatrolling {
		t.Fatalf("state = %v, want Patrolling (detection redirect)", m.State)
	}
	if m.Target != 0 {
		t.Errorf("target = %d, want none on a patrol redirect", m.Target)
	}
}

func TestGroundNeverChases(t *testing.T) {
	deps := testDeps(t)
	sys := NewMonsterSystem(deps)
	m := hatchMonster(t, sys, "burrower", 15, 8)
	// On the floor below the ledge: always detected, never reachable.
	addPlayer(t, deps, "bait", 15, 0)

	tick(deps, 600*time.Millisecond, sys)
	for i := 0; i < 50; i++ {
		tick(deps, 100*time.Millisecond, sys)
		if m.State == world.StateChasing || m.State == world.StateAttacking {
			t.Fatalf("tick %d: ground monster entered %v", i, m.State)
		}
		if m.Target != 0 {
			t.Fatalf("tick %d: ground monster acquired target %d", i, m.Target)
		}
	}
	if m.State != world.StatePatrolling {
		t.Errorf("state = %v, want Patrolling", m.State)
	}
	if m.Y != 5 {
		t.Errorf("Y = %v, want to stay on the ledge", m.Y)
	}
	if m.X < 10.5 || m.X > 19.5 {
		t.Errorf("X = %v, want inside patrol margins [10.5, 19.5]", m.X)
	}
}

func TestGroundAttacksFromPatrolWhenFacedAndClose(t *testing.T) {
	deps := testDeps(t)
	sys := NewMonsterSystem(deps)
	m := hatchMonster(t, sys, "burrower", 15, 8)

	// Walk to Patrolling with the arena empty.
	tick(deps, 600*time.Millisecond, sys)
	tick(deps, 1100*time.Millisecond, sys)
	if m.State != world.StatePatrolling {
		t.Fatalf("state = %v, want Patrolling", m.State)
	}
	m.PatrolDir = 1
	tick(deps, 50*time.Millisecond, sys)
	if !m.FacingRight {
		t.Fatalf("facing left after patrolling right")
	}

	// Behind its back: faced check must reject the target.
	p := addPlayer(t, deps, "prey", m.X-1.2, 5)
	tick(deps, 50*time.Millisecond, sys)
	if m.State == world.StateAttacking {
		t.Fatalf("attacked a target behind its back")
	}

	// In front and inside attack range: straight from patrol to attack.
	p.X = m.X + 1.2
	tick(deps, 50*time.Millisecond, sys)
	if m.State != world.StateAttacking {
		t.Fatalf("state = %v, want Attacking", m.State)
	}
	if m.Target != p.SessionID {
		t.Fatalf("target = %d, want %d", m.Target, p.SessionID)
	}

	// Windup: no hit yet.
	tick(deps, 150*time.Millisecond, sys)
	if p.HP != 10 || m.HitDone {
		t.Fatalf("hit landed during windup: HP = %d hitDone = %v", p.HP, m.HitDone)
	}

	// First tick inside the active window lands the one hit.
	tick(deps, 150*time.Millisecond, sys)
	if p.HP != 8 {
		t.Fatalf("HP = %d, want 8 after a 2-damage hit", p.HP)
	}
	if !m.HitDone {
		t.Fatalf("hitDone not consumed")
	}

	// Still active, target still in range, mercy window stripped: the
	// consumed hit check must be the only thing preventing a second hit.
	p.InvulnTimer = 0
	tick(deps, 100*time.Millisecond, sys)
	if p.HP != 8 {
		t.Fatalf("HP = %d, second hit landed in one attack entry", p.HP)
	}

	// Recovery ends: cooldown armed, back to patrol, target dropped.
	tick(deps, 300*time.Millisecond, sys)
	if m.State != world.StatePatrolling {
		t.Fatalf("state = %v, want Patrolling after attack", m.State)
	}
	if m.Target != 0 {
		t.Errorf("target = %d, want dropped", m.Target)
	}
	if m.AttackCooldown != 1.0 {
		t.Errorf("attack cooldown = %v, want 1.0", m.AttackCooldown)
	}
}

func TestFlyingChaseHysteresis(t *testing.T) {
	deps := testDeps(t)
	sys := NewMonsterSystem(deps)
	m := hatchMonster(t, sys, "wisp", 20, 10)
	p := addPlayer(t, deps, "prey", 20, 15) // dist 5, inside detection 6

	tick(deps, 500*time.Millisecond, sys)
	if m.State != world.StateIdle {
		t.Fatalf("state = %v, want Idle after spawn hold", m.State)
	}
	tick(deps, 50*time.Millisecond, sys)
	if m.State != world.StateChasing || m.Target != p.SessionID {
		t.Fatalf("state = %v target = %d, want Chasing %d", m.State, m.Target, p.SessionID)
	}

	// Past detection range but inside the lose radius (6×2 = 12): the
	// chase holds.
	p.X = m.X
	p.Y = m.Y + 11
	tick(deps, 10*time.Millisecond, sys)
	if m.State != world.StateChasing {
		t.Fatalf("state = %v, want chase to survive between 6 and 12", m.State)
	}

	// Beyond the lose radius: give up.
	p.Y = m.Y + 12.5
	tick(deps, 10*time.Millisecond, sys)
	if m.State != world.StatePatrolling || m.Target != 0 {
		t.Fatalf("state = %v target = %d, want Patrolling with no target", m.State, m.Target)
	}

	// Back inside plain detection: the patrol re-acquires.
	p.X = m.X
	p.Y = m.Y + 4
	tick(deps, 10*time.Millisecond, sys)
	if m.State != world.StateChasing || m.Target != p.SessionID {
		t.Fatalf("state = %v target = %d, want re-acquired chase", m.State, m.Target)
	}
}

func TestFlyingAttackReturnsToChaseWhileTargetNear(t *testing.T) {
	deps := testDeps(t)
	sys := NewMonsterSystem(deps)
	m := hatchMonster(t, sys, "wisp", 20, 10)
	p := addPlayer(t, deps, "prey", 20, 15)

	tick(deps, 500*time.Millisecond, sys)
	tick(deps, 50*time.Millisecond, sys) // Idle → Chasing
	p.X = m.X
	p.Y = m.Y + 1.0 // inside attack range 1.2
	tick(deps, 50*time.Millisecond, sys)
	if m.State != world.StateAttacking {
		t.Fatalf("state = %v, want Attacking", m.State)
	}

	tick(deps, 50*time.Millisecond, sys) // 0.05 < windup 0.1
	if p.HP != 10 {
		t.Fatalf("hit landed during windup")
	}
	tick(deps, 100*time.Millisecond, sys) // 0.15 ≥ windup
	if p.HP != 9 {
		t.Fatalf("HP = %d, want 9 after a 1-damage hit", p.HP)
	}
	tick(deps, 100*time.Millisecond, sys) // 0.25, still active, hit spent
	tick(deps, 200*time.Millisecond, sys) // 0.45 ≥ windup+active 0.4

	// Target still close: resume the chase with the same target.
	if m.State != world.StateChasing || m.Target != p.SessionID {
		t.Fatalf("state = %v target = %d, want chase resumed", m.State, m.Target)
	}
	if m.AttackCooldown != 0.8 {
		t.Errorf("attack cooldown = %v, want 0.8", m.AttackCooldown)
	}

	// Inside attack range but the cooldown gates a fresh attack.
	tick(deps, 100*time.Millisecond, sys)
	if m.State != world.StateChasing {
		t.Errorf("state = %v, want cooldown to hold the chase", m.State)
	}
}

func TestFlyingWhiffConsumesHitCheck(t *testing.T) {
	deps := testDeps(t)
	sys := NewMonsterSystem(deps)
	m := hatchMonster(t, sys, "wisp", 20, 10)
	p := addPlayer(t, deps, "prey", 20, 15)

	tick(deps, 500*time.Millisecond, sys)
	tick(deps, 50*time.Millisecond, sys)
	p.X = m.X
	p.Y = m.Y + 1.0
	tick(deps, 50*time.Millisecond, sys)
	if m.State != world.StateAttacking {
		t.Fatalf("state = %v, want Attacking", m.State)
	}

	// Target dodges before the windup lands: the one hit check whiffs.
	p.Y = m.Y + 20
	tick(deps, 150*time.Millisecond, sys)
	if p.HP != 10 {
		t.Fatalf("HP = %d, whiff dealt damage", p.HP)
	}
	if !m.HitDone {
		t.Fatalf("whiff did not consume the hit check")
	}

	// Stepping back in during the active window earns nothing.
	p.Y = m.Y + 0.5
	tick(deps, 100*time.Millisecond, sys)
	if p.HP != 10 {
		t.Fatalf("HP = %d, consumed hit check fired again", p.HP)
	}

	// Gone by recovery: the attack resolves to patrol, target dropped.
	p.Y = m.Y + 20
	tick(deps, 200*time.Millisecond, sys)
	if m.State != world.StatePatrolling || m.Target != 0 {
		t.Fatalf("state = %v target = %d, want Patrolling with no target", m.State, m.Target)
	}
}

func TestChaseTargetGoneReadsAsOutOfRange(t *testing.T) {
	deps := testDeps(t)
	sys := NewMonsterSystem(deps)
	m := hatchMonster(t, sys, "wisp", 20, 10)
	p := addPlayer(t, deps, "prey", 20, 15)

	tick(deps, 500*time.Millisecond, sys)
	tick(deps, 50*time.Millisecond, sys)
	if m.State != world.StateChasing {
		t.Fatalf("state = %v, want Chasing", m.State)
	}

	// Logged off mid-chase: no fault, just a lost target.
	deps.World.RemovePlayer(p.SessionID)
	tick(deps, 50*time.Millisecond, sys)
	if m.State != world.StatePatrolling || m.Target != 0 {
		t.Fatalf("state = %v target = %d, want Patrolling", m.State, m.Target)
	}

	// A fresh player re-triggers from patrol; their death drops it again.
	q := addPlayer(t, deps, "prey2", m.X, m.Y+3)
	tick(deps, 50*time.Millisecond, sys)
	if m.State != world.StateChasing || m.Target != q.SessionID {
		t.Fatalf("state = %v target = %d, want chase on %d", m.State, m.Target, q.SessionID)
	}
	q.Dead = true
	tick(deps, 50*time.Millisecond, sys)
	if m.State != world.StatePatrolling || m.Target != 0 {
		t.Fatalf("state = %v target = %d, want Patrolling after target died", m.State, m.Target)
	}
}

func TestKillRunsDeathSequenceOnce(t *testing.T) {
	deps := testDeps(t)
	sys := NewMonsterSystem(deps)
	m := hatchMonster(t, sys, "burrower", 30, 0)
	p := addPlayer(t, deps, "hunter", 2, 25)

	var kills []event.MonsterKilled
	var expired int
	event.Subscribe(deps.Bus, func(ev event.MonsterKilled) { kills = append(kills, ev) })
	event.Subscribe(deps.Bus, func(event.MonsterExpired) { expired++ })

	if !sys.Kill(m.ID, p.SessionID) {
		t.Fatalf("Kill returned false for a live monster")
	}
	if m.State != world.StateDying || m.KilledBy != p.SessionID {
		t.Fatalf("state = %v killedBy = %d after Kill", m.State, m.KilledBy)
	}
	if m.VelX != 0 || m.VelY != 0 {
		t.Errorf("velocity = (%v, %v), want frozen while dying", m.VelX, m.VelY)
	}

	// Already dying: further damage and kills bounce off.
	if sys.Damage(m.ID, 5, p.SessionID) {
		t.Errorf("Damage succeeded on a dying monster")
	}
	if sys.Kill(m.ID, p.SessionID) {
		t.Errorf("Kill succeeded twice")
	}

	tick(deps, 300*time.Millisecond, sys)
	if m.State != world.StateDying || deps.World.GetMonster(m.ID) == nil {
		t.Fatalf("despawned before death_duration 0.6 elapsed")
	}
	tick(deps, 400*time.Millisecond, sys)
	if m.State != world.StateDead || m.Active {
		t.Fatalf("state = %v active = %v, want Dead and released", m.State, m.Active)
	}
	if deps.World.GetMonster(m.ID) != nil {
		t.Fatalf("monster still registered after despawn")
	}

	dispatch(deps)
	if len(kills) != 1 || expired != 0 {
		t.Fatalf("kills = %d expired = %d, want exactly one kill", len(kills), expired)
	}
	if kills[0].BySession != p.SessionID || kills[0].KillScore != 50 || kills[0].TypeID != "burrower" {
		t.Errorf("kill event = %+v", kills[0])
	}

	// Dead is terminal: a forced tick changes nothing.
	age := m.Age
	sys.tickMonster(m, 0.5)
	if m.Age != age || m.State != world.StateDead {
		t.Errorf("forced tick on dead monster advanced it")
	}
}

func TestLifetimeExpiryEmitsExpired(t *testing.T) {
	deps := testDeps(t)
	sys := NewMonsterSystem(deps)
	m := hatchMonster(t, sys, "burrower", 30, 0)

	var kills, expired int
	event.Subscribe(deps.Bus, func(event.MonsterKilled) { kills++ })
	event.Subscribe(deps.Bus, func(event.MonsterExpired) { expired++ })

	m.Age = 59.95
	tick(deps, 100*time.Millisecond, sys)
	if m.State != world.StateDying || m.KilledBy != 0 {
		t.Fatalf("state = %v killedBy = %d, want uncredited dying", m.State, m.KilledBy)
	}

	tick(deps, 700*time.Millisecond, sys)
	if deps.World.GetMonster(m.ID) != nil {
		t.Fatalf("monster still registered after expiry despawn")
	}
	dispatch(deps)
	if expired != 1 || kills != 0 {
		t.Errorf("expired = %d kills = %d, want one uncredited expiry", expired, kills)
	}
}

func TestDamageAggroesFlyerNotGround(t *testing.T) {
	deps := testDeps(t)
	sys := NewMonsterSystem(deps)
	p := addPlayer(t, deps, "hunter", 2, 25)

	// Flyer: walk to Patrolling out of detection range, then plink it.
	w := hatchMonster(t, sys, "wisp", 20, 10)
	tick(deps, 500*time.Millisecond, sys)
	tick(deps, 900*time.Millisecond, sys)
	if w.State != world.StatePatrolling {
		t.Fatalf("wisp state = %v, want Patrolling", w.State)
	}
	if !sys.Damage(w.ID, 1, p.SessionID) {
		t.Fatalf("Damage returned false")
	}
	if w.HP != 2 {
		t.Errorf("wisp HP = %d, want 2", w.HP)
	}
	if w.State != world.StateChasing || w.Target != p.SessionID {
		t.Errorf("wisp state = %v target = %d, want aggro onto attacker", w.State, w.Target)
	}

	// Ground: takes the hit but cannot chase.
	g := hatchMonster(t, sys, "burrower", 30, 0)
	tick(deps, 600*time.Millisecond, sys)
	tick(deps, 1100*time.Millisecond, sys)
	if g.State != world.StatePatrolling {
		t.Fatalf("burrower state = %v, want Patrolling", g.State)
	}
	if !sys.Damage(g.ID, 1, p.SessionID) {
		t.Fatalf("Damage returned false for burrower")
	}
	if g.State != world.StatePatrolling || g.Target != 0 {
		t.Errorf("burrower state = %v target = %d, want no aggro", g.State, g.Target)
	}

	// Lethal damage starts the credited death sequence.
	if !sys.Damage(w.ID, 2, p.SessionID) {
		t.Fatalf("lethal Damage returned false")
	}
	if w.State != world.StateDying || w.KilledBy != p.SessionID {
		t.Errorf("wisp state = %v killedBy = %d, want credited dying", w.State, w.KilledBy)
	}

	if sys.Damage(99999, 1, p.SessionID) {
		t.Errorf("Damage succeeded on an unknown monster")
	}
}

func TestTouchDamageGrantsMercyWindow(t *testing.T) {
	deps := testDeps(t)
	sys := NewMonsterSystem(deps)
	m := hatchMonster(t, sys, "burrower", 30, 0)
	p := addPlayer(t, deps, "prey", 30, 0)
	p.Combo = 7

	// Spawning monsters have no collision.
	tick(deps, 400*time.Millisecond, sys)
	if p.HP != 10 {
		t.Fatalf("HP = %d, spawning monster dealt touch damage", p.HP)
	}

	// The first idle tick stings on contact.
	tick(deps, 200*time.Millisecond, sys)
	if p.HP != 9 {
		t.Fatalf("HP = %d, want 9 after one touch", p.HP)
	}
	if p.Combo != 0 {
		t.Errorf("combo = %d, want reset on damage", p.Combo)
	}
	if p.InvulnTimer != deps.Config.Game.InvulnDuration.Seconds() {
		t.Errorf("invuln = %v, want %v", p.InvulnTimer, deps.Config.Game.InvulnDuration.Seconds())
	}
	if p.ForceX == 0 || p.ForceY != 3 {
		t.Errorf("knockback force = (%v, %v), want half-up shove", p.ForceX, p.ForceY)
	}

	// Still overlapping, but the mercy window holds.
	for i := 0; i < 3; i++ {
		tick(deps, 100*time.Millisecond, sys)
	}
	if p.HP != 9 {
		t.Errorf("HP = %d, contact drained through the mercy window", p.HP)
	}
	if s := m.State; s == world.StateChasing || s == world.StateAttacking {
		t.Errorf("ground monster state = %v while touching", s)
	}
}
