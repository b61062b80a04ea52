package system

import (
	"errors"
	"math"
	"time"

	"github.com/grottogame/server/internal/core/event"
	"github.com/grottogame/server/internal/core/pool"
	coresys "github.com/grottogame/server/internal/core/system"
	"github.com/grottogame/server/internal/handler"
	"github.com/grottogame/server/internal/world"
	"go.uber.org/zap"
)

// How close a live monster's body has to be to sting a player on contact.
const touchRange = 0.9

// variantOps is the per-variant strategy table: movement per state, whether
// detection may start a chase at all, and where a finished attack returns.
// Ground monsters never chase — their chase slot stays nil and detection
// redirects to patrol.
type variantOps struct {
	canChase    bool
	patrol      func(*MonsterSystem, *world.MonsterInfo, float64)
	chase       func(*MonsterSystem, *world.MonsterInfo, *world.PlayerInfo, float64)
	afterAttack func(*MonsterSystem, *world.MonsterInfo) world.MonsterState
}

var variants = map[string]*variantOps{
	"ground": {
		canChase:    false,
		patrol:      (*MonsterSystem).patrolGround,
		afterAttack: (*MonsterSystem).afterAttackGround,
	},
	"flying": {
		canChase:    true,
		patrol:      (*MonsterSystem).patrolFlying,
		chase:       (*MonsterSystem).chaseFlying,
		afterAttack: (*MonsterSystem).afterAttackFlying,
	},
}

// MonsterSystem is the monster lifecycle manager and FSM driver. Monsters
// hatch from burst bubbles, walk the Spawning→Idle→Patrolling/Chasing→
// Attacking graph, and leave through Dying→Dead into the pool. Phase 2
// (Update), registered after BubbleSystem.
//
// Implements handler.MonsterOps.
type MonsterSystem struct {
	deps *handler.Deps
	pool *pool.Pool[world.MonsterInfo]
	log  *zap.Logger
}

func NewMonsterSystem(deps *handler.Deps) *MonsterSystem {
	s := &MonsterSystem{
		deps: deps,
		pool: pool.New[world.MonsterInfo](),
		log:  deps.Log,
	}
	cfg := deps.Config.Game
	for _, tpl := range deps.Monsters.All() {
		ceiling := tpl.Ceiling
		if ceiling <= 0 {
			ceiling = cfg.DefaultPoolCeiling
		}
		prewarm := tpl.Prewarm
		if prewarm > ceiling {
			prewarm = ceiling
		}
		err := s.pool.RegisterType(tpl.ID, ceiling, prewarm,
			func() *world.MonsterInfo { return &world.MonsterInfo{} },
			(*world.MonsterInfo).Clear,
		)
		if err != nil {
			s.log.Warn("monster type dropped", zap.String("type", tpl.ID), zap.Error(err))
		}
	}
	event.Subscribe(deps.Bus, func(ev event.BubbleBurst) { s.hatch(ev) })
	return s
}

func (s *MonsterSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MonsterSystem) Update(dt time.Duration) {
	step := dt.Seconds()
	monsters := append([]*world.MonsterInfo(nil), s.deps.World.Monsters()...)
	for _, m := range monsters {
		if !m.Active {
			continue
		}
		s.tickMonster(m, step)
	}
}

// hatch spawns a bubble's monster at the burst position. Bubbles with no
// hatch monster burst clean.
func (s *MonsterSystem) hatch(ev event.BubbleBurst) {
	if ev.MonsterID == "" {
		return
	}
	ws := s.deps.World
	tpl := s.deps.Monsters.Get(ev.MonsterID)
	arena := s.deps.Arenas.Get(ev.ArenaID)
	if tpl == nil || arena == nil {
		s.log.Warn("hatch with unknown template",
			zap.String("monster", ev.MonsterID),
			zap.Int16("arena", ev.ArenaID),
		)
		return
	}
	limit := arena.MaxMonsters
	if limit <= 0 {
		limit = s.deps.Config.Game.MaxActiveMonsters
	}
	if ws.ArenaMonsterCount(ev.ArenaID) >= limit {
		s.log.Debug("monster cap reached, hatch skipped",
			zap.Int16("arena", ev.ArenaID),
			zap.String("type", ev.MonsterID),
		)
		return
	}

	h, m, err := s.pool.Acquire(tpl.ID)
	if err != nil {
		if errors.Is(err, pool.ErrExhausted) {
			s.log.Debug("monster pool exhausted", zap.String("type", tpl.ID))
		} else {
			s.log.Warn("monster acquire failed", zap.String("type", tpl.ID), zap.Error(err))
		}
		return
	}
	m.ResetForSpawn(tpl, ws.RNG())
	m.ID = world.NewMonsterID()
	m.Handle = h
	m.ArenaID = ev.ArenaID

	x := clamp(ev.X, 0, arena.Width)
	y := clamp(ev.Y, 0, arena.Height)
	switch tpl.Variant {
	case "ground":
		if plat, ok := arena.PlatformBelow(x, y); ok {
			m.Y = plat.Y
			m.PlatformY = plat.Y
			m.PlatX1 = plat.X1
			m.PlatX2 = plat.X2
		} else {
			// Burst past every platform strip: stand where it landed and
			// treat the full arena width as walkable.
			m.Y = y
			m.PlatformY = y
			m.PlatX1 = 0
			m.PlatX2 = arena.Width
			s.log.Debug("hatch found no platform below",
				zap.String("type", tpl.ID),
				zap.Float64("x", x), zap.Float64("y", y),
			)
		}
		m.X = x
	case "flying":
		m.X = x
		m.Y = y
		m.CircleCX = x
		m.CircleCY = y
		m.CirclePhase = ws.RNG().Float64() * 2 * math.Pi
	}

	ws.AddMonster(m)
	event.Emit(s.deps.Bus, event.MonsterSpawned{
		MonsterID: m.ID,
		TypeID:    m.TypeID,
		ArenaID:   m.ArenaID,
		X:         m.X,
		Y:         m.Y,
	})
	handler.BroadcastArena(s.deps, m.ArenaID, handler.BuildMonsterSpawn(m))
}

// tickMonster runs one monster's frame: timers first, then the state
// transition, then state movement. The whole monster finishes before the
// next one starts.
func (s *MonsterSystem) tickMonster(m *world.MonsterInfo, step float64) {
	if m.State == world.StateDead {
		return // terminal — forced ticks are no-ops
	}
	tpl := m.Template
	ops := variants[tpl.Variant]

	m.Age += step
	m.StateTime += step
	if m.AttackCooldown > 0 {
		m.AttackCooldown -= step
		if m.AttackCooldown < 0 {
			m.AttackCooldown = 0
		}
	}
	if m.Lifetime > 0 && m.Age >= m.Lifetime {
		s.startDying(m, 0)
	}

	switch m.State {
	case world.StateSpawning:
		if m.StateTime >= tpl.SpawnDuration {
			m.EnterState(world.StateIdle)
		}

	case world.StateIdle:
		if t := s.nearestTarget(m, tpl.DetectionRange); t != nil {
			if ops.canChase {
				m.Target = t.SessionID
				m.EnterState(world.StateChasing)
			} else {
				// Ground: a chase trigger redirects straight to patrol.
				m.EnterState(world.StatePatrolling)
			}
		} else if m.StateTime >= tpl.IdleWait {
			m.EnterState(world.StatePatrolling)
		}

	case world.StatePatrolling:
		if ops.canChase {
			if t := s.nearestTarget(m, tpl.DetectionRange); t != nil {
				m.Target = t.SessionID
				m.EnterState(world.StateChasing)
			}
		} else if m.AttackCooldown <= 0 {
			// Ground attacks out of patrol: needs proximity and facing.
			if t := s.facedTarget(m, tpl.AttackRange); t != nil {
				m.Target = t.SessionID
				m.EnterState(world.StateAttacking)
			}
		}

	case world.StateChasing:
		t := s.targetPlayer(m)
		loseRange := tpl.DetectionRange * tpl.LoseTargetMult
		switch {
		case t == nil || s.dist(m, t) > loseRange:
			m.Target = 0
			m.EnterState(world.StatePatrolling)
		case m.AttackCooldown <= 0 && s.dist(m, t) <= tpl.AttackRange:
			m.FacingRight = t.X >= m.X
			m.EnterState(world.StateAttacking)
		}

	case world.StateAttacking:
		s.tickAttack(m, ops)

	case world.StateDying:
		if m.StateTime >= tpl.DeathDuration {
			m.EnterState(world.StateDead)
			s.despawn(m)
			return
		}
	}

	switch m.State {
	case world.StatePatrolling:
		ops.patrol(s, m, step)
	case world.StateChasing:
		if t := s.targetPlayer(m); t != nil && ops.chase != nil {
			ops.chase(s, m, t, step)
		}
	default:
		m.VelX = 0
		m.VelY = 0
	}

	switch m.State {
	case world.StateIdle, world.StatePatrolling, world.StateChasing:
		s.touchPlayers(m)
	}
}

// tickAttack runs the windup/active/recover timeline. The hit check fires
// at most once per attack entry — the first tick inside the active window
// consumes it, hit or whiff.
func (s *MonsterSystem) tickAttack(m *world.MonsterInfo, ops *variantOps) {
	tpl := m.Template
	if !m.HitDone && m.StateTime >= tpl.AttackWindup {
		m.HitDone = true
		if t := s.targetPlayer(m); t != nil &&
			s.dist(m, t) <= tpl.AttackRange &&
			(t.X >= m.X) == m.FacingRight {
			s.hurtPlayer(t, m, tpl.AttackDamage)
		}
	}
	if m.StateTime >= tpl.AttackWindup+tpl.AttackActive {
		m.AttackCooldown = tpl.AttackCooldown
		m.EnterState(ops.afterAttack(s, m))
	}
}

// --- variant movement ---

func (s *MonsterSystem) patrolGround(m *world.MonsterInfo, step float64) {
	tpl := m.Template
	lo := m.PlatX1 + tpl.EdgeMargin
	hi := m.PlatX2 - tpl.EdgeMargin
	if lo >= hi {
		m.VelX, m.VelY = 0, 0
		return // platform narrower than the turn margins: stand put
	}
	speed := tpl.MoveSpeed * s.speedScale()
	x := m.X + m.PatrolDir*speed*step
	if x <= lo {
		x = lo
		m.PatrolDir = 1
	} else if x >= hi {
		x = hi
		m.PatrolDir = -1
	}
	m.X = x
	m.Y = m.PlatformY
	m.FacingRight = m.PatrolDir > 0
	m.VelX = m.PatrolDir * speed
	m.VelY = 0
}

func (s *MonsterSystem) patrolFlying(m *world.MonsterInfo, step float64) {
	tpl := m.Template
	m.CirclePhase += tpl.CircleSpeed * step
	x := m.CircleCX + math.Cos(m.CirclePhase)*tpl.CircleRadius
	y := m.CircleCY + math.Sin(m.CirclePhase)*tpl.CircleRadius
	if arena := s.deps.Arenas.Get(m.ArenaID); arena != nil {
		x = clamp(x, 0, arena.Width)
		y = clamp(y, 0, arena.Height)
	}
	if step > 0 {
		m.VelX = (x - m.X) / step
		m.VelY = (y - m.Y) / step
	}
	m.X = x
	m.Y = y
	m.FacingRight = m.VelX >= 0
}

func (s *MonsterSystem) chaseFlying(m *world.MonsterInfo, t *world.PlayerInfo, step float64) {
	tpl := m.Template
	speed := tpl.ChaseSpeed * s.speedScale()
	// Predictive steering: aim chase_lead seconds ahead of the target.
	tx := t.X + t.VelX*tpl.ChaseLead
	ty := t.Y + t.VelY*tpl.ChaseLead
	dx := tx - m.X
	dy := ty - m.Y
	d := math.Hypot(dx, dy)
	if d > 1e-6 {
		m.VelX = dx / d * speed
		m.VelY = dy / d * speed
		m.X += m.VelX * step
		m.Y += m.VelY * step
	}
	if arena := s.deps.Arenas.Get(m.ArenaID); arena != nil {
		m.X = clamp(m.X, 0, arena.Width)
		m.Y = clamp(m.Y, 0, arena.Height)
	}
	m.FacingRight = t.X >= m.X
}

func (s *MonsterSystem) afterAttackGround(m *world.MonsterInfo) world.MonsterState {
	m.Target = 0
	return world.StatePatrolling
}

func (s *MonsterSystem) afterAttackFlying(m *world.MonsterInfo) world.MonsterState {
	if t := s.targetPlayer(m); t != nil && s.dist(m, t) <= m.Template.DetectionRange {
		return world.StateChasing
	}
	m.Target = 0
	return world.StatePatrolling
}

// --- targeting ---

// targetPlayer resolves the chased session. Missing, dead, or relocated
// players read as out of range, never a fault.
func (s *MonsterSystem) targetPlayer(m *world.MonsterInfo) *world.PlayerInfo {
	if m.Target == 0 {
		return nil
	}
	p := s.deps.World.GetBySession(m.Target)
	if p == nil || p.Dead || p.ArenaID != m.ArenaID {
		return nil
	}
	return p
}

func (s *MonsterSystem) nearestTarget(m *world.MonsterInfo, within float64) *world.PlayerInfo {
	var best *world.PlayerInfo
	bestD := within
	for _, p := range s.deps.World.PlayersInArena(m.ArenaID) {
		if p.Dead {
			continue
		}
		if d := s.dist(m, p); d <= bestD {
			bestD = d
			best = p
		}
	}
	return best
}

// facedTarget is nearestTarget restricted to the side the monster faces.
func (s *MonsterSystem) facedTarget(m *world.MonsterInfo, within float64) *world.PlayerInfo {
	var best *world.PlayerInfo
	bestD := within
	for _, p := range s.deps.World.PlayersInArena(m.ArenaID) {
		if p.Dead {
			continue
		}
		if (p.X >= m.X) != m.FacingRight {
			continue
		}
		if d := s.dist(m, p); d <= bestD {
			bestD = d
			best = p
		}
	}
	return best
}

func (s *MonsterSystem) dist(m *world.MonsterInfo, p *world.PlayerInfo) float64 {
	return math.Hypot(p.X-m.X, p.Y-m.Y)
}

func (s *MonsterSystem) speedScale() float64 {
	return 1 + s.deps.Config.Game.SpeedPerDifficulty*(s.deps.World.Difficulty()-1)
}

// --- damage ---

// touchPlayers stings anyone brushing against a live monster. The mercy
// window hurtPlayer grants keeps contact from draining a player every tick.
func (s *MonsterSystem) touchPlayers(m *world.MonsterInfo) {
	dmg := m.Template.TouchDamage
	if dmg <= 0 {
		return
	}
	for _, p := range s.deps.World.PlayersInArena(m.ArenaID) {
		if p.Dead || p.Invulnerable() {
			continue
		}
		if s.dist(m, p) <= touchRange {
			s.hurtPlayer(p, m, dmg)
		}
	}
}

func (s *MonsterSystem) hurtPlayer(p *world.PlayerInfo, m *world.MonsterInfo, dmg int) {
	if dmg <= 0 || p.Dead || p.Invulnerable() {
		return
	}
	p.HP -= dmg
	p.Combo = 0
	p.InvulnTimer = s.deps.Config.Game.InvulnDuration.Seconds()
	dir := 1.0
	if p.X < m.X {
		dir = -1
	}
	p.AddForce(dir*m.Template.KnockbackForce, 0.5*m.Template.KnockbackForce, s.deps.Config.Game.MaxForce)
	p.Dirty = true

	event.Emit(s.deps.Bus, event.PlayerDamaged{
		SessionID: p.SessionID,
		ArenaID:   p.ArenaID,
		MonsterID: m.ID,
		Damage:    dmg,
	})
	handler.BroadcastArena(s.deps, p.ArenaID, handler.BuildPlayerHit(p, m.ID, dmg))
}

// Damage applies a player hit. False when the monster is gone or already in
// its death sequence.
func (s *MonsterSystem) Damage(monsterID int32, dmg int, bySession uint64) bool {
	m := s.deps.World.GetMonster(monsterID)
	if m == nil || !m.Active || m.State == world.StateDying || m.State == world.StateDead {
		return false
	}
	m.HP -= dmg
	handler.BroadcastArena(s.deps, m.ArenaID, handler.BuildMonsterHit(m, dmg, bySession))
	if m.HP <= 0 {
		m.HP = 0
		s.startDying(m, bySession)
		return true
	}
	// Getting hit aggroes a flyer onto the attacker.
	if variants[m.Template.Variant].canChase &&
		(m.State == world.StateIdle || m.State == world.StatePatrolling) {
		if p := s.deps.World.GetBySession(bySession); p != nil && !p.Dead && p.ArenaID == m.ArenaID {
			m.Target = bySession
			m.EnterState(world.StateChasing)
		}
	}
	return true
}

// Kill forces the death sequence regardless of remaining HP.
func (s *MonsterSystem) Kill(monsterID int32, bySession uint64) bool {
	m := s.deps.World.GetMonster(monsterID)
	if m == nil || !m.Active || m.State == world.StateDying || m.State == world.StateDead {
		return false
	}
	m.HP = 0
	s.startDying(m, bySession)
	return true
}

// startDying begins the death sequence exactly once; re-triggers on an
// already dying monster are no-ops.
func (s *MonsterSystem) startDying(m *world.MonsterInfo, killer uint64) {
	if m.State == world.StateDying || m.State == world.StateDead {
		return
	}
	m.KilledBy = killer
	m.VelX = 0
	m.VelY = 0
	m.EnterState(world.StateDying)

	cause := handler.CauseLifetime
	score := 0
	if killer != 0 {
		cause = handler.CausePlayer
		score = m.Template.KillScore
	}
	handler.BroadcastArena(s.deps, m.ArenaID, handler.BuildMonsterDied(m.ID, cause, killer, score))
}

// despawn is the single exit path, mirroring the bubble manager: remove from
// the active set, release the pool slot, tell the world how it ended.
func (s *MonsterSystem) despawn(m *world.MonsterInfo) {
	if !m.Active {
		return
	}
	m.Active = false

	s.deps.World.RemoveMonster(m.ID)
	s.pool.Release(m.Handle)

	if m.KilledBy != 0 {
		event.Emit(s.deps.Bus, event.MonsterKilled{
			MonsterID: m.ID,
			TypeID:    m.TypeID,
			ArenaID:   m.ArenaID,
			BySession: m.KilledBy,
			KillScore: m.Template.KillScore,
		})
	} else {
		event.Emit(s.deps.Bus, event.MonsterExpired{
			MonsterID: m.ID,
			TypeID:    m.TypeID,
			ArenaID:   m.ArenaID,
		})
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
