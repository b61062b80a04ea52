package system

import (
	"errors"
	"math"
	"time"

	"github.com/grottogame/server/internal/core/event"
	"github.com/grottogame/server/internal/core/pool"
	coresys "github.com/grottogame/server/internal/core/system"
	"github.com/grottogame/server/internal/data"
	"github.com/grottogame/server/internal/handler"
	"github.com/grottogame/server/internal/world"
	"go.uber.org/zap"
)

// Sideways pull per unit of drift seed, units/second.
const bubbleDriftPull = 0.35

// BubbleSystem is the bubble lifecycle manager: it owns the bubble pool and
// the weighted selector, auto-spawns from arena vents, floats live bubbles,
// and runs every despawn through a single path. Phase 2 (Update).
//
// Implements handler.BubbleOps.
type BubbleSystem struct {
	deps     *handler.Deps
	pool     *pool.Pool[world.BubbleInfo]
	selector *world.Selector

	spawnInterval float64 // seconds between auto-spawn attempts per arena
	spawnTimers   map[int16]float64

	log *zap.Logger
}

func NewBubbleSystem(deps *handler.Deps) *BubbleSystem {
	s := &BubbleSystem{
		deps:          deps,
		pool:          pool.New[world.BubbleInfo](),
		selector:      world.NewSelector(deps.World.RNG()),
		spawnInterval: deps.Config.Game.SpawnInterval.Seconds(),
		spawnTimers:   make(map[int16]float64),
		log:           deps.Log,
	}
	s.registerTypes()
	return s
}

// registerTypes builds the pool buckets from the bubble table. A template
// whose hatch monster is unknown is a data bug: logged, omitted, the rest of
// the table still loads.
func (s *BubbleSystem) registerTypes() {
	cfg := s.deps.Config.Game
	for _, tpl := range s.deps.Bubbles.All() {
		if tpl.MonsterID != "" && s.deps.Monsters.Get(tpl.MonsterID) == nil {
			s.log.Warn("bubble type dropped: unknown hatch monster",
				zap.String("type", tpl.ID),
				zap.String("monster", tpl.MonsterID),
			)
			continue
		}
		ceiling := tpl.Ceiling
		if ceiling <= 0 {
			ceiling = cfg.DefaultPoolCeiling
		}
		prewarm := tpl.Prewarm
		if prewarm > ceiling {
			prewarm = ceiling
		}
		err := s.pool.RegisterType(tpl.ID, ceiling, prewarm,
			func() *world.BubbleInfo { return &world.BubbleInfo{} },
			(*world.BubbleInfo).Clear,
		)
		if err != nil {
			s.log.Warn("bubble type dropped", zap.String("type", tpl.ID), zap.Error(err))
		}
	}
}

func (s *BubbleSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *BubbleSystem) Update(dt time.Duration) {
	step := dt.Seconds()

	for _, arena := range s.deps.Arenas.All() {
		s.autoSpawn(arena, step)
	}

	// Snapshot: despawns edit the active list mid-walk.
	bubbles := append([]*world.BubbleInfo(nil), s.deps.World.Bubbles()...)
	for _, b := range bubbles {
		if !b.Active {
			continue
		}
		s.tickBubble(b, step)
	}
}

// bubbleCap resolves an arena's bubble population cap.
func (s *BubbleSystem) bubbleCap(arena *data.ArenaTemplate) int {
	if arena.MaxBubbles > 0 {
		return arena.MaxBubbles
	}
	return s.deps.Config.Game.MaxActiveBubbles
}

// autoSpawn advances one arena's spawn timer. When the interval elapses the
// timer resets before anything else — an attempt at capacity must not bank
// overflow and burst-fire later.
func (s *BubbleSystem) autoSpawn(arena *data.ArenaTemplate, step float64) {
	ws := s.deps.World
	if len(ws.PlayersInArena(arena.ID)) == 0 {
		return // empty arena: timer frozen, nothing spawns
	}

	s.spawnTimers[arena.ID] += step
	if s.spawnTimers[arena.ID] < s.spawnInterval {
		return
	}
	s.spawnTimers[arena.ID] = 0

	if ws.ArenaBubbleCount(arena.ID) >= s.bubbleCap(arena) {
		return
	}

	tpl, ok := s.selector.Pick(s.deps.Bubbles.All(), ws.Difficulty())
	if !ok {
		s.log.Debug("no bubble type eligible", zap.Float64("difficulty", ws.Difficulty()))
		return
	}
	x := arena.VentXMin + ws.RNG().Float64()*(arena.VentXMax-arena.VentXMin)
	s.spawnAt(arena.ID, tpl, x, arena.VentY)
}

// Spawn places a bubble of an explicit type (admin command, scripts).
// Returns nil when the arena is at capacity or the type is unknown.
func (s *BubbleSystem) Spawn(arenaID int16, typeID string, x, y float64) *world.BubbleInfo {
	arena := s.deps.Arenas.Get(arenaID)
	if arena == nil {
		return nil
	}
	if s.deps.World.ArenaBubbleCount(arenaID) >= s.bubbleCap(arena) {
		return nil
	}
	tpl := s.deps.Bubbles.Get(typeID)
	if tpl == nil {
		s.log.Warn("spawn of unknown bubble type", zap.String("type", typeID))
		return nil
	}
	return s.spawnAt(arenaID, tpl, x, y)
}

func (s *BubbleSystem) spawnAt(arenaID int16, tpl *data.BubbleTemplate, x, y float64) *world.BubbleInfo {
	h, b, err := s.pool.Acquire(tpl.ID)
	if err != nil {
		if errors.Is(err, pool.ErrExhausted) {
			s.log.Debug("bubble pool exhausted", zap.String("type", tpl.ID))
		} else {
			s.log.Warn("bubble acquire failed", zap.String("type", tpl.ID), zap.Error(err))
		}
		return nil
	}
	b.ResetForSpawn(tpl, s.deps.World.RNG())
	b.ID = world.NewBubbleID()
	b.Handle = h
	b.ArenaID = arenaID
	b.X = x
	b.Y = y

	s.deps.World.AddBubble(b)
	event.Emit(s.deps.Bus, event.BubbleSpawned{
		BubbleID: b.ID,
		TypeID:   b.TypeID,
		ArenaID:  arenaID,
		X:        x,
		Y:        y,
	})
	handler.BroadcastArena(s.deps, arenaID, handler.BuildBubbleSpawn(b))
	return b
}

// tickBubble ages, floats, and bounds-checks one bubble. Lifetime expiry
// bursts it; drifting out of the arena despawns it quietly.
func (s *BubbleSystem) tickBubble(b *world.BubbleInfo, step float64) {
	tpl := b.Template

	b.Age += step
	if b.Age >= b.Lifetime {
		s.despawn(b, handler.CauseLifetime, 0)
		return
	}

	b.VelX = tpl.WobbleAmp*math.Cos(b.WobblePhase+b.Age*tpl.WobbleFreq) + b.DriftSeed*bubbleDriftPull
	b.VelY = tpl.RiseSpeed
	b.X += b.VelX * step
	b.Y += b.VelY * step

	arena := s.deps.Arenas.Get(b.ArenaID)
	if arena != nil && !arena.InBounds(b.X, b.Y, tpl.Radius) {
		s.despawn(b, handler.CauseDrift, 0)
	}
}

// Pop bursts a bubble on a player's behalf. False when it was already gone —
// two players popping the same bubble in one tick is normal, not a fault.
func (s *BubbleSystem) Pop(bubbleID int32, bySession uint64) bool {
	b := s.deps.World.GetBubble(bubbleID)
	if b == nil || !b.Active {
		return false
	}
	s.despawn(b, handler.CausePlayer, bySession)
	return true
}

// despawn is the single exit path for a live bubble: active set and pool
// stay disjoint because removal and release only ever happen here. The
// Active flag flips false exactly once; a second call is a no-op.
func (s *BubbleSystem) despawn(b *world.BubbleInfo, cause byte, bySession uint64) {
	if !b.Active {
		return
	}
	b.Active = false

	s.deps.World.RemoveBubble(b.ID)
	s.pool.Release(b.Handle)

	if cause == handler.CauseDrift {
		event.Emit(s.deps.Bus, event.BubbleDrifted{
			BubbleID: b.ID,
			TypeID:   b.TypeID,
			ArenaID:  b.ArenaID,
		})
	} else {
		event.Emit(s.deps.Bus, event.BubbleBurst{
			BubbleID:  b.ID,
			TypeID:    b.TypeID,
			Subtype:   b.Template.Subtype,
			MonsterID: b.Template.MonsterID,
			ArenaID:   b.ArenaID,
			X:         b.X,
			Y:         b.Y,
			BySession: bySession,
		})
		if bySession != 0 {
			event.Emit(s.deps.Bus, event.BubblePopped{
				BubbleID:  b.ID,
				TypeID:    b.TypeID,
				ArenaID:   b.ArenaID,
				BySession: bySession,
				PopScore:  b.Template.PopScore,
			})
		}
	}
	handler.BroadcastArena(s.deps, b.ArenaID, handler.BuildBubbleBurst(b.ID, cause, bySession))
}
