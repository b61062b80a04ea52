package system

import (
	"math"
	"time"

	"github.com/grottogame/server/internal/core/event"
	coresys "github.com/grottogame/server/internal/core/system"
	"github.com/grottogame/server/internal/handler"
)

// ScoreSystem turns pop and kill events into run score. Awards apply as the
// events dispatch; the PostUpdate pass coalesces them into one score packet
// per player per tick. Phase 3 (PostUpdate).
type ScoreSystem struct {
	deps    *handler.Deps
	touched map[uint64]int // session → delta accumulated this tick
	order   []uint64       // first-touch order, for deterministic broadcast
}

func NewScoreSystem(deps *handler.Deps) *ScoreSystem {
	s := &ScoreSystem{
		deps:    deps,
		touched: make(map[uint64]int),
	}
	event.Subscribe(deps.Bus, func(ev event.BubblePopped) {
		s.award(ev.BySession, ev.PopScore, true)
	})
	event.Subscribe(deps.Bus, func(ev event.MonsterKilled) {
		s.award(ev.BySession, ev.KillScore, false)
	})
	return s
}

// award applies one difficulty-scaled delta. The earner may have logged off
// between emit and dispatch; that forfeits the points.
func (s *ScoreSystem) award(session uint64, base int, pop bool) {
	p := s.deps.World.GetBySession(session)
	if p == nil || session == 0 {
		return
	}
	delta := int(math.Round(float64(base) * s.deps.World.Difficulty()))
	p.Score += delta
	if pop {
		p.Pops++
	} else {
		p.Kills++
	}
	p.Dirty = true

	if _, seen := s.touched[session]; !seen {
		s.order = append(s.order, session)
	}
	s.touched[session] += delta
}

func (s *ScoreSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *ScoreSystem) Update(_ time.Duration) {
	if len(s.order) == 0 {
		return
	}
	for _, session := range s.order {
		p := s.deps.World.GetBySession(session)
		if p == nil {
			continue
		}
		delta := s.touched[session]
		event.Emit(s.deps.Bus, event.ScoreChanged{
			SessionID: session,
			Score:     p.Score,
			Delta:     delta,
		})
		handler.BroadcastArena(s.deps, p.ArenaID, handler.BuildScore(session, p.Score, delta))
	}
	s.touched = make(map[uint64]int)
	s.order = s.order[:0]
}
