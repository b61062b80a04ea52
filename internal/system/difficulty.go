package system

import (
	"time"

	"github.com/grottogame/server/internal/core/event"
	coresys "github.com/grottogame/server/internal/core/system"
	"github.com/grottogame/server/internal/handler"
	"go.uber.org/zap"
)

// DifficultySystem consults the Lua ramp curve on a fixed cadence and feeds
// the result through the monotonic difficulty scalar. On a change it retunes
// bubble weights and tells every client. Phase 1 (PreUpdate).
type DifficultySystem struct {
	deps     *handler.Deps
	interval float64 // seconds between curve consultations
	timer    float64
	elapsed  float64 // seconds since boot, the curve's time axis
}

func NewDifficultySystem(deps *handler.Deps, interval time.Duration) *DifficultySystem {
	return &DifficultySystem{
		deps:     deps,
		interval: interval.Seconds(),
	}
}

func (s *DifficultySystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *DifficultySystem) Update(dt time.Duration) {
	step := dt.Seconds()
	s.elapsed += step
	s.timer += step
	if s.timer < s.interval {
		return
	}
	s.timer = 0

	ws := s.deps.World
	total := 0
	for _, p := range ws.Players() {
		total += p.Score
	}

	old := ws.Difficulty()
	target := s.deps.Scripting.DifficultyTarget(s.elapsed, total)
	if !ws.RaiseDifficulty(target) {
		return
	}
	now := ws.Difficulty()
	s.retuneWeights(now)

	event.Emit(s.deps.Bus, event.DifficultyChanged{Old: old, New: now})
	pkt := handler.BuildDifficulty(old, now)
	for _, p := range ws.Players() {
		p.Session.Send(pkt)
	}
	s.deps.Log.Info("difficulty raised",
		zap.Float64("from", old),
		zap.Float64("to", now),
		zap.Int("score", total),
	)
}

// retuneWeights applies the Lua per-type runtime multipliers. A nil table
// leaves the current tuning alone.
func (s *DifficultySystem) retuneWeights(difficulty float64) {
	mults := s.deps.Scripting.TuneWeights(difficulty)
	if mults == nil {
		return
	}
	for id, mult := range mults {
		tpl := s.deps.Bubbles.Get(id)
		if tpl == nil {
			s.deps.Log.Warn("tune_weights returned unknown bubble type", zap.String("type", id))
			continue
		}
		if mult < 0 {
			mult = 0
		}
		tpl.RuntimeMult = mult
	}
}
