package system

import (
	"math"
	"time"

	"github.com/grottogame/server/internal/core/event"
	coresys "github.com/grottogame/server/internal/core/system"
	"github.com/grottogame/server/internal/handler"
	"github.com/grottogame/server/internal/world"
	"go.uber.org/zap"
)

// PlayerSystem runs per-player housekeeping: cooldown and invulnerability
// clocks, external force decay, death and respawn. Phase 2 (Update),
// registered after MonsterSystem so damage dealt this tick can kill this
// tick.
type PlayerSystem struct {
	deps *handler.Deps
}

func NewPlayerSystem(deps *handler.Deps) *PlayerSystem {
	return &PlayerSystem{deps: deps}
}

func (s *PlayerSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *PlayerSystem) Update(dt time.Duration) {
	step := dt.Seconds()
	cfg := s.deps.Config.Game

	// force_decay is the fraction kept per second; fold it down to a tick.
	decay := math.Pow(cfg.ForceDecay, step)

	for _, p := range s.deps.World.Players() {
		if p.MeleeCD > 0 {
			p.MeleeCD = max(0, p.MeleeCD-step)
		}
		for i := range p.AbilityCD {
			if p.AbilityCD[i] > 0 {
				p.AbilityCD[i] = max(0, p.AbilityCD[i]-step)
			}
		}
		if p.InvulnTimer > 0 {
			p.InvulnTimer = max(0, p.InvulnTimer-step)
		}
		p.DecayForce(decay)

		switch {
		case !p.Dead && p.HP <= 0:
			s.kill(p)
		case p.Dead:
			p.RespawnTimer -= step
			if p.RespawnTimer <= 0 {
				s.respawn(p)
			}
		}
	}
}

// kill ends the current life: the run is journaled as it stood, the arena
// hears about it, and the respawn clock starts.
func (s *PlayerSystem) kill(p *world.PlayerInfo) {
	p.HP = 0
	p.Dead = true
	p.Deaths++
	p.Combo = 0
	p.RespawnTimer = s.deps.Config.Game.RespawnDelay.Seconds()
	p.Dirty = true

	event.Emit(s.deps.Bus, event.PlayerDied{
		SessionID: p.SessionID,
		ArenaID:   p.ArenaID,
		Score:     p.Score,
	})
	handler.BroadcastArena(s.deps, p.ArenaID, handler.BuildPlayerDied(p.SessionID, p.Score))
	persistRun(s.deps, p, true)

	s.deps.Log.Info("player died",
		zap.String("player", p.Name),
		zap.Int16("arena", p.ArenaID),
		zap.Int("score", p.Score),
	)
}

// respawn starts a fresh life at a spawn point: full HP, a grace window,
// and a zeroed run.
func (s *PlayerSystem) respawn(p *world.PlayerInfo) {
	cfg := s.deps.Config.Game
	oldScore := p.Score

	if arena := s.deps.Arenas.Get(p.ArenaID); arena != nil {
		sp := arena.PlayerSpawns[s.deps.World.RNG().Intn(len(arena.PlayerSpawns))]
		p.X = sp.X
		p.Y = sp.Y
	}
	p.VelX, p.VelY = 0, 0
	p.ForceX, p.ForceY = 0, 0
	p.HP = cfg.PlayerMaxHP
	p.MaxHP = cfg.PlayerMaxHP
	p.Dead = false
	p.Grounded = true
	p.Crouching = false
	p.RespawnTimer = 0
	p.InvulnTimer = cfg.InvulnDuration.Seconds()

	// A life is a run: the next one starts from zero.
	p.Score = 0
	p.Combo = 0
	p.Pops = 0
	p.Kills = 0
	p.BestCombo = 0
	p.StartedAt = time.Now()
	p.Dirty = true

	if oldScore != 0 {
		event.Emit(s.deps.Bus, event.ScoreChanged{SessionID: p.SessionID, Score: 0, Delta: -oldScore})
	}
	handler.BroadcastArena(s.deps, p.ArenaID, handler.BuildPlayerRespawn(p, cfg.InvulnDuration.Seconds()))
	handler.BroadcastArena(s.deps, p.ArenaID, handler.BuildScore(p.SessionID, 0, -oldScore))
}
