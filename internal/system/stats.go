package system

import (
	"context"
	"time"

	"github.com/grottogame/server/internal/core/event"
	coresys "github.com/grottogame/server/internal/core/system"
	"github.com/grottogame/server/internal/handler"
	"github.com/grottogame/server/internal/persist"
	"go.uber.org/zap"
)

// A failed flush keeps its batch for the next try; past this size the
// oldest entries are shed instead of growing without bound.
const statsBufferCap = 4096

// StatsSystem journals gameplay events into the run_events table in batched
// transactions, and keeps account last-seen stamps fresh while sessions stay
// online. Phase 5 (Persist).
type StatsSystem struct {
	deps      *handler.Deps
	buf       []persist.RunEvent
	flushEach int // ticks between journal flushes
	saveEach  int // ticks between last-seen refreshes
	flushTick int
	saveTick  int
	log       *zap.Logger
}

func NewStatsSystem(deps *handler.Deps, flushEach, saveEach int) *StatsSystem {
	if flushEach < 1 {
		flushEach = 1
	}
	s := &StatsSystem{
		deps:      deps,
		flushEach: flushEach,
		saveEach:  saveEach,
		log:       deps.Log,
	}
	event.Subscribe(deps.Bus, func(ev event.BubblePopped) {
		s.record("pop", ev.BySession, ev.ArenaID, ev.TypeID, ev.PopScore)
	})
	event.Subscribe(deps.Bus, func(ev event.MonsterKilled) {
		s.record("kill", ev.BySession, ev.ArenaID, ev.TypeID, ev.KillScore)
	})
	event.Subscribe(deps.Bus, func(ev event.PlayerDied) {
		s.record("death", ev.SessionID, ev.ArenaID, "", ev.Score)
	})
	event.Subscribe(deps.Bus, func(ev event.PlayerJumped) {
		s.record("jump", ev.SessionID, ev.ArenaID, "", 0)
	})
	event.Subscribe(deps.Bus, func(ev event.PlayerDashed) {
		s.record("dash", ev.SessionID, ev.ArenaID, "", 0)
	})
	event.Subscribe(deps.Bus, func(ev event.MonsterSpawned) {
		s.append(persist.RunEvent{
			Kind:    "spawn",
			ArenaID: ev.ArenaID,
			Subject: ev.TypeID,
			At:      time.Now(),
		})
	})
	return s
}

func (s *StatsSystem) record(kind string, session uint64, arenaID int16, subject string, value int) {
	p := s.deps.World.GetBySession(session)
	if p == nil {
		return // player already gone; nothing to attribute
	}
	s.append(persist.RunEvent{
		Kind:    kind,
		Account: p.Account,
		ArenaID: arenaID,
		Subject: subject,
		Value:   value,
		At:      time.Now(),
	})
}

func (s *StatsSystem) append(ev persist.RunEvent) {
	if len(s.buf) >= statsBufferCap {
		s.log.Warn("stats buffer full, shedding oldest", zap.Int("cap", statsBufferCap))
		s.buf = s.buf[1:]
	}
	s.buf = append(s.buf, ev)
}

func (s *StatsSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *StatsSystem) Update(_ time.Duration) {
	s.flushTick++
	if s.flushTick >= s.flushEach {
		s.flushTick = 0
		s.Flush()
	}

	if s.saveEach > 0 {
		s.saveTick++
		if s.saveTick >= s.saveEach {
			s.saveTick = 0
			s.refreshLastSeen()
		}
	}
}

// Flush writes the buffered journal in one transaction. On failure the
// batch stays put and the next interval retries it.
func (s *StatsSystem) Flush() {
	if len(s.buf) == 0 || s.deps.StatsRepo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.deps.StatsRepo.WriteBatch(ctx, s.buf); err != nil {
		s.log.Warn("stats flush failed, will retry",
			zap.Int("events", len(s.buf)),
			zap.Error(err),
		)
		return
	}
	s.buf = s.buf[:0]
}

func (s *StatsSystem) refreshLastSeen() {
	if s.deps.AccountRepo == nil {
		return
	}
	for _, sess := range s.deps.Sessions.All() {
		if sess.AccountName == "" {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := s.deps.AccountRepo.UpdateLastSeen(ctx, sess.AccountName, sess.IP); err != nil {
			s.log.Warn("last-seen refresh failed",
				zap.String("account", sess.AccountName),
				zap.Error(err),
			)
		}
		cancel()
	}
}
