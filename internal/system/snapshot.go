package system

import (
	"time"

	coresys "github.com/grottogame/server/internal/core/system"
	"github.com/grottogame/server/internal/handler"
)

// SnapshotSystem rebroadcasts authoritative entity state on a fixed cadence
// and flushes every session's output buffer at the end of the tick. Clients
// interpolate between snapshots. Phase 4 (Output).
type SnapshotSystem struct {
	deps  *handler.Deps
	every int // ticks between snapshots
	ticks int
}

func NewSnapshotSystem(deps *handler.Deps, every int) *SnapshotSystem {
	if every < 1 {
		every = 1
	}
	return &SnapshotSystem{deps: deps, every: every}
}

func (s *SnapshotSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *SnapshotSystem) Update(_ time.Duration) {
	s.ticks++
	if s.ticks >= s.every {
		s.ticks = 0
		s.broadcastSnapshots()
	}

	// The tick's final flush: everything queued by any phase goes out now.
	for _, sess := range s.deps.Sessions.All() {
		sess.FlushOutput()
	}
}

func (s *SnapshotSystem) broadcastSnapshots() {
	ws := s.deps.World
	for _, arena := range s.deps.Arenas.All() {
		members := ws.PlayersInArena(arena.ID)
		if len(members) == 0 {
			continue
		}
		for _, p := range members {
			if p.Dead {
				continue
			}
			pkt := handler.BuildPlayerState(p)
			for _, viewer := range members {
				viewer.Session.Send(pkt)
			}
		}
		for _, b := range ws.Bubbles() {
			if b.ArenaID != arena.ID || !b.Active {
				continue
			}
			pkt := handler.BuildBubbleState(b)
			for _, viewer := range members {
				viewer.Session.Send(pkt)
			}
		}
		for _, m := range ws.Monsters() {
			if m.ArenaID != arena.ID || !m.Active {
				continue
			}
			pkt := handler.BuildMonsterState(m)
			for _, viewer := range members {
				viewer.Session.Send(pkt)
			}
		}
	}
}
