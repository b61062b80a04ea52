package system

import (
	"encoding/json"
	"sort"
	"time"

	coresys "github.com/grottogame/server/internal/core/system"
	"github.com/grottogame/server/internal/handler"
	"github.com/grottogame/server/internal/spectate"
	"github.com/grottogame/server/internal/world"
)

// SpectateSystem summarizes the tick for the websocket feed: arena
// populations, difficulty, and the current score leaders. Phase 4 (Output),
// registered after SnapshotSystem. Only wired when spectating is enabled.
type SpectateSystem struct {
	deps  *handler.Deps
	hub   *spectate.Hub
	every int
	ticks int
}

func NewSpectateSystem(deps *handler.Deps, hub *spectate.Hub, every int) *SpectateSystem {
	if every < 1 {
		every = 1
	}
	return &SpectateSystem{deps: deps, hub: hub, every: every}
}

func (s *SpectateSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *SpectateSystem) Update(_ time.Duration) {
	s.ticks++
	if s.ticks < s.every {
		return
	}
	s.ticks = 0

	data, err := json.Marshal(s.buildFrame())
	if err != nil {
		s.deps.Log.Warn("spectate frame marshal failed")
		return
	}
	s.hub.Broadcast(data)
}

const topEntries = 5

func (s *SpectateSystem) buildFrame() *spectate.Frame {
	ws := s.deps.World
	f := &spectate.Frame{
		At:         time.Now().UnixMilli(),
		Difficulty: ws.Difficulty(),
		Players:    len(ws.Players()),
	}

	for _, arena := range s.deps.Arenas.All() {
		f.Arenas = append(f.Arenas, spectate.ArenaFrame{
			ID:       arena.ID,
			Name:     arena.Name,
			Players:  len(ws.PlayersInArena(arena.ID)),
			Bubbles:  ws.ArenaBubbleCount(arena.ID),
			Monsters: ws.ArenaMonsterCount(arena.ID),
		})
	}

	leaders := append([]*world.PlayerInfo(nil), ws.Players()...)
	sort.Slice(leaders, func(i, j int) bool {
		if leaders[i].Score != leaders[j].Score {
			return leaders[i].Score > leaders[j].Score
		}
		return leaders[i].Name < leaders[j].Name
	})
	for i, p := range leaders {
		if i == topEntries {
			break
		}
		f.Top = append(f.Top, spectate.ScoreEntry{Name: p.Name, Score: p.Score, Combo: p.Combo})
	}
	return f
}
