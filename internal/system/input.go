package system

import (
	"context"
	"time"

	coresys "github.com/grottogame/server/internal/core/system"
	"github.com/grottogame/server/internal/handler"
	"github.com/grottogame/server/internal/net"
	"github.com/grottogame/server/internal/net/packet"
	"github.com/grottogame/server/internal/persist"
	"github.com/grottogame/server/internal/world"
	"go.uber.org/zap"
)

// InputSystem adopts new sessions, reaps dead ones, and drains packet queues
// through the packet registry. Phase 0 (Input), after event dispatch.
type InputSystem struct {
	netServer  *net.Server
	registry   *packet.Registry
	deps       *handler.Deps
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(netServer *net.Server, registry *packet.Registry, deps *handler.Deps, maxPerTick int, log *zap.Logger) *InputSystem {
	return &InputSystem{
		netServer:  netServer,
		registry:   registry,
		deps:       deps,
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	store := s.deps.Sessions

	// Accept new sessions
	for {
		select {
		case sess := <-s.netServer.NewSessions():
			store.Add(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	// Drop sessions other code already reported dead
	for {
		select {
		case id := <-s.netServer.DeadSessions():
			store.Remove(id)
		default:
			goto doneDead
		}
	}
doneDead:

	// Drain packets from each session (up to maxPerTick per session).
	// Iterate a snapshot: reapSession edits the store mid-loop.
	sessions := append([]*net.Session(nil), store.All()...)
	for _, sess := range sessions {
		if sess.IsClosed() {
			// Drain any remaining packets BEFORE cleanup (e.g. C_QUIT sent
			// just before the socket dropped).
			for i := 0; i < s.maxPerTick; i++ {
				select {
				case data := <-sess.InQueue:
					if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
						s.log.Debug("packet dispatch failed (disconnecting)",
							zap.Uint64("session", sess.ID),
							zap.Error(err),
						)
					}
				default:
					goto doneClosing
				}
			}
		doneClosing:
			sess.FlushOutput()
			reapSession(s.deps, sess)
			s.netServer.NotifyDead(sess.ID)
			continue
		}

		processed := false
		for i := 0; i < s.maxPerTick; i++ {
			select {
			case data := <-sess.InQueue:
				processed = true
				if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
					s.log.Debug("packet dispatch failed",
						zap.Uint64("session", sess.ID),
						zap.Error(err),
					)
				}
			default:
				goto nextSession
			}
		}
	nextSession:
		if processed && sess.State() == packet.StateInArena {
			if p := s.deps.World.GetBySession(sess.ID); p != nil {
				p.Dirty = true
			}
		}
	}

	// Early flush: packets produced during input (join replies, broadcasts)
	// reach the OutQueue now, so the writeLoop can send while the simulation
	// phases run. SnapshotSystem flushes again after Output.
	for _, sess := range store.All() {
		sess.FlushOutput()
	}
}

// reapSession tears down a closed session: final run persisted, player
// removed from the world, departure broadcast, store entry dropped. Called
// from InputSystem at tick start and CleanupSystem for mid-tick deaths.
func reapSession(deps *handler.Deps, sess *net.Session) {
	p := deps.World.RemovePlayer(sess.ID)
	if p != nil {
		persistRun(deps, p, false)
		handler.BroadcastArena(deps, p.ArenaID, handler.BuildPlayerLeave(p.SessionID))
		deps.Log.Info("player left",
			zap.String("player", p.Name),
			zap.Int16("arena", p.ArenaID),
			zap.Int("score", p.Score),
		)
	}
	deps.Sessions.Remove(sess.ID)
}

// persistRun writes one finished life to the runs table. Zero-activity
// disconnect runs are skipped; deaths always count.
func persistRun(deps *handler.Deps, p *world.PlayerInfo, died bool) {
	if deps.ScoreRepo == nil {
		return
	}
	if !died && p.Score == 0 && p.Pops == 0 && p.Kills == 0 {
		return
	}
	deaths := 0
	if died {
		deaths = 1
	}
	row := &persist.RunRow{
		Account:   p.Account,
		Player:    p.Name,
		ArenaID:   p.ArenaID,
		Score:     p.Score,
		Pops:      p.Pops,
		Kills:     p.Kills,
		Deaths:    deaths,
		BestCombo: p.BestCombo,
		Duration:  time.Since(p.StartedAt),
		EndedAt:   time.Now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := deps.ScoreRepo.InsertRun(ctx, row); err != nil {
		deps.Log.Error("run save failed",
			zap.String("player", p.Name),
			zap.Int("score", p.Score),
			zap.Error(err),
		)
	}
}
