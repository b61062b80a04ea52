package system

import (
	"time"

	coresys "github.com/grottogame/server/internal/core/system"
	"github.com/grottogame/server/internal/handler"
	"github.com/grottogame/server/internal/net"
)

// CleanupSystem reaps sessions that died mid-tick — typically a write
// backpressure disconnect during the Output flush — so their players do not
// linger in the world into the next tick. Phase 6 (Cleanup).
type CleanupSystem struct {
	deps      *handler.Deps
	netServer *net.Server
}

func NewCleanupSystem(deps *handler.Deps, netServer *net.Server) *CleanupSystem {
	return &CleanupSystem{deps: deps, netServer: netServer}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	var dead []*net.Session
	for _, sess := range s.deps.Sessions.All() {
		if sess.IsClosed() {
			dead = append(dead, sess)
		}
	}
	for _, sess := range dead {
		reapSession(s.deps, sess)
		s.netServer.NotifyDead(sess.ID)
	}
}
