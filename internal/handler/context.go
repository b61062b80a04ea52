package handler

import (
	"github.com/grottogame/server/internal/config"
	"github.com/grottogame/server/internal/core/event"
	"github.com/grottogame/server/internal/data"
	"github.com/grottogame/server/internal/net"
	"github.com/grottogame/server/internal/net/packet"
	"github.com/grottogame/server/internal/persist"
	"github.com/grottogame/server/internal/scripting"
	"github.com/grottogame/server/internal/world"
	"go.uber.org/zap"
)

// BubbleOps is the slice of the bubble lifecycle manager handlers may
// touch. Implemented by system.BubbleSystem; an interface here keeps the
// packages from importing each other.
type BubbleOps interface {
	// Spawn returns nil when the arena is at capacity or the type is unknown.
	Spawn(arenaID int16, typeID string, x, y float64) *world.BubbleInfo
	// Pop bursts a bubble on a player's behalf. False if it was already gone.
	Pop(bubbleID int32, bySession uint64) bool
}

// MonsterOps is the monster lifecycle surface for handlers.
type MonsterOps interface {
	// Damage applies a hit; returns false if the monster is not hittable.
	Damage(monsterID int32, dmg int, bySession uint64) bool
	// Kill forces the death sequence regardless of remaining HP.
	Kill(monsterID int32, bySession uint64) bool
}

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	AccountRepo *persist.AccountRepo
	ScoreRepo   *persist.ScoreRepo
	StatsRepo   *persist.StatsRepo
	Config      *config.Config
	Log         *zap.Logger
	World       *world.State
	Scripting   *scripting.Engine
	Bus         *event.Bus
	Sessions    *net.SessionStore

	Bubbles   *data.BubbleTable
	Monsters  *data.MonsterTable
	Arenas    *data.ArenaTable
	Abilities *data.AbilityTable

	BubbleOps  BubbleOps
	MonsterOps MonsterOps
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	// Handshake phase
	reg.Register(packet.C_OPCODE_LOGIN,
		[]packet.SessionState{packet.StateHandshake},
		func(sess any, r *packet.Reader) {
			HandleLogin(sess.(*net.Session), r, deps)
		},
	)

	// Authenticated, not yet in an arena
	reg.Register(packet.C_OPCODE_JOIN,
		[]packet.SessionState{packet.StateAuthed},
		func(sess any, r *packet.Reader) {
			HandleJoin(sess.(*net.Session), r, deps)
		},
	)

	// In-arena phase
	inArena := []packet.SessionState{packet.StateInArena}

	reg.Register(packet.C_OPCODE_MOVE, inArena,
		func(sess any, r *packet.Reader) {
			HandleMove(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_EVENT, inArena,
		func(sess any, r *packet.Reader) {
			HandleEvent(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_POP, inArena,
		func(sess any, r *packet.Reader) {
			HandlePop(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_HIT, inArena,
		func(sess any, r *packet.Reader) {
			HandleHit(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_ABILITY, inArena,
		func(sess any, r *packet.Reader) {
			HandleAbility(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_ADMIN, inArena,
		func(sess any, r *packet.Reader) {
			HandleAdmin(sess.(*net.Session), r, deps)
		},
	)

	// Allowed both in and out of an arena
	anyAuthed := []packet.SessionState{packet.StateAuthed, packet.StateInArena}

	reg.Register(packet.C_OPCODE_PING, anyAuthed,
		func(sess any, r *packet.Reader) {
			HandlePing(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_SCORES, anyAuthed,
		func(sess any, r *packet.Reader) {
			HandleScores(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_QUIT, anyAuthed,
		func(sess any, r *packet.Reader) {
			HandleQuit(sess.(*net.Session), r, deps)
		},
	)
}
