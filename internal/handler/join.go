package handler

import (
	"fmt"
	"time"

	"github.com/grottogame/server/internal/net"
	"github.com/grottogame/server/internal/net/packet"
	"github.com/grottogame/server/internal/world"
	"go.uber.org/zap"
)

// HandleJoin processes C_JOIN: arena ID + display name. Places the player
// at a spawn point, snapshots the arena to them, and announces them to
// everyone already inside.
func HandleJoin(sess *net.Session, r *packet.Reader, deps *Deps) {
	arenaID := int16(r.ReadH())
	name := r.ReadS()

	arena := deps.Arenas.Get(arenaID)
	if arena == nil {
		deps.Log.Warn("join to unknown arena",
			zap.Int16("arena", arenaID), zap.Uint64("session", sess.ID))
		SendDisconnect(sess, "unknown arena")
		sess.Close()
		return
	}

	if name == "" {
		name = sess.AccountName
	}
	// Display names are unique in the world; dedupe with a numeric tag.
	if deps.World.GetByName(name) != nil {
		name = fmt.Sprintf("%s_%d", name, sess.ID)
	}

	spawn := arena.PlayerSpawns[deps.World.RNG().Intn(len(arena.PlayerSpawns))]

	p := &world.PlayerInfo{
		SessionID:   sess.ID,
		Session:     sess,
		Account:     sess.AccountName,
		Name:        name,
		ArenaID:     arenaID,
		X:           spawn.X,
		Y:           spawn.Y,
		FacingRight: true,
		Grounded:    true,
		HP:          deps.Config.Game.PlayerMaxHP,
		MaxHP:       deps.Config.Game.PlayerMaxHP,
		StartedAt:   time.Now(),
	}

	// Announce to the arena before adding, so the joiner is not told
	// about themselves twice.
	BroadcastArena(deps, arenaID, BuildPlayerEnter(p))

	deps.World.AddPlayer(p)
	sess.PlayerName = name
	sess.SetState(packet.StateInArena)

	SendJoinOK(sess, deps, p)

	deps.Log.Info("player joined",
		zap.String("name", name),
		zap.Int16("arena", arenaID),
		zap.Uint64("session", sess.ID),
	)
}
