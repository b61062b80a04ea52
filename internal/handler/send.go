package handler

import (
	"github.com/grottogame/server/internal/net"
	"github.com/grottogame/server/internal/net/packet"
	"github.com/grottogame/server/internal/persist"
	"github.com/grottogame/server/internal/world"
)

// Login result codes.
const (
	LoginOK          byte = 0
	LoginBadPassword byte = 1
	LoginBanned      byte = 2
	LoginBadName     byte = 3
	LoginAlreadyOn   byte = 4
	LoginError       byte = 5
)

// Player motion event kinds (C_EVENT / S_PLAYER_EVENT payloads).
const (
	EventJump   byte = 1
	EventLand   byte = 2
	EventDash   byte = 3
	EventCrouch byte = 4
)

// Burst/death causes on the wire.
const (
	CausePlayer   byte = 0
	CauseLifetime byte = 1
	CauseDrift    byte = 2 // floated out of bounds, no burst effect
)

// BroadcastArena queues the same packet to every session in the arena.
func BroadcastArena(deps *Deps, arenaID int16, data []byte) {
	for _, p := range deps.World.PlayersInArena(arenaID) {
		p.Session.Send(data)
	}
}

func playerFlags(p *world.PlayerInfo) byte {
	var f byte
	if p.Grounded {
		f |= 0x01
	}
	if p.FacingRight {
		f |= 0x02
	}
	if p.Crouching {
		f |= 0x04
	}
	if p.Invulnerable() {
		f |= 0x08
	}
	return f
}

func SendLoginResult(sess *net.Session, result byte, msg string) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_LOGIN_RESULT)
	w.WriteC(result)
	w.WriteS(msg)
	w.WriteQ(sess.ID)
	sess.Send(w.Bytes())
}

// SendJoinOK sends the full arena snapshot to a joining player: everyone
// already there, every live bubble and monster, and the difficulty.
func SendJoinOK(sess *net.Session, deps *Deps, me *world.PlayerInfo) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_JOIN_OK)
	w.WriteH(uint16(me.ArenaID))
	w.WriteF(float32(deps.World.Difficulty()))
	w.WriteF(float32(me.X))
	w.WriteF(float32(me.Y))

	players := deps.World.PlayersInArena(me.ArenaID)
	w.WriteH(uint16(len(players)))
	for _, p := range players {
		w.WriteQ(p.SessionID)
		w.WriteS(p.Name)
		w.WriteF(float32(p.X))
		w.WriteF(float32(p.Y))
		w.WriteH(uint16(p.HP))
		w.WriteH(uint16(p.MaxHP))
		w.WriteD(int32(p.Score))
		w.WriteC(playerFlags(p))
	}

	var bubbles []*world.BubbleInfo
	for _, b := range deps.World.Bubbles() {
		if b.ArenaID == me.ArenaID {
			bubbles = append(bubbles, b)
		}
	}
	w.WriteH(uint16(len(bubbles)))
	for _, b := range bubbles {
		w.WriteD(b.ID)
		w.WriteS(b.TypeID)
		w.WriteF(float32(b.X))
		w.WriteF(float32(b.Y))
		w.WriteF(float32(b.Template.Radius))
	}

	var monsters []*world.MonsterInfo
	for _, m := range deps.World.Monsters() {
		if m.ArenaID == me.ArenaID {
			monsters = append(monsters, m)
		}
	}
	w.WriteH(uint16(len(monsters)))
	for _, m := range monsters {
		w.WriteD(m.ID)
		w.WriteS(m.TypeID)
		w.WriteF(float32(m.X))
		w.WriteF(float32(m.Y))
		w.WriteH(uint16(m.HP))
		w.WriteC(byte(m.State))
	}

	sess.Send(w.Bytes())
}

func BuildPlayerEnter(p *world.PlayerInfo) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_PLAYER_ENTER)
	w.WriteQ(p.SessionID)
	w.WriteS(p.Name)
	w.WriteF(float32(p.X))
	w.WriteF(float32(p.Y))
	w.WriteH(uint16(p.HP))
	w.WriteH(uint16(p.MaxHP))
	return w.Bytes()
}

func BuildPlayerLeave(sessionID uint64) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_PLAYER_LEAVE)
	w.WriteQ(sessionID)
	return w.Bytes()
}

func BuildPlayerState(p *world.PlayerInfo) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_PLAYER_STATE)
	w.WriteQ(p.SessionID)
	w.WriteF(float32(p.X))
	w.WriteF(float32(p.Y))
	w.WriteF(float32(p.VelX))
	w.WriteF(float32(p.VelY))
	w.WriteC(playerFlags(p))
	w.WriteH(uint16(p.HP))
	w.WriteD(int32(p.Score))
	w.WriteF(float32(p.ForceX))
	w.WriteF(float32(p.ForceY))
	return w.Bytes()
}

func BuildPlayerEvent(sessionID uint64, kind, arg byte) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_PLAYER_EVENT)
	w.WriteQ(sessionID)
	w.WriteC(kind)
	w.WriteC(arg)
	return w.Bytes()
}

func BuildPlayerHit(p *world.PlayerInfo, monsterID int32, damage int) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_PLAYER_HIT)
	w.WriteQ(p.SessionID)
	w.WriteD(monsterID)
	w.WriteH(uint16(damage))
	w.WriteH(uint16(p.HP))
	w.WriteF(float32(p.ForceX))
	w.WriteF(float32(p.ForceY))
	return w.Bytes()
}

func BuildPlayerDied(sessionID uint64, score int) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_PLAYER_DIED)
	w.WriteQ(sessionID)
	w.WriteD(int32(score))
	return w.Bytes()
}

func BuildPlayerRespawn(p *world.PlayerInfo, invulnSecs float64) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_PLAYER_RESPAWN)
	w.WriteQ(p.SessionID)
	w.WriteF(float32(p.X))
	w.WriteF(float32(p.Y))
	w.WriteH(uint16(p.HP))
	w.WriteH(uint16(p.MaxHP))
	w.WriteF(float32(invulnSecs))
	return w.Bytes()
}

func BuildBubbleSpawn(b *world.BubbleInfo) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_BUBBLE_SPAWN)
	w.WriteD(b.ID)
	w.WriteS(b.TypeID)
	w.WriteF(float32(b.X))
	w.WriteF(float32(b.Y))
	w.WriteF(float32(b.Template.Radius))
	w.WriteF(float32(b.Template.RiseSpeed))
	return w.Bytes()
}

func BuildBubbleBurst(bubbleID int32, cause byte, bySession uint64) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_BUBBLE_BURST)
	w.WriteD(bubbleID)
	w.WriteC(cause)
	w.WriteQ(bySession)
	return w.Bytes()
}

func BuildBubbleState(b *world.BubbleInfo) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_BUBBLE_STATE)
	w.WriteD(b.ID)
	w.WriteF(float32(b.X))
	w.WriteF(float32(b.Y))
	return w.Bytes()
}

func BuildMonsterSpawn(m *world.MonsterInfo) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_MONSTER_SPAWN)
	w.WriteD(m.ID)
	w.WriteS(m.TypeID)
	w.WriteF(float32(m.X))
	w.WriteF(float32(m.Y))
	w.WriteH(uint16(m.HP))
	w.WriteH(uint16(m.Template.MaxHP))
	var variant byte
	if m.Template.Variant == "flying" {
		variant = 1
	}
	w.WriteC(variant)
	return w.Bytes()
}

func BuildMonsterState(m *world.MonsterInfo) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_MONSTER_STATE)
	w.WriteD(m.ID)
	w.WriteF(float32(m.X))
	w.WriteF(float32(m.Y))
	w.WriteC(byte(m.State))
	var facing byte
	if m.FacingRight {
		facing = 1
	}
	w.WriteC(facing)
	return w.Bytes()
}

func BuildMonsterHit(m *world.MonsterInfo, damage int, bySession uint64) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_MONSTER_HIT)
	w.WriteD(m.ID)
	w.WriteH(uint16(damage))
	w.WriteH(uint16(m.HP))
	w.WriteQ(bySession)
	return w.Bytes()
}

func BuildMonsterDied(monsterID int32, cause byte, bySession uint64, killScore int) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_MONSTER_DIED)
	w.WriteD(monsterID)
	w.WriteC(cause)
	w.WriteQ(bySession)
	w.WriteD(int32(killScore))
	return w.Bytes()
}

func BuildDifficulty(old, now float64) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_DIFFICULTY)
	w.WriteF(float32(old))
	w.WriteF(float32(now))
	return w.Bytes()
}

func BuildScore(sessionID uint64, score, delta int) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_SCORE)
	w.WriteQ(sessionID)
	w.WriteD(int32(score))
	w.WriteD(int32(delta))
	return w.Bytes()
}

func SendScores(sess *net.Session, runs []persist.RunRow) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_SCORES)
	w.WriteH(uint16(len(runs)))
	for _, run := range runs {
		w.WriteS(run.Player)
		w.WriteD(int32(run.Score))
		w.WriteD(int32(run.Pops))
		w.WriteD(int32(run.Kills))
	}
	sess.Send(w.Bytes())
}

func SendPong(sess *net.Session, echo int32, serverMilli int64) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_PONG)
	w.WriteD(echo)
	w.WriteQ(uint64(serverMilli))
	sess.Send(w.Bytes())
}

func SendAdminResult(sess *net.Session, ok bool, msg string) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_ADMIN_RESULT)
	if ok {
		w.WriteC(1)
	} else {
		w.WriteC(0)
	}
	w.WriteS(msg)
	sess.Send(w.Bytes())
}

func SendDisconnect(sess *net.Session, reason string) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_DISCONNECT)
	w.WriteS(reason)
	sess.Send(w.Bytes())
}
