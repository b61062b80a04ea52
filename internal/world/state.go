package world

import (
	"math/rand"
)

// State is the authoritative in-memory world: every connected player and
// every live pooled entity, indexed for the ways the tick loop reads them.
// Accessed only from the game loop goroutine — no locks needed.
type State struct {
	bySession map[uint64]*PlayerInfo
	byName    map[string]*PlayerInfo
	players   []*PlayerInfo // insertion order, for deterministic tick iteration

	bubbles    map[int32]*BubbleInfo
	bubbleList []*BubbleInfo

	monsters    map[int32]*MonsterInfo
	monsterList []*MonsterInfo

	// Per-arena live counts, kept in step with the add/remove paths.
	bubblesPerArena  map[int16]int
	monstersPerArena map[int16]int

	difficulty    float64
	maxDifficulty float64

	rng *rand.Rand
}

// NewState builds an empty world. The seed fixes every random draw the
// game loop makes (spawn selection, lifetimes, wobble), so a logged seed
// reproduces a run.
func NewState(seed int64, maxDifficulty float64) *State {
	if maxDifficulty < 1 {
		maxDifficulty = 1
	}
	return &State{
		bySession:        make(map[uint64]*PlayerInfo),
		byName:           make(map[string]*PlayerInfo),
		bubbles:          make(map[int32]*BubbleInfo),
		monsters:         make(map[int32]*MonsterInfo),
		bubblesPerArena:  make(map[int16]int),
		monstersPerArena: make(map[int16]int),
		difficulty:       1.0,
		maxDifficulty:    maxDifficulty,
		rng:              rand.New(rand.NewSource(seed)),
	}
}

// RNG exposes the world's random source for spawn draws.
func (s *State) RNG() *rand.Rand { return s.rng }

// ---------- Players ----------

func (s *State) AddPlayer(p *PlayerInfo) {
	s.bySession[p.SessionID] = p
	s.byName[p.Name] = p
	s.players = append(s.players, p)
}

func (s *State) RemovePlayer(sessionID uint64) *PlayerInfo {
	p := s.bySession[sessionID]
	if p == nil {
		return nil
	}
	delete(s.bySession, sessionID)
	delete(s.byName, p.Name)
	for i, q := range s.players {
		if q.SessionID == sessionID {
			s.players = append(s.players[:i], s.players[i+1:]...)
			break
		}
	}
	return p
}

func (s *State) GetBySession(sessionID uint64) *PlayerInfo {
	return s.bySession[sessionID]
}

func (s *State) GetByName(name string) *PlayerInfo {
	return s.byName[name]
}

// Players returns the live player list in join order. Callers must not
// mutate the slice.
func (s *State) Players() []*PlayerInfo { return s.players }

func (s *State) PlayerCount() int { return len(s.players) }

// PlayersInArena collects the players currently in one arena, join order.
func (s *State) PlayersInArena(arenaID int16) []*PlayerInfo {
	var out []*PlayerInfo
	for _, p := range s.players {
		if p.ArenaID == arenaID {
			out = append(out, p)
		}
	}
	return out
}

// ---------- Bubbles ----------

func (s *State) AddBubble(b *BubbleInfo) {
	s.bubbles[b.ID] = b
	s.bubbleList = append(s.bubbleList, b)
	s.bubblesPerArena[b.ArenaID]++
}

func (s *State) RemoveBubble(id int32) *BubbleInfo {
	b := s.bubbles[id]
	if b == nil {
		return nil
	}
	delete(s.bubbles, id)
	for i, q := range s.bubbleList {
		if q.ID == id {
			s.bubbleList = append(s.bubbleList[:i], s.bubbleList[i+1:]...)
			break
		}
	}
	s.bubblesPerArena[b.ArenaID]--
	return b
}

func (s *State) GetBubble(id int32) *BubbleInfo { return s.bubbles[id] }

// Bubbles returns live bubbles in spawn order. Callers must not mutate
// the slice; removal during iteration goes through RemoveBubble on a
// copied ID list.
func (s *State) Bubbles() []*BubbleInfo { return s.bubbleList }

func (s *State) BubbleCount() int { return len(s.bubbleList) }

func (s *State) ArenaBubbleCount(arenaID int16) int {
	return s.bubblesPerArena[arenaID]
}

// ---------- Monsters ----------

func (s *State) AddMonster(m *MonsterInfo) {
	s.monsters[m.ID] = m
	s.monsterList = append(s.monsterList, m)
	s.monstersPerArena[m.ArenaID]++
}

func (s *State) RemoveMonster(id int32) *MonsterInfo {
	m := s.monsters[id]
	if m == nil {
		return nil
	}
	delete(s.monsters, id)
	for i, q := range s.monsterList {
		if q.ID == id {
			s.monsterList = append(s.monsterList[:i], s.monsterList[i+1:]...)
			break
		}
	}
	s.monstersPerArena[m.ArenaID]--
	return m
}

func (s *State) GetMonster(id int32) *MonsterInfo { return s.monsters[id] }

// Monsters returns live monsters in hatch order. Same iteration rules as
// Bubbles.
func (s *State) Monsters() []*MonsterInfo { return s.monsterList }

func (s *State) MonsterCount() int { return len(s.monsterList) }

func (s *State) ArenaMonsterCount(arenaID int16) int {
	return s.monstersPerArena[arenaID]
}
