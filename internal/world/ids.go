package world

import "sync/atomic"

// Object IDs live in disjoint ranges so a log line or wire ID is
// self-describing: players use their session IDs, bubbles count up from
// 100M, monsters from 200M.
const (
	bubbleIDBase  = 100_000_000
	monsterIDBase = 200_000_000
)

var (
	nextBubbleID  atomic.Int32
	nextMonsterID atomic.Int32
)

// NewBubbleID allocates the next bubble object ID.
func NewBubbleID() int32 {
	return bubbleIDBase + nextBubbleID.Add(1)
}

// NewMonsterID allocates the next monster object ID.
func NewMonsterID() int32 {
	return monsterIDBase + nextMonsterID.Add(1)
}
