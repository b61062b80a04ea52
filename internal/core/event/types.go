package event

// Event payloads are plain value structs. Positions are world units,
// sessions are network session IDs, object IDs follow the world ID ranges.

// BubbleSpawned fires when a bubble enters play.
type BubbleSpawned struct {
	BubbleID int32
	TypeID   string
	ArenaID  int16
	X, Y     float64
}

// BubbleBurst fires whenever a bubble bursts — popped by a player or aged
// out. The monster spawner keys hatching off this event.
type BubbleBurst struct {
	BubbleID  int32
	TypeID    string
	Subtype   string // "ground" or "flying"
	MonsterID string
	ArenaID   int16
	X, Y      float64
	BySession uint64 // 0 when the bubble aged out
}

// BubblePopped fires only for player-initiated bursts (scoring).
type BubblePopped struct {
	BubbleID  int32
	TypeID    string
	ArenaID   int16
	BySession uint64
	PopScore  int
}

// BubbleDrifted fires when a bubble leaves the arena bounds and despawns
// without bursting.
type BubbleDrifted struct {
	BubbleID int32
	TypeID   string
	ArenaID  int16
}

// MonsterSpawned fires when a monster hatches.
type MonsterSpawned struct {
	MonsterID int32
	TypeID    string
	ArenaID   int16
	X, Y      float64
}

// MonsterKilled fires when a player kill finishes the death sequence.
type MonsterKilled struct {
	MonsterID int32
	TypeID    string
	ArenaID   int16
	BySession uint64
	KillScore int
}

// MonsterExpired fires when a monster's lifetime ran out instead.
type MonsterExpired struct {
	MonsterID int32
	TypeID    string
	ArenaID   int16
}

// Player motion events, reported by the client and rebroadcast to systems
// that care (stats, abilities). The server does not integrate kinematics.

type PlayerJumped struct {
	SessionID uint64
	ArenaID   int16
}

type PlayerLanded struct {
	SessionID uint64
	ArenaID   int16
}

type PlayerDashed struct {
	SessionID uint64
	ArenaID   int16
}

type PlayerCrouched struct {
	SessionID uint64
	ArenaID   int16
	Crouching bool
}

// PlayerDamaged fires when a monster attack or touch connects.
type PlayerDamaged struct {
	SessionID uint64
	ArenaID   int16
	MonsterID int32
	Damage    int
}

// PlayerDied fires once per death; the run score has already been captured.
type PlayerDied struct {
	SessionID uint64
	ArenaID   int16
	Score     int
}

// DifficultyChanged fires when the process-wide difficulty scalar moves.
type DifficultyChanged struct {
	Old float64
	New float64
}

// ScoreChanged fires after the score system applies an award.
type ScoreChanged struct {
	SessionID uint64
	Score     int
	Delta     int
}
