package spectate

// Frame is one tick summary pushed to spectators as JSON.
type Frame struct {
	At         int64        `json:"at"` // unix milliseconds
	Difficulty float64      `json:"difficulty"`
	Players    int          `json:"players"`
	Arenas     []ArenaFrame `json:"arenas"`
	Top        []ScoreEntry `json:"top"`
}

type ArenaFrame struct {
	ID       int16  `json:"id"`
	Name     string `json:"name"`
	Players  int    `json:"players"`
	Bubbles  int    `json:"bubbles"`
	Monsters int    `json:"monsters"`
}

type ScoreEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Combo int    `json:"combo"`
}
