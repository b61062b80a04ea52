package system

import (
	"testing"

	"github.com/grottogame/server/internal/spectate"
	"go.uber.org/zap"
)

func TestSpectateFrameSummarizesTheTick(t *testing.T) {
	deps := testDeps(t)
	sys := NewSpectateSystem(deps, spectate.NewHub(zap.NewNop()), 2)

	a := addPlayer(t, deps, "alpha", 6, 0)
	b := addPlayer(t, deps, "beta", 34, 0)
	c := addPlayer(t, deps, "gamma", 20, 10)
	a.Score, b.Score, c.Score = 50, 120, 120
	c.Combo = 4
	deps.World.OverrideDifficulty(3)

	f := sys.buildFrame()
	if f.Difficulty != 3 || f.Players != 3 {
		t.Errorf("difficulty = %v players = %d, want 3 and 3", f.Difficulty, f.Players)
	}
	if len(f.Arenas) != 1 || f.Arenas[0].ID != 1 || f.Arenas[0].Name != "Test Grotto" {
		t.Fatalf("arenas = %+v, want the fixture arena", f.Arenas)
	}
	if f.Arenas[0].Players != 3 {
		t.Errorf("arena players = %d, want 3", f.Arenas[0].Players)
	}

	// Leaders sort by score, ties by name.
	if len(f.Top) != 3 {
		t.Fatalf("top = %+v, want all three players", f.Top)
	}
	if f.Top[0].Name != "beta" || f.Top[1].Name != "gamma" || f.Top[2].Name != "alpha" {
		t.Errorf("top order = %s, %s, %s", f.Top[0].Name, f.Top[1].Name, f.Top[2].Name)
	}
	if f.Top[1].Combo != 4 {
		t.Errorf("combo = %d, want carried into the frame", f.Top[1].Combo)
	}
}
