package system

import (
	"math"
	"testing"
	"time"

	"github.com/grottogame/server/internal/core/event"
)

func TestTimersAndForceDecay(t *testing.T) {
	deps := testDeps(t)
	sys := NewPlayerSystem(deps)
	p := addPlayer(t, deps, "runner", 6, 0)

	p.MeleeCD = 0.5
	p.AbilityCD[2] = 1.0
	p.InvulnTimer = 0.3
	p.AddForce(10, 5, deps.Config.Game.MaxForce)

	tick(deps, 100*time.Millisecond, sys)
	if p.MeleeCD != 0.4 {
		t.Errorf("melee cd = %v, want 0.4", p.MeleeCD)
	}
	if p.AbilityCD[2] != 0.9 {
		t.Errorf("ability cd = %v, want 0.9", p.AbilityCD[2])
	}
	decay := math.Pow(deps.Config.Game.ForceDecay, 0.1)
	if p.ForceX != 10*decay || p.ForceY != 5*decay {
		t.Errorf("force = (%v, %v), want one decay step of %v", p.ForceX, p.ForceY, decay)
	}

	// Timers clamp at zero instead of going negative.
	tick(deps, 400*time.Millisecond, sys)
	if p.InvulnTimer != 0 {
		t.Errorf("invuln = %v, want clamp to 0", p.InvulnTimer)
	}
	if p.MeleeCD != 0 {
		t.Errorf("melee cd = %v, want clamp to 0", p.MeleeCD)
	}
}

func TestDeathJournalsRunAndRespawnsFresh(t *testing.T) {
	deps := testDeps(t)
	sys := NewPlayerSystem(deps)
	p := addPlayer(t, deps, "runner", 20, 10)

	var died []event.PlayerDied
	var scores []event.ScoreChanged
	event.Subscribe(deps.Bus, func(ev event.PlayerDied) { died = append(died, ev) })
	event.Subscribe(deps.Bus, func(ev event.ScoreChanged) { scores = append(scores, ev) })

	p.Score = 120
	p.Pops = 3
	p.Kills = 1
	p.Combo = 5
	p.HP = 0 // the killing blow already landed this tick

	tick(deps, 100*time.Millisecond, sys)
	if !p.Dead || p.HP != 0 {
		t.Fatalf("dead = %v HP = %d, want dead at 0", p.Dead, p.HP)
	}
	if p.Deaths != 1 || p.Combo != 0 {
		t.Errorf("deaths = %d combo = %d, want 1 and 0", p.Deaths, p.Combo)
	}
	if p.RespawnTimer != deps.Config.Game.RespawnDelay.Seconds() {
		t.Errorf("respawn timer = %v, want %v", p.RespawnTimer, deps.Config.Game.RespawnDelay.Seconds())
	}
	// The run's score survives until the next life starts.
	if p.Score != 120 {
		t.Errorf("score = %d, want kept until respawn", p.Score)
	}
	dispatch(deps)
	if len(died) != 1 || died[0].Score != 120 {
		t.Fatalf("died events = %+v, want one carrying score 120", died)
	}

	// Dying twice in one death is impossible: the Dead case only counts down.
	tick(deps, 1*time.Second, sys)
	if p.Deaths != 1 {
		t.Fatalf("deaths = %d, want still 1", p.Deaths)
	}
	tick(deps, 1*time.Second, sys)
	if !p.Dead {
		t.Fatalf("respawned before the delay ran out")
	}

	tick(deps, 1*time.Second, sys)
	if p.Dead {
		t.Fatalf("still dead after the respawn delay")
	}
	if p.HP != 10 || p.MaxHP != 10 {
		t.Errorf("HP = %d/%d, want full 10/10", p.HP, p.MaxHP)
	}
	if p.Score != 0 || p.Pops != 0 || p.Kills != 0 || p.BestCombo != 0 {
		t.Errorf("run stats = score %d pops %d kills %d best %d, want a zeroed run",
			p.Score, p.Pops, p.Kills, p.BestCombo)
	}
	if p.Deaths != 1 {
		t.Errorf("deaths = %d, want session total kept", p.Deaths)
	}
	if p.InvulnTimer != deps.Config.Game.InvulnDuration.Seconds() {
		t.Errorf("invuln = %v, want a fresh grace window", p.InvulnTimer)
	}
	if p.ForceX != 0 || p.ForceY != 0 {
		t.Errorf("force = (%v, %v), want cleared", p.ForceX, p.ForceY)
	}
	spawnOK := (p.X == 6 && p.Y == 0) || (p.X == 34 && p.Y == 0)
	if !spawnOK {
		t.Errorf("respawned at (%v, %v), want a spawn point", p.X, p.Y)
	}

	dispatch(deps)
	if len(scores) != 1 || scores[0].Score != 0 || scores[0].Delta != -120 {
		t.Errorf("score events = %+v, want one reset to 0 with delta -120", scores)
	}
}
