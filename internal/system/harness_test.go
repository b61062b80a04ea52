package system

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grottogame/server/internal/config"
	"github.com/grottogame/server/internal/core/event"
	"github.com/grottogame/server/internal/data"
	"github.com/grottogame/server/internal/handler"
	gonet "github.com/grottogame/server/internal/net"
	"github.com/grottogame/server/internal/world"
	"go.uber.org/zap"
)

// The fixture arena: 40x30, floor at y=0, one ledge at y=5 spanning x 10..20,
// vents along the floor between x 5 and 35.
const arenaYAML = `
arenas:
  - id: 1
    name: Test Grotto
    width: 40
    height: 30
    platforms:
      - {x1: 0, x2: 40, y: 0}
      - {x1: 10, x2: 20, y: 5}
    player_spawns:
      - {x: 6, y: 0}
      - {x: 34, y: 0}
    vent_x_min: 5
    vent_x_max: 35
    vent_y: 1
`

const bubbleYAML = `
bubbles:
  - id: amber
    name: Amber
    category: common
    subtype: ground
    monster_id: burrower
    radius: 0.8
    rise_speed: 1.2
    wobble_amp: 0.4
    wobble_freq: 2.0
    lifetime_min: 20
    lifetime_max: 20
    pop_score: 10
    prewarm: 2
    ceiling: 8
    base_weight: 60
    difficulty_factor: 1.0
    rarity_mult: 1.0
    enabled: true
  - id: azure
    name: Azure
    category: common
    subtype: flying
    monster_id: wisp
    radius: 0.6
    rise_speed: 2.0
    lifetime_min: 4
    lifetime_max: 8
    pop_score: 15
    prewarm: 1
    ceiling: 8
    base_weight: 30
    difficulty_factor: 1.0
    rarity_mult: 1.0
    enabled: true
  - id: ember
    name: Ember
    category: common
    subtype: ground
    monster_id: burrower
    radius: 0.5
    rise_speed: 0.5
    lifetime_min: 2
    lifetime_max: 2
    pop_score: 5
    ceiling: 8
    base_weight: 0
    difficulty_factor: 1.0
    rarity_mult: 1.0
    enabled: true
  - id: orphan
    name: Orphan
    category: common
    subtype: ground
    monster_id: no_such_monster
    radius: 0.5
    rise_speed: 1.0
    lifetime_min: 3
    lifetime_max: 5
    pop_score: 5
    base_weight: 10
    difficulty_factor: 1.0
    rarity_mult: 1.0
    enabled: true
`

const monsterYAML = `
monsters:
  - id: burrower
    name: Burrower
    variant: ground
    max_hp: 6
    touch_damage: 1
    attack_damage: 2
    kill_score: 50
    move_speed: 2.0
    detection_range: 8
    lose_target_mult: 1.5
    attack_range: 1.5
    attack_windup: 0.2
    attack_active: 0.4
    attack_cooldown: 1.0
    knockback_force: 6
    spawn_duration: 0.5
    idle_wait: 1.0
    death_duration: 0.6
    lifetime_min: 60
    lifetime_max: 60
    edge_margin: 0.5
    prewarm: 2
    ceiling: 8
  - id: wisp
    name: Wisp
    variant: flying
    max_hp: 3
    touch_damage: 1
    attack_damage: 1
    kill_score: 80
    move_speed: 1.5
    chase_speed: 4.0
    detection_range: 6
    lose_target_mult: 2.0
    attack_range: 1.2
    attack_windup: 0.1
    attack_active: 0.3
    attack_cooldown: 0.8
    knockback_force: 4
    spawn_duration: 0.4
    idle_wait: 0.8
    death_duration: 0.5
    lifetime_min: 45
    lifetime_max: 45
    circle_radius: 2.0
    circle_speed: 1.5
    chase_lead: 0.25
    prewarm: 1
    ceiling: 8
`

func writeTable(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Game = config.GameConfig{
		PlayerMaxHP:        10,
		MaxDifficulty:      10,
		DifficultyInterval: 10 * time.Second,
		SpawnInterval:      3 * time.Second,
		MaxActiveBubbles:   24,
		MaxActiveMonsters:  16,
		DefaultPoolCeiling: 8,
		RespawnDelay:       3 * time.Second,
		InvulnDuration:     2 * time.Second,
		ForceDecay:         0.12,
		MaxForce:           40,
		SpeedPerDifficulty: 0.15,
		MeleeRange:         2.2,
		MeleeDamage:        3,
		MeleeCooldown:      400 * time.Millisecond,
		PopRange:           2.5,
		SnapshotEvery:      2,
		StatsFlushEvery:    100,
	}
	return cfg
}

func testDeps(t *testing.T) *handler.Deps {
	t.Helper()
	dir := t.TempDir()

	bubbles, err := data.LoadBubbleTable(writeTable(t, dir, "bubble_list.yaml", bubbleYAML))
	if err != nil {
		t.Fatalf("load bubbles: %v", err)
	}
	monsters, err := data.LoadMonsterTable(writeTable(t, dir, "monster_list.yaml", monsterYAML))
	if err != nil {
		t.Fatalf("load monsters: %v", err)
	}
	arenas, err := data.LoadArenaTable(writeTable(t, dir, "arena_list.yaml", arenaYAML))
	if err != nil {
		t.Fatalf("load arenas: %v", err)
	}

	return &handler.Deps{
		Config:   testConfig(),
		Log:      zap.NewNop(),
		World:    world.NewState(42, 10),
		Bus:      event.NewBus(),
		Sessions: gonet.NewSessionStore(),
		Bubbles:  bubbles,
		Monsters: monsters,
		Arenas:   arenas,
	}
}

var nextTestSession uint64 = 9000

// addPlayer drops a live player into the fixture arena. The session rides an
// in-memory pipe so broadcast sends have somewhere to go.
func addPlayer(t *testing.T, deps *handler.Deps, name string, x, y float64) *world.PlayerInfo {
	t.Helper()
	nextTestSession++
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	sess := gonet.NewSession(server, nextTestSession, 16, 1024, 100, zap.NewNop())
	deps.Sessions.Add(sess)

	p := &world.PlayerInfo{
		SessionID:   sess.ID,
		Session:     sess,
		Account:     name,
		Name:        name,
		ArenaID:     1,
		X:           x,
		Y:           y,
		Grounded:    true,
		FacingRight: true,
		HP:          deps.Config.Game.PlayerMaxHP,
		MaxHP:       deps.Config.Game.PlayerMaxHP,
		StartedAt:   time.Now(),
	}
	deps.World.AddPlayer(p)
	return p
}

// dispatch rotates the bus once, the way EventDispatchSystem does at tick
// start: events emitted last "tick" become visible now.
func dispatch(deps *handler.Deps) {
	deps.Bus.SwapBuffers()
	deps.Bus.DispatchAll()
}

// tick runs one simulated frame across the given systems in order, with the
// bus rotation in front, mirroring the runner's phase order.
func tick(deps *handler.Deps, dt time.Duration, systems ...interface{ Update(time.Duration) }) {
	dispatch(deps)
	for _, s := range systems {
		s.Update(dt)
	}
}
