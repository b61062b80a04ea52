package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Platform is a horizontal walkable strip. Ground monsters patrol along
// platforms and turn around near the ends.
type Platform struct {
	X1 float64 `yaml:"x1"`
	X2 float64 `yaml:"x2"`
	Y  float64 `yaml:"y"`
}

// SpawnPoint is a player spawn location.
type SpawnPoint struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// ArenaTemplate describes one arena's static geometry. Platform 0 is the
// floor. The vent strip is where auto-spawned bubbles surface.
type ArenaTemplate struct {
	ID     int16  `yaml:"id"`
	Name   string `yaml:"name"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`

	Platforms    []Platform   `yaml:"platforms"`
	PlayerSpawns []SpawnPoint `yaml:"player_spawns"`

	VentXMin float64 `yaml:"vent_x_min"`
	VentXMax float64 `yaml:"vent_x_max"`
	VentY    float64 `yaml:"vent_y"`

	// Population caps; 0 falls back to the server-wide default.
	MaxBubbles  int `yaml:"max_bubbles"`
	MaxMonsters int `yaml:"max_monsters"`
}

// PlatformBelow returns the highest platform whose strip contains x at or
// below y, and true when one exists. Used to ground hatching monsters.
func (a *ArenaTemplate) PlatformBelow(x, y float64) (Platform, bool) {
	best := Platform{}
	found := false
	for _, p := range a.Platforms {
		if x < p.X1 || x > p.X2 {
			continue
		}
		if p.Y > y {
			continue
		}
		if !found || p.Y > best.Y {
			best = p
			found = true
		}
	}
	return best, found
}

// InBounds reports whether a point lies inside the arena plus a small
// outer margin (entities drift a little past the edge before despawning).
func (a *ArenaTemplate) InBounds(x, y float64, margin float64) bool {
	return x >= -margin && x <= a.Width+margin && y >= -margin && y <= a.Height+margin
}

func (a *ArenaTemplate) validate() error {
	switch {
	case a.ID <= 0:
		return fmt.Errorf("id %d <= 0", a.ID)
	case a.Name == "":
		return fmt.Errorf("missing name")
	case a.Width <= 0 || a.Height <= 0:
		return fmt.Errorf("bounds %vx%v invalid", a.Width, a.Height)
	case len(a.Platforms) == 0:
		return fmt.Errorf("no platforms")
	case len(a.PlayerSpawns) == 0:
		return fmt.Errorf("no player spawns")
	case a.VentXMin > a.VentXMax:
		return fmt.Errorf("vent strip [%v,%v] invalid", a.VentXMin, a.VentXMax)
	case a.VentXMin < 0 || a.VentXMax > a.Width || a.VentY < 0 || a.VentY > a.Height:
		return fmt.Errorf("vent strip outside bounds")
	case a.MaxBubbles < 0 || a.MaxMonsters < 0:
		return fmt.Errorf("negative population cap")
	}
	for i, p := range a.Platforms {
		if p.X1 >= p.X2 {
			return fmt.Errorf("platform %d span [%v,%v] invalid", i, p.X1, p.X2)
		}
	}
	return nil
}

type arenaListFile struct {
	Arenas []ArenaTemplate `yaml:"arenas"`
}

// ArenaTable holds all arenas indexed by ID.
type ArenaTable struct {
	templates map[int16]*ArenaTemplate
	order     []*ArenaTemplate
	Skipped   []string
}

// LoadArenaTable loads arena templates from a YAML file.
func LoadArenaTable(path string) (*ArenaTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read arena_list: %w", err)
	}
	var f arenaListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse arena_list: %w", err)
	}
	t := &ArenaTable{templates: make(map[int16]*ArenaTemplate, len(f.Arenas))}
	for i := range f.Arenas {
		a := &f.Arenas[i]
		if err := a.validate(); err != nil {
			t.Skipped = append(t.Skipped, fmt.Sprintf("arena %d: %v", a.ID, err))
			continue
		}
		if _, dup := t.templates[a.ID]; dup {
			t.Skipped = append(t.Skipped, fmt.Sprintf("arena %d: duplicate id", a.ID))
			continue
		}
		t.templates[a.ID] = a
		t.order = append(t.order, a)
	}
	return t, nil
}

// Get returns an arena by ID, or nil if not found.
func (t *ArenaTable) Get(id int16) *ArenaTemplate {
	return t.templates[id]
}

// All returns the arenas in file order.
func (t *ArenaTable) All() []*ArenaTemplate {
	return t.order
}

// Count returns the number of loaded arenas.
func (t *ArenaTable) Count() int {
	return len(t.templates)
}
