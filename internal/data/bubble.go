package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BubbleTemplate holds one spawnable bubble type loaded from YAML.
// Identity fields are fixed after load; the weight block is mutated at
// runtime by difficulty tuning and admin commands (game loop only).
type BubbleTemplate struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Category  string `yaml:"category"` // informational grouping ("common", "elite", ...)
	Subtype   string `yaml:"subtype"`  // "ground" or "flying" — picks the hatch path
	MonsterID string `yaml:"monster_id"`

	Radius     float64 `yaml:"radius"`
	RiseSpeed  float64 `yaml:"rise_speed"` // units/second upward drift
	WobbleAmp  float64 `yaml:"wobble_amp"`
	WobbleFreq float64 `yaml:"wobble_freq"`

	LifetimeMin float64 `yaml:"lifetime_min"` // seconds
	LifetimeMax float64 `yaml:"lifetime_max"`

	PopScore int `yaml:"pop_score"`
	Prewarm  int `yaml:"prewarm"`
	Ceiling  int `yaml:"ceiling"` // pool cap for this type; 0 = server default

	// Weight block. Effective weight is the product of the four factors,
	// zero when disabled or difficulty is outside [MinDifficulty,
	// MaxDifficulty]. MaxDifficulty 0 means no upper bound. RuntimeMult is
	// retuned as difficulty rises; 0 in the file is read as 1.
	BaseWeight       float64 `yaml:"base_weight"`
	DifficultyFactor float64 `yaml:"difficulty_factor"`
	RarityMult       float64 `yaml:"rarity_mult"`
	RuntimeMult      float64 `yaml:"runtime_mult"`
	Enabled          bool    `yaml:"enabled"`
	MinDifficulty    float64 `yaml:"min_difficulty"`
	MaxDifficulty    float64 `yaml:"max_difficulty"`
}

// EffectiveWeight returns the selection weight of this type at the given
// difficulty, zero when the type is not eligible.
func (b *BubbleTemplate) EffectiveWeight(difficulty float64) float64 {
	if !b.Enabled {
		return 0
	}
	if difficulty < b.MinDifficulty {
		return 0
	}
	if b.MaxDifficulty > 0 && difficulty > b.MaxDifficulty {
		return 0
	}
	return b.BaseWeight * b.DifficultyFactor * b.RarityMult * b.RuntimeMult
}

// Eligible reports whether the type can be selected at all at the given
// difficulty (enabled and inside its difficulty window). A type can be
// eligible with zero effective weight; the selector's uniform fallback
// covers that case.
func (b *BubbleTemplate) Eligible(difficulty float64) bool {
	if !b.Enabled {
		return false
	}
	if difficulty < b.MinDifficulty {
		return false
	}
	if b.MaxDifficulty > 0 && difficulty > b.MaxDifficulty {
		return false
	}
	return true
}

func (b *BubbleTemplate) validate() error {
	switch {
	case b.ID == "":
		return fmt.Errorf("missing id")
	case b.Name == "":
		return fmt.Errorf("missing name")
	case b.Subtype != "ground" && b.Subtype != "flying":
		return fmt.Errorf("subtype %q (want ground or flying)", b.Subtype)
	case b.MonsterID == "":
		return fmt.Errorf("missing monster_id")
	case b.Radius <= 0:
		return fmt.Errorf("radius %v <= 0", b.Radius)
	case b.RiseSpeed <= 0:
		return fmt.Errorf("rise_speed %v <= 0", b.RiseSpeed)
	case b.LifetimeMin <= 0 || b.LifetimeMax < b.LifetimeMin:
		return fmt.Errorf("lifetime window [%v,%v] invalid", b.LifetimeMin, b.LifetimeMax)
	case b.BaseWeight < 0 || b.DifficultyFactor < 0 || b.RarityMult < 0:
		return fmt.Errorf("negative weight factor")
	case b.MaxDifficulty > 0 && b.MinDifficulty > b.MaxDifficulty:
		return fmt.Errorf("difficulty window [%v,%v] invalid", b.MinDifficulty, b.MaxDifficulty)
	case b.Prewarm < 0:
		return fmt.Errorf("prewarm %d < 0", b.Prewarm)
	}
	return nil
}

type bubbleListFile struct {
	Bubbles []BubbleTemplate `yaml:"bubbles"`
}

// BubbleTable holds all bubble templates indexed by ID. Skipped records the
// entries dropped during load, for the caller to report.
type BubbleTable struct {
	templates map[string]*BubbleTemplate
	order     []*BubbleTemplate // file order, for stable selection walks
	Skipped   []string
}

// LoadBubbleTable loads bubble templates from a YAML file. Entries that
// fail validation are skipped, not fatal.
func LoadBubbleTable(path string) (*BubbleTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bubble_list: %w", err)
	}
	var f bubbleListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse bubble_list: %w", err)
	}
	t := &BubbleTable{templates: make(map[string]*BubbleTemplate, len(f.Bubbles))}
	for i := range f.Bubbles {
		b := &f.Bubbles[i]
		if err := b.validate(); err != nil {
			t.Skipped = append(t.Skipped, fmt.Sprintf("bubble %q: %v", b.ID, err))
			continue
		}
		if _, dup := t.templates[b.ID]; dup {
			t.Skipped = append(t.Skipped, fmt.Sprintf("bubble %q: duplicate id", b.ID))
			continue
		}
		if b.RuntimeMult == 0 {
			b.RuntimeMult = 1
		}
		t.templates[b.ID] = b
		t.order = append(t.order, b)
	}
	return t, nil
}

// Get returns a bubble template by ID, or nil if not found.
func (t *BubbleTable) Get(id string) *BubbleTemplate {
	return t.templates[id]
}

// All returns the templates in file order. The slice is shared; callers
// must not reorder it.
func (t *BubbleTable) All() []*BubbleTemplate {
	return t.order
}

// Count returns the number of loaded templates.
func (t *BubbleTable) Count() int {
	return len(t.templates)
}
