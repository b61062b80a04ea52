package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AbilityTemplate binds an input slot to a server-side effect.
// Kinds: "dash" (impulse on self), "blast" (pop bubbles in radius),
// "slam" (damage monsters in radius).
type AbilityTemplate struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Slot     int     `yaml:"slot"` // 1-4, the client input slot
	Kind     string  `yaml:"kind"`
	Cooldown float64 `yaml:"cooldown"` // seconds
	Power    float64 `yaml:"power"`
	Radius   float64 `yaml:"radius"`
}

func (a *AbilityTemplate) validate() error {
	switch {
	case a.ID == "":
		return fmt.Errorf("missing id")
	case a.Name == "":
		return fmt.Errorf("missing name")
	case a.Slot < 1 || a.Slot > 4:
		return fmt.Errorf("slot %d outside [1,4]", a.Slot)
	case a.Kind != "dash" && a.Kind != "blast" && a.Kind != "slam":
		return fmt.Errorf("kind %q unknown", a.Kind)
	case a.Cooldown <= 0:
		return fmt.Errorf("cooldown %v <= 0", a.Cooldown)
	case a.Power <= 0:
		return fmt.Errorf("power %v <= 0", a.Power)
	case a.Radius < 0:
		return fmt.Errorf("radius %v < 0", a.Radius)
	}
	return nil
}

type abilityListFile struct {
	Abilities []AbilityTemplate `yaml:"abilities"`
}

// AbilityTable holds abilities indexed by slot and by ID.
type AbilityTable struct {
	byID    map[string]*AbilityTemplate
	bySlot  map[int]*AbilityTemplate
	Skipped []string
}

// LoadAbilityTable loads ability templates from a YAML file.
func LoadAbilityTable(path string) (*AbilityTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ability_list: %w", err)
	}
	var f abilityListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse ability_list: %w", err)
	}
	t := &AbilityTable{
		byID:   make(map[string]*AbilityTemplate, len(f.Abilities)),
		bySlot: make(map[int]*AbilityTemplate, len(f.Abilities)),
	}
	for i := range f.Abilities {
		a := &f.Abilities[i]
		if err := a.validate(); err != nil {
			t.Skipped = append(t.Skipped, fmt.Sprintf("ability %q: %v", a.ID, err))
			continue
		}
		if _, dup := t.byID[a.ID]; dup {
			t.Skipped = append(t.Skipped, fmt.Sprintf("ability %q: duplicate id", a.ID))
			continue
		}
		if _, dup := t.bySlot[a.Slot]; dup {
			t.Skipped = append(t.Skipped, fmt.Sprintf("ability %q: slot %d already bound", a.ID, a.Slot))
			continue
		}
		t.byID[a.ID] = a
		t.bySlot[a.Slot] = a
	}
	return t, nil
}

// Get returns an ability by ID, or nil if not found.
func (t *AbilityTable) Get(id string) *AbilityTemplate {
	return t.byID[id]
}

// GetSlot returns the ability bound to an input slot, or nil.
func (t *AbilityTable) GetSlot(slot int) *AbilityTemplate {
	return t.bySlot[slot]
}

// Count returns the number of loaded abilities.
func (t *AbilityTable) Count() int {
	return len(t.byID)
}
