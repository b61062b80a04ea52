package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MonsterTemplate holds static data for a monster type loaded from YAML.
// All durations are seconds, speeds are units/second, ranges are units.
type MonsterTemplate struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"` // "ground" or "flying"

	MaxHP        int     `yaml:"max_hp"`
	TouchDamage  int     `yaml:"touch_damage"`
	AttackDamage int     `yaml:"attack_damage"`
	KillScore    int     `yaml:"kill_score"`
	MoveSpeed    float64 `yaml:"move_speed"`
	ChaseSpeed   float64 `yaml:"chase_speed"`

	DetectionRange float64 `yaml:"detection_range"`
	LoseTargetMult float64 `yaml:"lose_target_mult"` // hysteresis: lose range = detection * mult
	AttackRange    float64 `yaml:"attack_range"`
	AttackWindup   float64 `yaml:"attack_windup"`
	AttackActive   float64 `yaml:"attack_active"`
	AttackCooldown float64 `yaml:"attack_cooldown"`
	KnockbackForce float64 `yaml:"knockback_force"`

	SpawnDuration float64 `yaml:"spawn_duration"` // hatch animation hold
	IdleWait      float64 `yaml:"idle_wait"`      // idle before patrolling starts
	DeathDuration float64 `yaml:"death_duration"`
	LifetimeMin   float64 `yaml:"lifetime_min"`
	LifetimeMax   float64 `yaml:"lifetime_max"`

	// Ground variant: how far from a platform edge the patrol turns around.
	EdgeMargin float64 `yaml:"edge_margin"`
	// Flying variant: idle flight circle and chase prediction.
	CircleRadius float64 `yaml:"circle_radius"`
	CircleSpeed  float64 `yaml:"circle_speed"` // radians/second
	ChaseLead    float64 `yaml:"chase_lead"`   // seconds of target velocity to lead by

	Prewarm int `yaml:"prewarm"`
	Ceiling int `yaml:"ceiling"` // pool cap; 0 = server default
}

func (m *MonsterTemplate) validate() error {
	switch {
	case m.ID == "":
		return fmt.Errorf("missing id")
	case m.Name == "":
		return fmt.Errorf("missing name")
	case m.Variant != "ground" && m.Variant != "flying":
		return fmt.Errorf("variant %q (want ground or flying)", m.Variant)
	case m.MaxHP < 1:
		return fmt.Errorf("max_hp %d < 1", m.MaxHP)
	case m.MoveSpeed <= 0:
		return fmt.Errorf("move_speed %v <= 0", m.MoveSpeed)
	case m.DetectionRange <= 0:
		return fmt.Errorf("detection_range %v <= 0", m.DetectionRange)
	case m.LoseTargetMult < 1:
		return fmt.Errorf("lose_target_mult %v < 1", m.LoseTargetMult)
	case m.AttackRange <= 0:
		return fmt.Errorf("attack_range %v <= 0", m.AttackRange)
	case m.AttackWindup < 0 || m.AttackActive <= 0:
		return fmt.Errorf("attack window [%v,%v] invalid", m.AttackWindup, m.AttackActive)
	case m.AttackCooldown < 0:
		return fmt.Errorf("attack_cooldown %v < 0", m.AttackCooldown)
	case m.SpawnDuration < 0 || m.DeathDuration < 0:
		return fmt.Errorf("spawn/death durations must be >= 0")
	case m.IdleWait <= 0:
		return fmt.Errorf("idle_wait %v <= 0", m.IdleWait)
	case m.LifetimeMin <= 0 || m.LifetimeMax < m.LifetimeMin:
		return fmt.Errorf("lifetime window [%v,%v] invalid", m.LifetimeMin, m.LifetimeMax)
	case m.Prewarm < 0:
		return fmt.Errorf("prewarm %d < 0", m.Prewarm)
	}
	if m.Variant == "flying" {
		if m.CircleRadius <= 0 {
			return fmt.Errorf("flying variant needs circle_radius > 0")
		}
		if m.CircleSpeed == 0 {
			return fmt.Errorf("flying variant needs circle_speed != 0")
		}
	}
	return nil
}

type monsterListFile struct {
	Monsters []MonsterTemplate `yaml:"monsters"`
}

// MonsterTable holds all monster templates indexed by ID.
type MonsterTable struct {
	templates map[string]*MonsterTemplate
	order     []*MonsterTemplate
	Skipped   []string
}

// LoadMonsterTable loads monster templates from a YAML file. Entries that
// fail validation are skipped, not fatal.
func LoadMonsterTable(path string) (*MonsterTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read monster_list: %w", err)
	}
	var f monsterListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse monster_list: %w", err)
	}
	t := &MonsterTable{templates: make(map[string]*MonsterTemplate, len(f.Monsters))}
	for i := range f.Monsters {
		m := &f.Monsters[i]
		if err := m.validate(); err != nil {
			t.Skipped = append(t.Skipped, fmt.Sprintf("monster %q: %v", m.ID, err))
			continue
		}
		if _, dup := t.templates[m.ID]; dup {
			t.Skipped = append(t.Skipped, fmt.Sprintf("monster %q: duplicate id", m.ID))
			continue
		}
		if m.ChaseSpeed == 0 {
			m.ChaseSpeed = m.MoveSpeed
		}
		t.templates[m.ID] = m
		t.order = append(t.order, m)
	}
	return t, nil
}

// Get returns a monster template by ID, or nil if not found.
func (t *MonsterTable) Get(id string) *MonsterTemplate {
	return t.templates[id]
}

// All returns the templates in file order.
func (t *MonsterTable) All() []*MonsterTemplate {
	return t.order
}

// Count returns the number of loaded templates.
func (t *MonsterTable) Count() int {
	return len(t.templates)
}
