package world

// Difficulty returns the current difficulty scalar. Starts at 1.0.
func (s *State) Difficulty() float64 {
	return s.difficulty
}

// RaiseDifficulty moves difficulty toward v, clamped to the configured
// max. Decreases are ignored: within a run difficulty only climbs.
func (s *State) RaiseDifficulty(v float64) bool {
	if v > s.maxDifficulty {
		v = s.maxDifficulty
	}
	if v <= s.difficulty {
		return false
	}
	s.difficulty = v
	return true
}

// OverrideDifficulty sets difficulty directly, clamped to [1, max].
// Admin-only escape hatch: this is the one path that may lower it.
func (s *State) OverrideDifficulty(v float64) float64 {
	if v < 1 {
		v = 1
	}
	if v > s.maxDifficulty {
		v = s.maxDifficulty
	}
	s.difficulty = v
	return v
}
