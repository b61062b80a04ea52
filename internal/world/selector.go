package world

import (
	"math/rand"

	"github.com/grottogame/server/internal/data"
)

// Selector picks a bubble type by weighted random draw. Weights come from
// each template's EffectiveWeight at the current difficulty, so the mix
// shifts as the run progresses without the selector knowing why.
type Selector struct {
	rng *rand.Rand
}

func NewSelector(rng *rand.Rand) *Selector {
	return &Selector{rng: rng}
}

// Pick draws one template from the candidates at the given difficulty.
// Standard path: sum the effective weights, draw uniformly in [0,total),
// walk the cumulative sum. When every eligible candidate has zero weight
// the draw falls back to uniform among the eligible set. No eligible
// candidates at all reports false.
func (s *Selector) Pick(candidates []*data.BubbleTemplate, difficulty float64) (*data.BubbleTemplate, bool) {
	var eligible []*data.BubbleTemplate
	total := 0.0
	for _, tpl := range candidates {
		if !tpl.Eligible(difficulty) {
			continue
		}
		eligible = append(eligible, tpl)
		total += tpl.EffectiveWeight(difficulty)
	}
	if len(eligible) == 0 {
		return nil, false
	}
	if total <= 0 {
		return eligible[s.rng.Intn(len(eligible))], true
	}

	draw := s.rng.Float64() * total
	acc := 0.0
	for _, tpl := range eligible {
		acc += tpl.EffectiveWeight(difficulty)
		if draw < acc {
			return tpl, true
		}
	}
	// Float round-off can leave the draw a hair past the last bucket.
	return eligible[len(eligible)-1], true
}
