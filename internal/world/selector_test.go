package world

import (
	"math"
	"math/rand"
	"testing"

	"github.com/grottogame/server/internal/data"
)

func tpl(id string, base, factor, rarity float64) *data.BubbleTemplate {
	return &data.BubbleTemplate{
		ID:               id,
		BaseWeight:       base,
		DifficultyFactor: factor,
		RarityMult:       rarity,
		RuntimeMult:      1,
		Enabled:          true,
	}
}

func TestPickEmptySet(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(1)))

	if _, ok := s.Pick(nil, 1.0); ok {
		t.Fatal("Pick on nil candidates returned ok")
	}

	// All candidates gated out by difficulty window.
	gated := tpl("late", 5, 1, 1)
	gated.MinDifficulty = 4
	if _, ok := s.Pick([]*data.BubbleTemplate{gated}, 1.0); ok {
		t.Fatal("Pick with no eligible candidates returned ok")
	}
}

func TestPickDistributionTracksWeights(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(42)))
	candidates := []*data.BubbleTemplate{
		tpl("common", 6, 1, 1),
		tpl("rare", 3, 1, 1),
		tpl("epic", 1, 1, 1),
	}

	const draws = 30000
	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		picked, ok := s.Pick(candidates, 1.0)
		if !ok {
			t.Fatal("Pick returned none with positive weights")
		}
		counts[picked.ID]++
	}

	// Expect 60/30/10 within a tolerance loose enough to never flake.
	want := map[string]float64{"common": 0.6, "rare": 0.3, "epic": 0.1}
	for id, share := range want {
		got := float64(counts[id]) / draws
		if math.Abs(got-share) > 0.02 {
			t.Errorf("type %s drawn %.3f of the time, want %.3f ± 0.02", id, got, share)
		}
	}
}

func TestPickZeroTotalFallsBackToUniform(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(7)))
	candidates := []*data.BubbleTemplate{
		tpl("a", 0, 1, 1),
		tpl("b", 0, 1, 1),
	}

	const draws = 10000
	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		picked, ok := s.Pick(candidates, 1.0)
		if !ok {
			t.Fatal("Pick returned none with eligible zero-weight candidates")
		}
		counts[picked.ID]++
	}

	for _, id := range []string{"a", "b"} {
		got := float64(counts[id]) / draws
		if math.Abs(got-0.5) > 0.03 {
			t.Errorf("type %s drawn %.3f of the time, want ~0.5 (uniform fallback)", id, got)
		}
	}
}

func TestPickSkipsIneligible(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(3)))

	disabled := tpl("off", 100, 1, 1)
	disabled.Enabled = false
	early := tpl("early", 100, 1, 1)
	early.MaxDifficulty = 2
	live := tpl("live", 1, 1, 1)

	for i := 0; i < 200; i++ {
		picked, ok := s.Pick([]*data.BubbleTemplate{disabled, early, live}, 3.0)
		if !ok {
			t.Fatal("Pick returned none")
		}
		if picked.ID != "live" {
			t.Fatalf("picked ineligible type %s", picked.ID)
		}
	}
}

func TestPickDifficultyWindowOpensMix(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(99)))
	common := tpl("common", 4, 1, 1)
	elite := tpl("elite", 4, 1, 1)
	elite.MinDifficulty = 3

	candidates := []*data.BubbleTemplate{common, elite}

	for i := 0; i < 500; i++ {
		picked, _ := s.Pick(candidates, 1.0)
		if picked.ID == "elite" {
			t.Fatal("elite picked below its difficulty window")
		}
	}

	seenElite := false
	for i := 0; i < 500; i++ {
		picked, _ := s.Pick(candidates, 3.0)
		if picked.ID == "elite" {
			seenElite = true
			break
		}
	}
	if !seenElite {
		t.Error("elite never picked at difficulty 3 despite equal weight")
	}
}

func TestPickRuntimeMultRetunesMix(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(11)))
	a := tpl("a", 4, 1, 1)
	b := tpl("b", 4, 1, 1)
	candidates := []*data.BubbleTemplate{a, b}

	const draws = 20000
	share := func() float64 {
		n := 0
		for i := 0; i < draws; i++ {
			picked, _ := s.Pick(candidates, 1.0)
			if picked.ID == "b" {
				n++
			}
		}
		return float64(n) / draws
	}

	before := share()
	b.RuntimeMult = 3
	after := share()
	if after <= before {
		t.Errorf("raising RuntimeMult did not raise share: before=%.3f after=%.3f", before, after)
	}
	if math.Abs(after-0.75) > 0.03 {
		t.Errorf("share with 3x runtime mult = %.3f, want ~0.75", after)
	}
}
