package pool

import (
	"errors"
	"testing"
)

type thing struct {
	hits int
	tag  string
}

func newTestPool(t *testing.T, ceiling, prewarm int, constructed *int) *Pool[thing] {
	t.Helper()
	p := New[thing]()
	err := p.RegisterType("a", ceiling, prewarm,
		func() *thing {
			*constructed++
			return &thing{}
		},
		func(th *thing) { *th = thing{} },
	)
	if err != nil {
		t.Fatalf("RegisterType: %v", err)
	}
	return p
}

func TestAcquireReuseThenExpand(t *testing.T) {
	constructed := 0
	p := newTestPool(t, 10, 5, &constructed)

	if constructed != 5 {
		t.Fatalf("prewarm constructed %d instances, want 5", constructed)
	}
	if got := p.IdleCount("a"); got != 5 {
		t.Fatalf("IdleCount after prewarm = %d, want 5", got)
	}

	// First five acquires must come from the free list.
	for i := 0; i < 5; i++ {
		if _, _, err := p.Acquire("a"); err != nil {
			t.Fatalf("acquire %d: %v", i+1, err)
		}
	}
	if constructed != 5 {
		t.Errorf("after 5 acquires constructed = %d, want 5 (all reused)", constructed)
	}

	// Sixth through tenth expand up to the ceiling.
	for i := 5; i < 10; i++ {
		if _, _, err := p.Acquire("a"); err != nil {
			t.Fatalf("acquire %d: %v", i+1, err)
		}
	}
	if constructed != 10 {
		t.Errorf("after 10 acquires constructed = %d, want 10", constructed)
	}
	if got := p.ActiveCount("a"); got != 10 {
		t.Errorf("ActiveCount = %d, want 10", got)
	}

	// Eleventh exceeds the ceiling.
	_, _, err := p.Acquire("a")
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("11th acquire err = %v, want ErrExhausted", err)
	}
	if constructed != 10 {
		t.Errorf("failed acquire constructed an instance (%d total)", constructed)
	}
}

func TestAcquireUnknownType(t *testing.T) {
	constructed := 0
	p := newTestPool(t, 4, 0, &constructed)

	_, _, err := p.Acquire("nope")
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
}

func TestResetRunsOnNextAcquire(t *testing.T) {
	constructed := 0
	p := newTestPool(t, 4, 1, &constructed)

	h, th, err := p.Acquire("a")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	th.hits = 7
	th.tag = "dirty"

	if !p.Release(h) {
		t.Fatalf("release returned false for live handle")
	}
	// Release only deactivates; the instance keeps its state until reuse.
	if th.hits != 7 || th.tag != "dirty" {
		t.Errorf("release reset the instance early: %+v", *th)
	}

	_, th2, err := p.Acquire("a")
	if err != nil {
		t.Fatalf("re-acquire: %v", err)
	}
	if th2 != th {
		t.Fatalf("expected the pooled instance back")
	}
	if th2.hits != 0 || th2.tag != "" {
		t.Errorf("acquire did not reset the instance: %+v", *th2)
	}
}

func TestReleaseGuards(t *testing.T) {
	constructed := 0
	p := newTestPool(t, 4, 0, &constructed)

	h, _, err := p.Acquire("a")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	t.Run("double release", func(t *testing.T) {
		if !p.Release(h) {
			t.Fatalf("first release failed")
		}
		if p.Release(h) {
			t.Errorf("second release of same handle succeeded")
		}
		if got := p.IdleCount("a"); got != 1 {
			t.Errorf("IdleCount = %d after double release, want 1", got)
		}
	})

	t.Run("stale handle after reuse", func(t *testing.T) {
		h2, _, err := p.Acquire("a")
		if err != nil {
			t.Fatalf("re-acquire: %v", err)
		}
		// h is a stale handle onto the slot now owned by h2.
		if p.Release(h) {
			t.Errorf("stale release succeeded")
		}
		if got := p.ActiveCount("a"); got != 1 {
			t.Errorf("stale release disturbed active count: %d", got)
		}
		if _, ok := p.Get(h2); !ok {
			t.Errorf("live handle invalidated by stale release")
		}
	})

	t.Run("zero handle", func(t *testing.T) {
		if p.Release(0) {
			t.Errorf("zero handle release succeeded")
		}
	})
}

func TestGet(t *testing.T) {
	constructed := 0
	p := newTestPool(t, 2, 0, &constructed)

	h, th, err := p.Acquire("a")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	got, ok := p.Get(h)
	if !ok || got != th {
		t.Fatalf("Get(live) = (%v, %v), want the checked-out instance", got, ok)
	}
	p.Release(h)
	if _, ok := p.Get(h); ok {
		t.Errorf("Get succeeded on a released handle")
	}
}

func TestRegisterTypeValidation(t *testing.T) {
	factory := func() *thing { return &thing{} }
	cases := []struct {
		name    string
		id      string
		ceiling int
		prewarm int
		factory func() *thing
	}{
		{"empty id", "", 4, 0, factory},
		{"zero ceiling", "x", 0, 0, factory},
		{"prewarm over ceiling", "x", 2, 3, factory},
		{"negative prewarm", "x", 2, -1, factory},
		{"nil factory", "x", 2, 0, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := New[thing]()
			if err := p.RegisterType(tc.id, tc.ceiling, tc.prewarm, tc.factory, nil); err == nil {
				t.Errorf("RegisterType accepted bad input")
			}
		})
	}

	t.Run("duplicate id", func(t *testing.T) {
		p := New[thing]()
		if err := p.RegisterType("x", 2, 0, factory, nil); err != nil {
			t.Fatalf("first register: %v", err)
		}
		if err := p.RegisterType("x", 2, 0, factory, nil); err == nil {
			t.Errorf("duplicate register accepted")
		}
	})
}

func TestCountsStayConsistent(t *testing.T) {
	constructed := 0
	p := newTestPool(t, 8, 3, &constructed)

	check := func(step string) {
		t.Helper()
		active, idle, total := p.ActiveCount("a"), p.IdleCount("a"), p.TotalCount("a")
		if active+idle != total {
			t.Fatalf("%s: active %d + idle %d != total %d", step, active, idle, total)
		}
		if total > p.Ceiling("a") {
			t.Fatalf("%s: total %d over ceiling %d", step, total, p.Ceiling("a"))
		}
	}

	var handles []Handle
	for i := 0; i < 6; i++ {
		h, _, err := p.Acquire("a")
		if err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
		handles = append(handles, h)
		check("acquire")
	}
	for _, h := range handles[:3] {
		p.Release(h)
		check("release")
	}
	for i := 0; i < 5; i++ {
		if h, _, err := p.Acquire("a"); err == nil {
			handles = append(handles, h)
		}
		check("churn")
	}
}
