package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownType is returned by Acquire for a type ID that was never
	// registered. Callers should report it; it indicates a data bug.
	ErrUnknownType = errors.New("pool: unknown type")
	// ErrExhausted is returned by Acquire when the type's free list is empty
	// and its total slot count has reached the ceiling. Not an error to
	// report — "no instance available" is a normal answer.
	ErrExhausted = errors.New("pool: type exhausted")
)

// Handle encodes a 32-bit slot index in the lower bits and a 32-bit
// generation in the upper bits. The generation increments on release to
// invalidate stale handles. Generations start at 1, so the zero Handle is
// never live.
type Handle uint64

func newHandle(index uint32, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) Index() uint32      { return uint32(h) }
func (h Handle) Generation() uint32 { return uint32(h >> 32) }
func (h Handle) IsZero() bool       { return h == 0 }

type slot[T any] struct {
	item   *T
	gen    uint32
	active bool
	bkt    *bucket[T]
}

// bucket tracks one registered type: its free slots, how many slots exist
// in total (pooled + active), and the hard ceiling on that total.
type bucket[T any] struct {
	id      string
	free    []uint32
	total   int
	ceiling int
	factory func() *T
	reset   func(*T)
}

// Pool is a generic keyed object pool. Instances are stored in slots
// addressed by generational Handles; each registered type ID owns a bucket
// of slots with its own ceiling. Acquire prefers a pooled instance and
// constructs a new one only while the bucket is under its ceiling.
//
// Accessed only from the game loop goroutine — no locks.
type Pool[T any] struct {
	slots   []slot[T]
	buckets map[string]*bucket[T]
}

func New[T any]() *Pool[T] {
	return &Pool[T]{
		buckets: make(map[string]*bucket[T]),
	}
}

// RegisterType creates a bucket for id, pre-constructing prewarm inactive
// instances. factory must produce a fresh instance; reset (optional) runs on
// every acquisition, before the instance is handed out.
func (p *Pool[T]) RegisterType(id string, ceiling, prewarm int, factory func() *T, reset func(*T)) error {
	if id == "" {
		return fmt.Errorf("pool: empty type id")
	}
	if _, dup := p.buckets[id]; dup {
		return fmt.Errorf("pool: type %q already registered", id)
	}
	if ceiling < 1 {
		return fmt.Errorf("pool: type %q ceiling %d < 1", id, ceiling)
	}
	if prewarm < 0 || prewarm > ceiling {
		return fmt.Errorf("pool: type %q prewarm %d outside [0,%d]", id, prewarm, ceiling)
	}
	if factory == nil {
		return fmt.Errorf("pool: type %q has no factory", id)
	}
	b := &bucket[T]{
		id:      id,
		ceiling: ceiling,
		factory: factory,
		reset:   reset,
	}
	for i := 0; i < prewarm; i++ {
		idx := p.grow(b)
		b.free = append(b.free, idx)
	}
	p.buckets[id] = b
	return nil
}

// grow appends one fresh slot for bucket b and returns its index.
func (p *Pool[T]) grow(b *bucket[T]) uint32 {
	idx := uint32(len(p.slots))
	p.slots = append(p.slots, slot[T]{
		item: b.factory(),
		gen:  1,
		bkt:  b,
	})
	b.total++
	return idx
}

// Acquire checks out an instance of the given type. A pooled instance is
// reused when available; otherwise a new one is constructed while the
// bucket's total stays under its ceiling. The per-acquisition reset runs
// here — release leaves the old state in place until the next checkout.
func (p *Pool[T]) Acquire(id string) (Handle, *T, error) {
	b := p.buckets[id]
	if b == nil {
		return 0, nil, fmt.Errorf("%w: %q", ErrUnknownType, id)
	}
	var idx uint32
	if n := len(b.free); n > 0 {
		idx = b.free[n-1]
		b.free = b.free[:n-1]
	} else if b.total < b.ceiling {
		idx = p.grow(b)
	} else {
		return 0, nil, fmt.Errorf("%w: %q (%d/%d)", ErrExhausted, id, b.total, b.ceiling)
	}
	s := &p.slots[idx]
	s.active = true
	if b.reset != nil {
		b.reset(s.item)
	}
	return newHandle(idx, s.gen), s.item, nil
}

// Release returns an instance to its type's free list and bumps the slot
// generation so outstanding handles go stale. Unknown, stale, or
// already-inactive handles are a no-op (false).
func (p *Pool[T]) Release(h Handle) bool {
	idx := h.Index()
	if int(idx) >= len(p.slots) {
		return false
	}
	s := &p.slots[idx]
	if s.gen != h.Generation() || !s.active {
		return false
	}
	s.active = false
	s.gen++
	s.bkt.free = append(s.bkt.free, idx)
	return true
}

// Get resolves a handle to its live instance, or (nil, false) when the
// handle is stale or inactive.
func (p *Pool[T]) Get(h Handle) (*T, bool) {
	idx := h.Index()
	if int(idx) >= len(p.slots) {
		return nil, false
	}
	s := &p.slots[idx]
	if s.gen != h.Generation() || !s.active {
		return nil, false
	}
	return s.item, true
}

// Registered reports whether the type ID has a bucket.
func (p *Pool[T]) Registered(id string) bool {
	_, ok := p.buckets[id]
	return ok
}

// ActiveCount returns how many instances of the type are checked out.
func (p *Pool[T]) ActiveCount(id string) int {
	if b := p.buckets[id]; b != nil {
		return b.total - len(b.free)
	}
	return 0
}

// IdleCount returns how many instances of the type sit in the free list.
func (p *Pool[T]) IdleCount(id string) int {
	if b := p.buckets[id]; b != nil {
		return len(b.free)
	}
	return 0
}

// TotalCount returns pooled + active instances of the type.
func (p *Pool[T]) TotalCount(id string) int {
	if b := p.buckets[id]; b != nil {
		return b.total
	}
	return 0
}

// Ceiling returns the type's hard cap on total instances.
func (p *Pool[T]) Ceiling(id string) int {
	if b := p.buckets[id]; b != nil {
		return b.ceiling
	}
	return 0
}
