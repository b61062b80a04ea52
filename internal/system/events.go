package system

import (
	"time"

	"github.com/grottogame/server/internal/core/event"
	coresys "github.com/grottogame/server/internal/core/system"
)

// EventDispatchSystem rotates the double-buffered event bus and delivers
// last tick's events before any other system runs. Registered first within
// Phase 0 (Input) so subscribers see a stable world.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
