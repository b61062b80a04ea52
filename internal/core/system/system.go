package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: dispatch last tick's events, drain packet queues
	PhasePreUpdate               // 1: difficulty ramp, weight tuning
	PhaseUpdate                  // 2: spawn timers, bubble drift, monster state machines
	PhasePostUpdate              // 3: scoring, derived state
	PhaseOutput                  // 4: build + send packets, spectator feed
	PhasePersist                 // 5: batch saves, run-event journal
	PhaseCleanup                 // 6: remove departed players
)

// System is the interface every game system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
