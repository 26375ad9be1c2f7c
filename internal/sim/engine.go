package sim

import (
	"log"

	"fightstate/runtime/logging"
)

// EngineCore is the minimal surface a simulation engine exposes to the loop.
type EngineCore interface {
	// Apply stages the effects of drained commands onto engine state.
	Apply([]Command) error
	// Step advances the whole simulation by one tick.
	Step()
	// Snapshot returns a copy of the externally visible state.
	Snapshot() Snapshot
	// Restore rewinds engine state to a previously captured keyframe.
	Restore(Keyframe) bool
	// Deps returns the injected infrastructure dependencies.
	Deps() Deps
}

// Engine is the surface area exposed to non-simulation callers: the core
// plus command staging.
type Engine interface {
	EngineCore
	Enqueue(Command) (bool, string)
	Pending() int
}

// Deps carries shared infrastructure dependencies required by the engine.
type Deps struct {
	Logger    *log.Logger
	Metrics   *logging.Metrics
	Clock     logging.Clock
	Publisher logging.Publisher
}
