// Package state defines the plain-value combatant state advanced by the
// simulation core. The layout is deliberately pointer-free so a host can
// snapshot and restore combatants by assignment for rollback networking.
package state

// MaxResources is the number of resource slots carried by every combatant.
const MaxResources = 8

// MaxFrame is the saturation ceiling for the per-state frame counter.
const MaxFrame = ^uint16(0)

// CharacterState captures one combatant's position in its character state
// machine. It is a fixed-layout value: copying it never aliases pack memory.
type CharacterState struct {
	// Current indexes the pack's state table. State 0 is idle by convention.
	Current uint16 `json:"current"`
	// Frame is the frame counter within the current state instance. It
	// saturates at MaxFrame rather than wrapping.
	Frame uint16 `json:"frame"`
	// InstanceDuration overrides the state's declared total duration for
	// this instance when nonzero.
	InstanceDuration uint16 `json:"instanceDuration,omitempty"`
	// HitConfirmed opens on-hit cancel windows for this state instance.
	HitConfirmed bool `json:"hitConfirmed,omitempty"`
	// BlockConfirmed opens on-block cancel windows for this state instance.
	BlockConfirmed bool `json:"blockConfirmed,omitempty"`
	// Resources holds the combatant's resource pools (meter, stocks, ...).
	Resources [MaxResources]int32 `json:"resources"`
}
