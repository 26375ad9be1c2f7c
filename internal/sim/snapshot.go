package sim

import (
	"fightstate/runtime/internal/geom"
	"fightstate/runtime/internal/hit"
	"fightstate/runtime/internal/state"
)

// CombatantView is the per-combatant state exposed to non-simulation
// callers. It is a plain value; snapshots never alias engine memory.
type CombatantView struct {
	ID        string               `json:"id"`
	Character string               `json:"character"`
	State     state.CharacterState `json:"state"`
	Pos       geom.Vec             `json:"pos"`
	Facing    int8                 `json:"facing"`
	Health    int32                `json:"health"`
	MaxHealth int32                `json:"maxHealth"`
	Stun      uint16               `json:"stun,omitempty"`
	Hitstop   uint8                `json:"hitstop,omitempty"`
	Blocking  bool                 `json:"blocking,omitempty"`
}

// HitEvent reports one resolved attack connection for the tick.
type HitEvent struct {
	Tick       uint64     `json:"tick"`
	AttackerID string     `json:"attackerId"`
	DefenderID string     `json:"defenderId"`
	Blocked    bool       `json:"blocked"`
	Result     hit.Result `json:"result"`
}

// Snapshot captures the state exposed to non-simulation callers after a
// tick.
type Snapshot struct {
	Tick       uint64          `json:"tick"`
	Combatants []CombatantView `json:"combatants,omitempty"`
	Hits       []HitEvent      `json:"hits,omitempty"`
}

// Keyframe is an immutable per-tick snapshot stored in the rollback journal.
type Keyframe struct {
	Tick       uint64          `json:"tick"`
	Sequence   uint64          `json:"sequence"`
	Combatants []CombatantView `json:"combatants,omitempty"`
}

// KeyframeRecordResult reports journal bookkeeping after recording a
// keyframe.
type KeyframeRecordResult struct {
	Sequence      uint64
	Evicted       int
	OldestTick    uint64
	NewestTick    uint64
	JournalLength int
}
