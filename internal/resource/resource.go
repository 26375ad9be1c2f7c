// Package resource implements the combatant resource economy: pool
// initialization, precondition checks and cost application against the
// pack's resource records.
package resource

import (
	"fightstate/runtime/internal/pack"
	"fightstate/runtime/internal/state"
)

// Init resets every resource slot to zero, then applies each defined
// starting value. Slots without a definition stay zero.
func Init(st *state.CharacterState, pk *pack.Pack) {
	if st == nil {
		return
	}
	for i := range st.Resources {
		st.Resources[i] = 0
	}
	if pk == nil {
		return
	}
	for i, n := 0, pk.ResourceDefCount(); i < n; i++ {
		def, ok := pk.ResourceDef(i)
		if !ok {
			continue
		}
		st.Resources[i] = def.Start
	}
}

// Value returns the resource at the given slot, or 0 when the index is out
// of range.
func Value(st *state.CharacterState, index int) int32 {
	if st == nil || index < 0 || index >= state.MaxResources {
		return 0
	}
	return st.Resources[index]
}

// Set stores a resource value. Out-of-range indices are a no-op.
func Set(st *state.CharacterState, index int, value int32) {
	if st == nil || index < 0 || index >= state.MaxResources {
		return
	}
	st.Resources[index] = value
}

// CheckPreconditions reports whether every resource precondition attached to
// the target state holds against the current values. Bounds are inclusive.
// A target without preconditions always passes.
func CheckPreconditions(st *state.CharacterState, pk *pack.Pack, target uint16) bool {
	if st == nil || pk == nil {
		return false
	}
	x, ok := pk.Extras(target)
	if !ok {
		// Virtual action targets and packs without extras carry no
		// preconditions.
		return true
	}
	for i := uint32(0); i < x.PrecondCount; i++ {
		cond, ok := pk.Precondition(int(x.PrecondFirst + i))
		if !ok {
			return false
		}
		value := Value(st, int(cond.Index))
		if value < cond.Min || value > cond.Max {
			return false
		}
	}
	return true
}

// ApplyCosts deducts every resource cost attached to the target state using
// saturating subtraction and reports whether every cost was fully payable.
//
// Costs are deducted even when the pool cannot cover them, clamping the slot
// to zero. Pair with CheckPreconditions when a transition must not fire
// underfunded.
func ApplyCosts(st *state.CharacterState, pk *pack.Pack, target uint16) bool {
	if st == nil || pk == nil {
		return false
	}
	x, ok := pk.Extras(target)
	if !ok {
		return true
	}
	paid := true
	for i := uint32(0); i < x.CostCount; i++ {
		cost, ok := pk.Cost(int(x.CostFirst + i))
		if !ok {
			paid = false
			continue
		}
		index := int(cost.Index)
		value := Value(st, index)
		if value < cost.Amount {
			paid = false
			Set(st, index, 0)
			continue
		}
		Set(st, index, value-cost.Amount)
	}
	return paid
}

// ApplyDeltas applies every resource delta attached to the target state
// whose trigger matches, clamping the result into [0, max] when the slot has
// a defined maximum.
func ApplyDeltas(st *state.CharacterState, pk *pack.Pack, target uint16, trigger uint16) {
	if st == nil || pk == nil {
		return
	}
	x, ok := pk.Extras(target)
	if !ok {
		return
	}
	for i := uint32(0); i < x.DeltaCount; i++ {
		delta, ok := pk.Delta(int(x.DeltaFirst + i))
		if !ok || delta.Trigger != trigger {
			continue
		}
		index := int(delta.Index)
		value := Value(st, index) + delta.Amount
		if value < 0 {
			value = 0
		}
		if def, ok := pk.ResourceDef(index); ok && def.Max > 0 && value > def.Max {
			value = def.Max
		}
		Set(st, index, value)
	}
}

// Delta trigger values carried by pack delta records.
const (
	// TriggerEnter applies when the state is entered.
	TriggerEnter = 0
	// TriggerHit applies when the state's attack lands.
	TriggerHit = 1
	// TriggerBlock applies when the state's attack is blocked.
	TriggerBlock = 2
)
