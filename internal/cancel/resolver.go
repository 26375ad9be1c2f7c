// Package cancel evaluates whether a transition out of the current character
// state is legal right now. Precedence is fixed: virtual action flags, then
// explicit denials, then explicit chain-cancel entries, then tag-based rules.
package cancel

import (
	"bytes"

	"fightstate/runtime/internal/pack"
	"fightstate/runtime/internal/resource"
	"fightstate/runtime/internal/state"
)

// CanCancelTo reports whether the combatant may transition from its current
// state into target on this frame. Target may be a state id or one of the
// four virtual action ids offset from the pack's state count.
func CanCancelTo(st *state.CharacterState, pk *pack.Pack, target uint16) bool {
	if st == nil || pk == nil {
		return false
	}
	stateCount := uint16(pk.StateCount())

	// Tier 1: virtual actions are granted purely by the current state's
	// flag bits.
	if target >= stateCount {
		action := uint(target - stateCount)
		if action >= pack.ActionCount {
			return false
		}
		rec, ok := pk.State(int(st.Current))
		if !ok {
			return false
		}
		return rec.Flags&(1<<action) != 0
	}

	// Tier 2: an explicit denial overrides everything below.
	if pk.Denied(st.Current, target) {
		return false
	}

	// Tier 3: explicit chain-cancel entry, gated by resource preconditions.
	if hasChainTarget(pk, st.Current, target) {
		return resource.CheckPreconditions(st, pk, target)
	}

	// Tier 4: tag-based rules.
	for i, n := 0, pk.CancelRuleCount(); i < n; i++ {
		rule, ok := pk.CancelRule(i)
		if !ok {
			continue
		}
		if ruleMatches(st, pk, rule, target) && resource.CheckPreconditions(st, pk, target) {
			return true
		}
	}
	return false
}

// AvailableCancels returns the explicit chain-cancel targets of the current
// state whose resource preconditions currently hold. Tag-derived matches are
// intentionally excluded: this enumerates the authored chain list, not every
// rule that could apply.
func AvailableCancels(st *state.CharacterState, pk *pack.Pack) []uint16 {
	return AvailableCancelsBuf(st, pk, nil)
}

// AvailableCancelsBuf appends the available explicit chain-cancel targets to
// buf and returns it. Passing a buffer with spare capacity avoids
// allocation.
func AvailableCancelsBuf(st *state.CharacterState, pk *pack.Pack, buf []uint16) []uint16 {
	if st == nil || pk == nil {
		return buf
	}
	x, ok := pk.Extras(st.Current)
	if !ok {
		return buf
	}
	for i := uint32(0); i < x.ChainCount; i++ {
		target, ok := pk.CancelTarget(int(x.ChainFirst + i))
		if !ok {
			continue
		}
		if resource.CheckPreconditions(st, pk, target) {
			buf = append(buf, target)
		}
	}
	return buf
}

func hasChainTarget(pk *pack.Pack, from, to uint16) bool {
	x, ok := pk.Extras(from)
	if !ok {
		return false
	}
	for i := uint32(0); i < x.ChainCount; i++ {
		target, ok := pk.CancelTarget(int(x.ChainFirst + i))
		if ok && target == to {
			return true
		}
	}
	return false
}

func ruleMatches(st *state.CharacterState, pk *pack.Pack, rule pack.CancelRule, target uint16) bool {
	src, _ := pk.String(uint32(rule.SrcOff), uint32(rule.SrcLen))
	if rule.SrcLen != 0 && !stateHasTag(pk, st.Current, src) {
		return false
	}
	dst, _ := pk.String(uint32(rule.DstOff), uint32(rule.DstLen))
	if rule.DstLen != 0 && !stateHasTag(pk, target, dst) {
		return false
	}
	switch rule.Condition {
	case pack.CondAlways:
	case pack.CondOnHit:
		if !st.HitConfirmed {
			return false
		}
	case pack.CondOnBlock:
		if !st.BlockConfirmed {
			return false
		}
	case pack.CondOnWhiff:
		if st.HitConfirmed || st.BlockConfirmed {
			return false
		}
	default:
		return false
	}
	if rule.MinFrame != 0 && st.Frame < rule.MinFrame {
		return false
	}
	if rule.MaxFrame != 0 && st.Frame > rule.MaxFrame {
		return false
	}
	return true
}

func stateHasTag(pk *pack.Pack, stateID uint16, tag []byte) bool {
	r, ok := pk.TagsFor(stateID)
	if !ok {
		return false
	}
	for i := uint16(0); i < r.Count; i++ {
		candidate, ok := pk.TagString(int(r.First + i))
		if ok && bytes.Equal(candidate, tag) {
			return true
		}
	}
	return false
}
