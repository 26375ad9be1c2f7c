// Package sim advances character state frame by frame and hosts the engine,
// command and loop plumbing around the per-frame stepper.
package sim

import (
	"fightstate/runtime/internal/cancel"
	"fightstate/runtime/internal/pack"
	"fightstate/runtime/internal/resource"
	"fightstate/runtime/internal/state"
)

// Input carries the combatant's requested transition for this frame.
type Input struct {
	// Target is a state id or virtual action id to cancel into.
	Target uint16
	// HasTarget distinguishes "cancel into state 0" from no request.
	HasTarget bool
}

// FrameResult is the outcome of advancing one frame.
type FrameResult struct {
	State state.CharacterState
	// MoveEnded reports that the instance reached its full duration this
	// frame. The host decides what state follows.
	MoveEnded bool
}

// NextFrame advances the character by exactly one frame. It is a pure
// function of its inputs: the passed state is never mutated and the same
// arguments always produce the same result.
//
// A requested transition is taken only when the target is a real state and
// the cancel resolver allows it. Virtual action targets never become the
// current state; the host interprets them. When no transition fires, the
// frame counter advances with saturation at its maximum value.
func NextFrame(st state.CharacterState, pk *pack.Pack, in Input) FrameResult {
	if pk == nil {
		return FrameResult{State: st}
	}
	if in.HasTarget && int(in.Target) < pk.StateCount() && cancel.CanCancelTo(&st, pk, in.Target) {
		next := st
		next.Current = in.Target
		next.Frame = 0
		next.InstanceDuration = 0
		next.HitConfirmed = false
		next.BlockConfirmed = false
		resource.ApplyCosts(&next, pk, in.Target)
		resource.ApplyDeltas(&next, pk, in.Target, resource.TriggerEnter)
		return FrameResult{State: next}
	}

	next := st
	if next.Frame < state.MaxFrame {
		next.Frame++
	}
	rec, ok := pk.State(int(next.Current))
	if !ok {
		return FrameResult{State: next}
	}
	duration := rec.Total
	if next.InstanceDuration != 0 {
		duration = next.InstanceDuration
	}
	return FrameResult{State: next, MoveEnded: duration != 0 && next.Frame >= duration}
}
