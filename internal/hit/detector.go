// Package hit computes hit results between an attacker and defender for the
// current frame using the pack's window tables and the geometry overlap
// dispatcher.
package hit

import (
	"fightstate/runtime/internal/geom"
	"fightstate/runtime/internal/pack"
	"fightstate/runtime/internal/state"
)

// MaxResults bounds the number of results a single CheckHits call can
// produce.
const MaxResults = 8

// Result describes one hit window connecting with a defender hurtbox.
type Result struct {
	// Move is the attacker's state id at the time of the hit.
	Move uint16 `json:"move"`
	// Window is the hit-window index within the pack's hit window table.
	Window uint16 `json:"window"`

	Damage uint16 `json:"damage"`
	Chip   uint16 `json:"chip"`

	Hitstun   uint8 `json:"hitstun"`
	Blockstun uint8 `json:"blockstun"`
	Hitstop   uint8 `json:"hitstop"`
	Guard     uint8 `json:"guard"`

	HitPush   geom.Coord `json:"hitPush"`
	BlockPush geom.Coord `json:"blockPush"`
}

// CheckHits tests every hit window active on the attacker's current frame
// against every hurt window active on the defender's current frame, with
// shapes offset by the respective world positions. At most one result is
// recorded per hit window (the first overlapping hurtbox), and at most
// MaxResults in total. Results are appended to buf; passing a buffer with
// capacity MaxResults keeps the call allocation-free.
func CheckHits(
	attacker *state.CharacterState, attackerPack *pack.Pack, attackerPos geom.Vec,
	defender *state.CharacterState, defenderPack *pack.Pack, defenderPos geom.Vec,
	buf []Result,
) []Result {
	if attacker == nil || attackerPack == nil || defender == nil || defenderPack == nil {
		return buf
	}
	atkState, ok := attackerPack.State(int(attacker.Current))
	if !ok {
		return buf
	}
	defState, ok := defenderPack.State(int(defender.Current))
	if !ok {
		return buf
	}

	for i := uint16(0); i < atkState.HitCount && len(buf) < MaxResults; i++ {
		windowIndex := atkState.HitFirst + i
		window, ok := attackerPack.HitWindow(int(windowIndex))
		if !ok {
			continue
		}
		if attacker.Frame < window.StartF || attacker.Frame > window.EndF {
			continue
		}
		if hitConnects(attackerPack, window, attackerPos, defender, defenderPack, defState, defenderPos) {
			buf = append(buf, Result{
				Move:      attacker.Current,
				Window:    windowIndex,
				Damage:    window.Damage,
				Chip:      window.Chip,
				Hitstun:   window.Hitstun,
				Blockstun: window.Blockstun,
				Hitstop:   window.Hitstop,
				Guard:     window.Guard,
				HitPush:   window.HitPush,
				BlockPush: window.BlockPush,
			})
		}
	}
	return buf
}

func hitConnects(
	attackerPack *pack.Pack, window pack.HitWindow, attackerPos geom.Vec,
	defender *state.CharacterState, defenderPack *pack.Pack, defState pack.StateRecord, defenderPos geom.Vec,
) bool {
	for j := uint16(0); j < defState.HurtCount; j++ {
		hurt, ok := defenderPack.HurtWindow(int(defState.HurtFirst + j))
		if !ok {
			continue
		}
		if defender.Frame < hurt.StartF || defender.Frame > hurt.EndF {
			continue
		}
		if hurt.Flags&pack.HurtInvulnerable != 0 {
			continue
		}
		if windowsOverlap(attackerPack, window.ShapeFirst, window.ShapeCount, attackerPos,
			defenderPack, hurt.ShapeFirst, hurt.ShapeCount, defenderPos) {
			return true
		}
	}
	return false
}

func windowsOverlap(
	apk *pack.Pack, aFirst, aCount uint16, apos geom.Vec,
	dpk *pack.Pack, dFirst, dCount uint16, dpos geom.Vec,
) bool {
	for a := uint16(0); a < aCount; a++ {
		atkShape, ok := apk.Shape(int(aFirst + a))
		if !ok {
			continue
		}
		for d := uint16(0); d < dCount; d++ {
			defShape, ok := dpk.Shape(int(dFirst + d))
			if !ok {
				continue
			}
			if geom.OverlapAt(atkShape, apos, defShape, dpos) {
				return true
			}
		}
	}
	return false
}

// ReportHit opens the on-hit cancel window on the attacker's state. It does
// not run collision detection; the host calls it after deciding a CheckHits
// result connected as a clean hit.
func ReportHit(st *state.CharacterState) {
	if st == nil {
		return
	}
	st.HitConfirmed = true
}

// ReportBlock opens the on-block cancel window on the attacker's state.
func ReportBlock(st *state.CharacterState) {
	if st == nil {
		return
	}
	st.BlockConfirmed = true
}
