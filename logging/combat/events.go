// Package combat builds the structured events emitted by the match engine
// during attack resolution and cancel handling.
package combat

import (
	"fightstate/runtime/internal/hit"
	"fightstate/runtime/logging"
)

// Event type names emitted by the match engine.
const (
	EventHitLanded      logging.EventType = "combat.hit_landed"
	EventHitBlocked     logging.EventType = "combat.hit_blocked"
	EventCancelAccepted logging.EventType = "combat.cancel_accepted"
	EventCancelRejected logging.EventType = "combat.cancel_rejected"
	EventMoveEnded      logging.EventType = "combat.move_ended"
	EventKnockout       logging.EventType = "combat.knockout"
)

// HitPayload carries the resolved hit result alongside the combatants.
type HitPayload struct {
	Result  hit.Result `json:"result"`
	Blocked bool       `json:"blocked"`
}

// Hit builds the event for an attack connecting on hit or block.
func Hit(tick uint64, attackerID, defenderID string, result hit.Result, blocked bool) logging.Event {
	eventType := EventHitLanded
	if blocked {
		eventType = EventHitBlocked
	}
	return logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: attackerID, Kind: logging.EntityKindCombatant},
		Targets:  []logging.EntityRef{{ID: defenderID, Kind: logging.EntityKindCombatant}},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  HitPayload{Result: result, Blocked: blocked},
	}
}

// CancelPayload carries the requested cancel target.
type CancelPayload struct {
	From   uint16 `json:"from"`
	Target uint16 `json:"target"`
}

// Cancel builds the event for a cancel request being accepted or rejected.
func Cancel(tick uint64, actorID string, from, target uint16, accepted bool) logging.Event {
	eventType := EventCancelAccepted
	severity := logging.SeverityInfo
	if !accepted {
		eventType = EventCancelRejected
		severity = logging.SeverityDebug
	}
	return logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: actorID, Kind: logging.EntityKindCombatant},
		Severity: severity,
		Category: logging.CategoryCombat,
		Payload:  CancelPayload{From: from, Target: target},
	}
}

// MoveEnded builds the event for a state instance reaching its duration.
func MoveEnded(tick uint64, actorID string, stateID uint16) logging.Event {
	return logging.Event{
		Type:     EventMoveEnded,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: actorID, Kind: logging.EntityKindCombatant},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
	}.WithExtra("state", stateID)
}

// Knockout builds the event for a combatant's health reaching zero.
func Knockout(tick uint64, attackerID, defenderID string) logging.Event {
	return logging.Event{
		Type:     EventKnockout,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: attackerID, Kind: logging.EntityKindCombatant},
		Targets:  []logging.EntityRef{{ID: defenderID, Kind: logging.EntityKindCombatant}},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
	}
}
