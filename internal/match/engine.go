// Package match hosts a full fight: it owns the combatants, stages their
// commands, advances every character state machine each tick, resolves hit
// detection between pairs and publishes combat events. It implements
// sim.EngineCore so the fixed-timestep loop can drive it.
package match

import (
	"context"
	"fmt"
	"sync"

	"fightstate/runtime/internal/cancel"
	"fightstate/runtime/internal/geom"
	"fightstate/runtime/internal/hit"
	"fightstate/runtime/internal/pack"
	"fightstate/runtime/internal/resource"
	"fightstate/runtime/internal/state"
	"fightstate/runtime/internal/sim"
	"fightstate/runtime/logging"
	"fightstate/runtime/logging/combat"
)

// Config tunes stage geometry and default combatant stats.
type Config struct {
	// StageHalfWidth bounds combatant X positions to [-w, +w]. Zero
	// disables clamping.
	StageHalfWidth geom.Coord
	// PushSeparation is the per-tick distance applied to each combatant of
	// an overlapping pushbox pair.
	PushSeparation geom.Coord
	// DefaultMaxHealth seeds combatants whose config omits a health pool.
	DefaultMaxHealth int32
}

// DefaultConfig returns the stage tuning used when the host passes a zero
// config.
func DefaultConfig() Config {
	return Config{
		StageHalfWidth:   geom.CoordFromPixels(384),
		PushSeparation:   2 * geom.CoordOne,
		DefaultMaxHealth: 1000,
	}
}

// Engine is the authoritative match simulation.
type Engine struct {
	mu   sync.Mutex
	deps sim.Deps
	cfg  Config

	combatants []*combatant
	byID       map[string]*combatant

	tick uint64
	hits []sim.HitEvent

	// struck tracks hit windows that already connected during the current
	// state instance, keyed by combatant index, so a multi-frame active
	// window lands once.
	struck []uint64
}

// New constructs an empty match engine.
func New(cfg Config, deps sim.Deps) *Engine {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	return &Engine{
		deps: deps,
		cfg:  cfg,
		byID: make(map[string]*combatant),
	}
}

// AddCombatant registers a participant. IDs must be unique.
func (e *Engine) AddCombatant(cfg CombatantConfig) error {
	if e == nil {
		return fmt.Errorf("match: nil engine")
	}
	if cfg.ID == "" {
		return fmt.Errorf("match: combatant id required")
	}
	if cfg.Pack == nil {
		return fmt.Errorf("match: combatant %q has no pack", cfg.ID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, dup := e.byID[cfg.ID]; dup {
		return fmt.Errorf("match: duplicate combatant id %q", cfg.ID)
	}
	c := newCombatant(cfg, e.cfg.DefaultMaxHealth)
	e.combatants = append(e.combatants, c)
	e.byID[c.id] = c
	e.struck = append(e.struck, 0)
	return nil
}

// SetBlocking toggles a combatant's guard. Blocked hits deal chip damage and
// blockstun instead of the full hit payload.
func (e *Engine) SetBlocking(actorID string, blocking bool) bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.byID[actorID]
	if !ok {
		return false
	}
	c.blocking = blocking
	return true
}

// Deps returns the injected infrastructure dependencies.
func (e *Engine) Deps() sim.Deps {
	if e == nil {
		return sim.Deps{}
	}
	return e.deps
}

// Apply stages drained commands onto combatant state.
func (e *Engine) Apply(cmds []sim.Command) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, cmd := range cmds {
		c, ok := e.byID[cmd.ActorID]
		if !ok {
			continue
		}
		switch cmd.Type {
		case sim.CommandCancel:
			if cmd.Cancel == nil {
				continue
			}
			c.pendingTarget = cmd.Cancel.Target
			c.hasPending = true
		case sim.CommandReset:
			c.reset()
		case sim.CommandHeartbeat:
			if cmd.Heartbeat != nil {
				c.lastHeartbeat = cmd.Heartbeat.ReceivedAt
				c.lastRTT = cmd.Heartbeat.RTT
			}
		}
	}
	return nil
}

// Step advances the whole match by one tick: staged cancels resolve, every
// state machine advances one frame, hits are detected and applied, and
// pushboxes separate.
func (e *Engine) Step() {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tick++
	e.hits = e.hits[:0]

	e.advanceCombatants()
	e.resolveHits()
	e.separatePushboxes()
	e.clampToStage()
}

func (e *Engine) advanceCombatants() {
	for i, c := range e.combatants {
		if c.hitstop > 0 {
			// Hitstop freezes the state machine; staged input survives
			// until the freeze ends.
			c.hitstop--
			continue
		}
		if c.stun > 0 {
			c.stun--
			c.hasPending = false
		}

		var in sim.Input
		if c.hasPending {
			in = sim.Input{Target: c.pendingTarget, HasTarget: true}
			c.hasPending = false
		}

		prev := c.st
		result := sim.NextFrame(c.st, c.pk, in)
		c.st = result.State

		if in.HasTarget {
			e.reportCancel(c, prev, in.Target)
		}
		if c.st.Frame == 0 && c.st.Current != prev.Current {
			e.struck[i] = 0
		}
		if result.MoveEnded {
			e.publish(combat.MoveEnded(e.tick, c.id, c.st.Current))
			if c.st.Current != 0 {
				c.st.Current = 0
				c.st.Frame = 0
				c.st.InstanceDuration = 0
				c.st.HitConfirmed = false
				c.st.BlockConfirmed = false
				e.struck[i] = 0
			}
		}
	}
}

func (e *Engine) reportCancel(c *combatant, prev state.CharacterState, target uint16) {
	accepted := c.st.Current == target && c.st.Frame == 0
	if !accepted && int(target) >= c.pk.StateCount() {
		// Virtual actions never change the current state; acceptance is
		// judged against the pre-step state.
		accepted = cancel.CanCancelTo(&prev, c.pk, target)
	}
	e.publish(combat.Cancel(e.tick, c.id, prev.Current, target, accepted))
}

func (e *Engine) resolveHits() {
	var buf [hit.MaxResults]hit.Result
	for i, attacker := range e.combatants {
		if attacker.health <= 0 || attacker.hitstop > 0 {
			continue
		}
		for j, defender := range e.combatants {
			if i == j || defender.health <= 0 {
				continue
			}
			results := hit.CheckHits(
				&attacker.st, attacker.pk, attacker.pos,
				&defender.st, defender.pk, defender.pos,
				buf[:0],
			)
			for _, result := range results {
				e.applyHit(i, attacker, defender, result)
			}
		}
	}
}

func (e *Engine) applyHit(attackerIdx int, attacker, defender *combatant, result hit.Result) {
	atkState, ok := attacker.pk.State(int(attacker.st.Current))
	if !ok {
		return
	}
	if rel := result.Window - atkState.HitFirst; rel < 64 {
		bit := uint64(1) << rel
		if e.struck[attackerIdx]&bit != 0 {
			return
		}
		e.struck[attackerIdx] |= bit
	}

	blocked := defender.blocking && result.Guard != pack.GuardUnblockable
	var damage int32
	if blocked {
		damage = int32(result.Chip)
		defender.stun = maxStun(defender.stun, uint16(result.Blockstun))
		defender.pos.X += result.BlockPush * geom.Coord(attacker.facing)
		hit.ReportBlock(&attacker.st)
		resource.ApplyDeltas(&attacker.st, attacker.pk, attacker.st.Current, resource.TriggerBlock)
	} else {
		damage = int32(result.Damage)
		defender.stun = maxStun(defender.stun, uint16(result.Hitstun))
		defender.pos.X += result.HitPush * geom.Coord(attacker.facing)
		hit.ReportHit(&attacker.st)
		resource.ApplyDeltas(&attacker.st, attacker.pk, attacker.st.Current, resource.TriggerHit)
	}
	if result.Hitstop > attacker.hitstop {
		attacker.hitstop = result.Hitstop
	}
	if result.Hitstop > defender.hitstop {
		defender.hitstop = result.Hitstop
	}

	defender.health -= damage
	if defender.health < 0 {
		defender.health = 0
	}

	e.hits = append(e.hits, sim.HitEvent{
		Tick:       e.tick,
		AttackerID: attacker.id,
		DefenderID: defender.id,
		Blocked:    blocked,
		Result:     result,
	})
	e.publish(combat.Hit(e.tick, attacker.id, defender.id, result, blocked))
	if defender.health == 0 {
		e.publish(combat.Knockout(e.tick, attacker.id, defender.id))
	}
}

func (e *Engine) separatePushboxes() {
	step := e.cfg.PushSeparation
	if step <= 0 {
		return
	}
	for i := 0; i < len(e.combatants); i++ {
		for j := i + 1; j < len(e.combatants); j++ {
			a, b := e.combatants[i], e.combatants[j]
			if a.health <= 0 || b.health <= 0 {
				continue
			}
			if !pushboxesOverlap(a, b) {
				continue
			}
			half := step / 2
			if a.pos.X <= b.pos.X {
				a.pos.X -= half
				b.pos.X += half
			} else {
				a.pos.X += half
				b.pos.X -= half
			}
		}
	}
}

func pushboxesOverlap(a, b *combatant) bool {
	aState, ok := a.pk.State(int(a.st.Current))
	if !ok {
		return false
	}
	bState, ok := b.pk.State(int(b.st.Current))
	if !ok {
		return false
	}
	for i := uint16(0); i < aState.PushCount; i++ {
		aw, ok := a.pk.PushWindow(int(aState.PushFirst + i))
		if !ok || a.st.Frame < aw.StartF || a.st.Frame > aw.EndF {
			continue
		}
		for j := uint16(0); j < bState.PushCount; j++ {
			bw, ok := b.pk.PushWindow(int(bState.PushFirst + j))
			if !ok || b.st.Frame < bw.StartF || b.st.Frame > bw.EndF {
				continue
			}
			if shapeSetsOverlap(a, aw.ShapeFirst, aw.ShapeCount, b, bw.ShapeFirst, bw.ShapeCount) {
				return true
			}
		}
	}
	return false
}

func shapeSetsOverlap(a *combatant, aFirst, aCount uint16, b *combatant, bFirst, bCount uint16) bool {
	for i := uint16(0); i < aCount; i++ {
		as, ok := a.pk.Shape(int(aFirst + i))
		if !ok {
			continue
		}
		for j := uint16(0); j < bCount; j++ {
			bs, ok := b.pk.Shape(int(bFirst + j))
			if !ok {
				continue
			}
			if geom.OverlapAt(as, a.pos, bs, b.pos) {
				return true
			}
		}
	}
	return false
}

func (e *Engine) clampToStage() {
	limit := e.cfg.StageHalfWidth
	if limit <= 0 {
		return
	}
	for _, c := range e.combatants {
		if c.pos.X < -limit {
			c.pos.X = -limit
		}
		if c.pos.X > limit {
			c.pos.X = limit
		}
	}
}

// Snapshot copies the externally visible match state.
func (e *Engine) Snapshot() sim.Snapshot {
	if e == nil {
		return sim.Snapshot{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	snapshot := sim.Snapshot{Tick: e.tick}
	if len(e.combatants) > 0 {
		snapshot.Combatants = make([]sim.CombatantView, 0, len(e.combatants))
		for _, c := range e.combatants {
			snapshot.Combatants = append(snapshot.Combatants, c.view())
		}
	}
	if len(e.hits) > 0 {
		snapshot.Hits = append([]sim.HitEvent(nil), e.hits...)
	}
	return snapshot
}

// Keyframe captures the rollback state for the current tick.
func (e *Engine) Keyframe() sim.Keyframe {
	if e == nil {
		return sim.Keyframe{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	frame := sim.Keyframe{Tick: e.tick}
	if len(e.combatants) > 0 {
		frame.Combatants = make([]sim.CombatantView, 0, len(e.combatants))
		for _, c := range e.combatants {
			frame.Combatants = append(frame.Combatants, c.view())
		}
	}
	return frame
}

// Restore rewinds the match to a previously captured keyframe. Every
// keyframe combatant must still exist; unknown IDs abort the restore.
func (e *Engine) Restore(frame sim.Keyframe) bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, view := range frame.Combatants {
		if _, ok := e.byID[view.ID]; !ok {
			return false
		}
	}
	for _, view := range frame.Combatants {
		e.byID[view.ID].restore(view)
	}
	for i := range e.struck {
		e.struck[i] = 0
	}
	e.tick = frame.Tick
	e.hits = e.hits[:0]
	return true
}

// Tick reports the number of executed steps.
func (e *Engine) Tick() uint64 {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

func (e *Engine) publish(event logging.Event) {
	if e.deps.Publisher == nil {
		return
	}
	e.deps.Publisher.Publish(context.Background(), event)
}

func maxStun(a, b uint16) uint16 {
	if a > b {
		return a
	}
	return b
}

// Ensure Engine satisfies the loop contract.
var _ sim.EngineCore = (*Engine)(nil)
