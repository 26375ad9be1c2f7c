package match

import (
	"time"

	"fightstate/runtime/internal/geom"
	"fightstate/runtime/internal/pack"
	"fightstate/runtime/internal/resource"
	"fightstate/runtime/internal/sim"
	"fightstate/runtime/internal/state"
)

// CombatantConfig describes one participant added to the match.
type CombatantConfig struct {
	ID        string
	Character string
	Pack      *pack.Pack
	Pos       geom.Vec
	Facing    int8
	MaxHealth int32
}

type combatant struct {
	id        string
	character string
	pk        *pack.Pack

	st     state.CharacterState
	pos    geom.Vec
	facing int8

	health    int32
	maxHealth int32
	stun      uint16
	hitstop   uint8
	blocking  bool

	// pendingTarget holds the cancel request staged for the next tick.
	pendingTarget uint16
	hasPending    bool

	lastHeartbeat time.Time
	lastRTT       time.Duration
}

func newCombatant(cfg CombatantConfig, defaultHealth int32) *combatant {
	c := &combatant{
		id:        cfg.ID,
		character: cfg.Character,
		pk:        cfg.Pack,
		pos:       cfg.Pos,
		facing:    cfg.Facing,
		maxHealth: cfg.MaxHealth,
	}
	if c.facing == 0 {
		c.facing = 1
	}
	if c.maxHealth <= 0 {
		c.maxHealth = defaultHealth
	}
	c.health = c.maxHealth
	resource.Init(&c.st, c.pk)
	return c
}

func (c *combatant) reset() {
	c.st = state.CharacterState{}
	resource.Init(&c.st, c.pk)
	c.health = c.maxHealth
	c.stun = 0
	c.hitstop = 0
	c.blocking = false
	c.hasPending = false
}

func (c *combatant) view() sim.CombatantView {
	return sim.CombatantView{
		ID:        c.id,
		Character: c.character,
		State:     c.st,
		Pos:       c.pos,
		Facing:    c.facing,
		Health:    c.health,
		MaxHealth: c.maxHealth,
		Stun:      c.stun,
		Hitstop:   c.hitstop,
		Blocking:  c.blocking,
	}
}

func (c *combatant) restore(view sim.CombatantView) {
	c.st = view.State
	c.pos = view.Pos
	if view.Facing != 0 {
		c.facing = view.Facing
	}
	c.health = view.Health
	if view.MaxHealth > 0 {
		c.maxHealth = view.MaxHealth
	}
	c.stun = view.Stun
	c.hitstop = view.Hitstop
	c.blocking = view.Blocking
	c.hasPending = false
}
