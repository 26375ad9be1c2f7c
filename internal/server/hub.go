// Package server wires the match engine, tick loop, rollback journal and
// websocket subscribers into a running game server.
package server

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"fightstate/runtime/internal/journal"
	"fightstate/runtime/internal/match"
	"fightstate/runtime/internal/net/proto"
	"fightstate/runtime/internal/sim"
)

// HubConfig tunes loop cadence and keyframe retention.
type HubConfig struct {
	TickRate         int
	KeyframeInterval int
	JournalCapacity  int
	CommandCapacity  int
	PerActorLimit    int
}

// DefaultHubConfig returns the cadence used when the host passes a zero
// config.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		TickRate:         60,
		KeyframeInterval: 6,
		JournalCapacity:  journal.DefaultCapacity,
		CommandCapacity:  256,
		PerActorLimit:    16,
	}
}

// Hub owns the live match, its loop and every subscriber connection.
type Hub struct {
	engine  *match.Engine
	loop    *sim.Loop
	journal *journal.Journal
	cfg     HubConfig

	mu          sync.Mutex
	subscribers map[string]sender
	claimed     map[string]bool
	roster      []string

	lastKeyframeSeq uint64
}

// sender is the slice of the session surface the hub writes to.
type sender interface {
	SendJSON(v any) error
	Close()
}

// NewHub builds a hub around an engine whose combatants are already
// registered. Roster lists the combatant IDs clients may claim, in order.
func NewHub(engine *match.Engine, cfg HubConfig, roster []string) *Hub {
	if cfg.TickRate <= 0 {
		cfg = DefaultHubConfig()
	}
	h := &Hub{
		engine:      engine,
		journal:     journal.New(cfg.JournalCapacity),
		cfg:         cfg,
		subscribers: make(map[string]sender),
		claimed:     make(map[string]bool),
		roster:      append([]string(nil), roster...),
	}
	h.loop = sim.NewLoop(engine, sim.LoopConfig{
		TickRate:        cfg.TickRate,
		CatchupMaxTicks: 4,
		CommandCapacity: cfg.CommandCapacity,
		PerActorLimit:   cfg.PerActorLimit,
		WarningStep:     cfg.CommandCapacity / 2,
	}, sim.LoopHooks{
		AfterStep: h.afterStep,
	})
	return h
}

// Run drives the fixed-timestep loop until stop closes.
func (h *Hub) Run(stop <-chan struct{}) {
	h.loop.Run(stop)
}

// Advance executes one tick synchronously. Tests and replay tools use it in
// place of Run.
func (h *Hub) Advance(now time.Time) sim.LoopStepResult {
	tick := h.engine.Tick() + 1
	result := h.loop.Advance(sim.LoopTickContext{Tick: tick, Now: now, Delta: 1.0 / float64(h.cfg.TickRate)})
	h.afterStep(result)
	return result
}

// Join claims the next unassigned roster combatant and returns the handshake
// payload.
func (h *Hub) Join() (proto.JoinResponse, error) {
	h.mu.Lock()
	var id string
	for _, candidate := range h.roster {
		if !h.claimed[candidate] {
			h.claimed[candidate] = true
			id = candidate
			break
		}
	}
	h.mu.Unlock()
	if id == "" {
		return proto.JoinResponse{}, fmt.Errorf("server: no free combatant slot")
	}
	snapshot := h.engine.Snapshot()
	return proto.JoinResponse{
		Ver:              proto.Version,
		ID:               id,
		Tick:             snapshot.Tick,
		Combatants:       snapshot.Combatants,
		KeyframeInterval: h.cfg.KeyframeInterval,
	}, nil
}

// Subscribe attaches a session to a claimed combatant, replacing any
// previous connection for the same ID.
func (h *Hub) Subscribe(actorID string, session sender) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.claimed[actorID] {
		return fmt.Errorf("server: combatant %q not joined", actorID)
	}
	if existing, ok := h.subscribers[actorID]; ok {
		existing.Close()
	}
	h.subscribers[actorID] = session
	return nil
}

// Disconnect releases a combatant slot and closes its connection.
func (h *Hub) Disconnect(actorID string) {
	h.mu.Lock()
	session, ok := h.subscribers[actorID]
	delete(h.subscribers, actorID)
	delete(h.claimed, actorID)
	h.mu.Unlock()
	if ok {
		session.Close()
	}
}

// HandleMessage processes one decoded client envelope.
func (h *Hub) HandleMessage(actorID string, msg proto.ClientMessage) {
	switch msg.Type {
	case proto.TypeCancel:
		h.enqueue(actorID, sim.Command{
			ActorID:  actorID,
			Type:     sim.CommandCancel,
			IssuedAt: time.Now(),
			Cancel:   &sim.CancelCommand{Target: msg.Target},
		})
	case proto.TypeBlock:
		h.engine.SetBlocking(actorID, msg.Blocking)
	case proto.TypeReset:
		h.enqueue(actorID, sim.Command{
			ActorID:  actorID,
			Type:     sim.CommandReset,
			IssuedAt: time.Now(),
		})
	case proto.TypeHeartbeat:
		now := time.Now()
		h.enqueue(actorID, sim.Command{
			ActorID:  actorID,
			Type:     sim.CommandHeartbeat,
			IssuedAt: now,
			Heartbeat: &sim.HeartbeatCommand{
				ReceivedAt: now,
				ClientSent: msg.SentAt,
			},
		})
		h.send(actorID, proto.HeartbeatAckMessage{
			Ver:        proto.Version,
			Type:       proto.TypeHeartbeatAck,
			ClientSent: msg.SentAt,
			ServerTime: now.UnixMilli(),
		})
	case proto.TypeKeyframeRequest:
		h.sendKeyframe(actorID, msg.Sequence)
	}
}

func (h *Hub) enqueue(actorID string, cmd sim.Command) {
	if ok, reason := h.loop.Enqueue(cmd); !ok {
		h.send(actorID, proto.RejectMessage{
			Ver:         proto.Version,
			Type:        proto.TypeReject,
			CommandType: string(cmd.Type),
			Reason:      reason,
		})
	}
}

func (h *Hub) sendKeyframe(actorID string, sequence uint64) {
	frame, ok := h.journal.BySequence(sequence)
	if !ok {
		h.send(actorID, proto.KeyframeNackMessage{
			Ver:      proto.Version,
			Type:     proto.TypeKeyframeNack,
			Sequence: sequence,
			Reason:   "expired",
		})
		return
	}
	h.send(actorID, proto.KeyframeMessage{
		Ver:        proto.Version,
		Type:       proto.TypeKeyframe,
		Sequence:   frame.Sequence,
		Tick:       frame.Tick,
		Combatants: frame.Combatants,
	})
}

// Restore rewinds the match to a journaled keyframe.
func (h *Hub) Restore(sequence uint64) bool {
	frame, ok := h.journal.BySequence(sequence)
	if !ok {
		return false
	}
	return h.engine.Restore(frame)
}

func (h *Hub) afterStep(result sim.LoopStepResult) {
	interval := h.cfg.KeyframeInterval
	if interval <= 0 {
		interval = 1
	}
	if result.Tick%uint64(interval) == 0 {
		record := h.journal.Record(sim.Keyframe{
			Tick:       result.Snapshot.Tick,
			Combatants: result.Snapshot.Combatants,
		})
		h.mu.Lock()
		h.lastKeyframeSeq = record.Sequence
		h.mu.Unlock()
	}
	h.broadcast(result.Snapshot)
}

func (h *Hub) broadcast(snapshot sim.Snapshot) {
	h.mu.Lock()
	keyframeSeq := h.lastKeyframeSeq
	subs := make(map[string]sender, len(h.subscribers))
	for id, session := range h.subscribers {
		subs[id] = session
	}
	h.mu.Unlock()

	msg := proto.FrameMessage{
		Ver:         proto.Version,
		Type:        proto.TypeFrame,
		Tick:        snapshot.Tick,
		Combatants:  snapshot.Combatants,
		Hits:        snapshot.Hits,
		KeyframeSeq: keyframeSeq,
		ServerTime:  time.Now().UnixMilli(),
	}
	var stale []string
	for id, session := range subs {
		if err := session.SendJSON(msg); err != nil {
			stale = append(stale, id)
		}
	}
	sort.Strings(stale)
	for _, id := range stale {
		h.Disconnect(id)
	}
}

func (h *Hub) send(actorID string, v any) {
	h.mu.Lock()
	session, ok := h.subscribers[actorID]
	h.mu.Unlock()
	if ok {
		_ = session.SendJSON(v)
	}
}

// Snapshot exposes the current match snapshot for HTTP handlers.
func (h *Hub) Snapshot() sim.Snapshot {
	return h.engine.Snapshot()
}
