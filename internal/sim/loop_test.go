package sim

import (
	"testing"
	"time"
)

// fakeCore records the command batches and steps it receives.
type fakeCore struct {
	deps    Deps
	applied [][]Command
	steps   int
	tick    uint64
}

func (f *fakeCore) Apply(cmds []Command) error {
	f.applied = append(f.applied, cmds)
	return nil
}

func (f *fakeCore) Step() {
	f.steps++
	f.tick++
}

func (f *fakeCore) Snapshot() Snapshot {
	return Snapshot{Tick: f.tick}
}

func (f *fakeCore) Restore(frame Keyframe) bool {
	f.tick = frame.Tick
	return true
}

func (f *fakeCore) Deps() Deps { return f.deps }

func newTestLoop(cfg LoopConfig, hooks LoopHooks) (*Loop, *fakeCore) {
	core := &fakeCore{}
	return NewLoop(core, cfg, hooks), core
}

func TestLoopAdvanceAppliesDrainedCommands(t *testing.T) {
	loop, core := newTestLoop(LoopConfig{CommandCapacity: 8}, LoopHooks{})

	for _, actor := range []string{"p1", "p2"} {
		ok, reason := loop.Enqueue(Command{ActorID: actor, Type: CommandCancel})
		if !ok {
			t.Fatalf("expected enqueue to succeed, got reason %q", reason)
		}
	}
	if loop.Pending() != 2 {
		t.Fatalf("expected 2 pending commands, got %d", loop.Pending())
	}

	result := loop.Advance(LoopTickContext{Tick: 7, Now: time.Unix(0, 0), Delta: 1.0 / 60})
	if core.steps != 1 {
		t.Fatalf("expected one engine step, got %d", core.steps)
	}
	if len(core.applied) != 1 || len(core.applied[0]) != 2 {
		t.Fatalf("expected one batch of 2 commands, got %v", core.applied)
	}
	if result.Tick != 7 || result.Snapshot.Tick != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if loop.Pending() != 0 {
		t.Fatalf("expected queue drained, got %d", loop.Pending())
	}
}

func TestLoopEnqueuePerActorThrottling(t *testing.T) {
	var dropped []string
	loop, _ := newTestLoop(
		LoopConfig{CommandCapacity: 16, PerActorLimit: 2},
		LoopHooks{OnCommandDrop: func(reason string, cmd Command) {
			dropped = append(dropped, reason)
		}},
	)

	for i := 0; i < 2; i++ {
		if ok, _ := loop.Enqueue(Command{ActorID: "spammer"}); !ok {
			t.Fatalf("expected enqueue %d under the limit to succeed", i)
		}
	}
	ok, reason := loop.Enqueue(Command{ActorID: "spammer"})
	if ok || reason != CommandRejectQueueLimit {
		t.Fatalf("expected queue_limit rejection, got ok=%v reason=%q", ok, reason)
	}
	if ok, _ := loop.Enqueue(Command{ActorID: "other"}); !ok {
		t.Fatalf("expected unrelated actor to stay unthrottled")
	}
	if len(dropped) != 1 || dropped[0] != CommandRejectQueueLimit {
		t.Fatalf("expected one drop callback, got %v", dropped)
	}

	// Draining resets the per-actor counters.
	loop.Advance(LoopTickContext{Tick: 1})
	if ok, _ := loop.Enqueue(Command{ActorID: "spammer"}); !ok {
		t.Fatalf("expected throttle to reset after drain")
	}
}

func TestLoopEnqueueQueueFull(t *testing.T) {
	loop, _ := newTestLoop(LoopConfig{CommandCapacity: 1}, LoopHooks{})
	if ok, _ := loop.Enqueue(Command{ActorID: "a"}); !ok {
		t.Fatalf("expected first enqueue to succeed")
	}
	ok, reason := loop.Enqueue(Command{ActorID: "b"})
	if ok || reason != CommandRejectQueueFull {
		t.Fatalf("expected queue_full rejection, got ok=%v reason=%q", ok, reason)
	}
}

func TestLoopHooksFire(t *testing.T) {
	var prepared []uint64
	var afterTicks []uint64
	loop, _ := newTestLoop(LoopConfig{CommandCapacity: 4}, LoopHooks{
		Prepare: func(ctx LoopTickContext) { prepared = append(prepared, ctx.Tick) },
	})
	loop.hooks.AfterStep = func(result LoopStepResult) { afterTicks = append(afterTicks, result.Tick) }

	result := loop.Advance(LoopTickContext{Tick: 3})
	if len(prepared) != 1 || prepared[0] != 3 {
		t.Fatalf("expected prepare hook at tick 3, got %v", prepared)
	}
	// Advance itself does not invoke AfterStep; Run does.
	if len(afterTicks) != 0 {
		t.Fatalf("expected AfterStep untouched by Advance, got %v", afterTicks)
	}
	if result.Commands != nil {
		t.Fatalf("expected no commands for an empty queue, got %v", result.Commands)
	}
}

func TestLoopNilSafety(t *testing.T) {
	var loop *Loop
	if ok, reason := loop.Enqueue(Command{}); ok || reason != CommandRejectQueueFull {
		t.Fatalf("expected nil loop to reject commands")
	}
	if loop.Pending() != 0 {
		t.Fatalf("expected nil loop to report no pending commands")
	}
	loop.Step()
	if got := loop.Snapshot(); got.Tick != 0 {
		t.Fatalf("expected zero snapshot, got %+v", got)
	}
	if NewLoop(nil, LoopConfig{}, LoopHooks{}) != nil {
		t.Fatalf("expected NewLoop to reject a nil core")
	}
}
