package logging_test

import (
	"context"
	"testing"
	"time"

	"fightstate/runtime/logging"
	"fightstate/runtime/logging/sinks"
)

func fixedClock(t time.Time) logging.Clock {
	return logging.ClockFunc(func() time.Time { return t })
}

func TestRouterDeliversToSinks(t *testing.T) {
	now := time.Unix(1000, 0)
	memory := sinks.NewMemory()
	router := logging.NewRouter(fixedClock(now), logging.DefaultConfig(), []logging.NamedSink{
		{Name: "memory", Sink: memory},
	})

	router.Publish(context.Background(), logging.Event{
		Type:     "combat.hit_landed",
		Tick:     4,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
	})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 delivered event, got %d", len(events))
	}
	if events[0].Type != "combat.hit_landed" || events[0].Tick != 4 {
		t.Fatalf("unexpected event %+v", events[0])
	}
	if !events[0].Time.Equal(now) {
		t.Fatalf("expected router to stamp the clock time, got %v", events[0].Time)
	}
	stats := router.Stats()
	if stats.EventsTotal != 1 || stats.DroppedTotal != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestRouterFiltersBySeverity(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.MinimumSeverity = logging.SeverityWarn
	memory := sinks.NewMemory()
	router := logging.NewRouter(nil, cfg, []logging.NamedSink{{Name: "memory", Sink: memory}})

	router.Publish(context.Background(), logging.Event{Type: "debug", Severity: logging.SeverityDebug})
	router.Publish(context.Background(), logging.Event{Type: "info", Severity: logging.SeverityInfo})
	router.Publish(context.Background(), logging.Event{Type: "warn", Severity: logging.SeverityWarn})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	events := memory.Events()
	if len(events) != 1 || events[0].Type != "warn" {
		t.Fatalf("expected only the warn event, got %v", events)
	}
}

func TestRouterAttachesAmbientFields(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.Fields = map[string]any{"match": "m-1"}
	memory := sinks.NewMemory()
	router := logging.NewRouter(nil, cfg, []logging.NamedSink{{Name: "memory", Sink: memory}})

	router.Publish(context.Background(), logging.Event{Type: "a", Severity: logging.SeverityInfo})
	router.Publish(context.Background(),
		logging.Event{Type: "b", Severity: logging.SeverityInfo}.WithExtra("match", "override"))
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	events := memory.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Extra["match"] != "m-1" {
		t.Fatalf("expected ambient field, got %v", events[0].Extra)
	}
	if events[1].Extra["match"] != "override" {
		t.Fatalf("expected event field to win, got %v", events[1].Extra)
	}
}

func TestRouterCloseDrainsQueue(t *testing.T) {
	memory := sinks.NewMemory()
	router := logging.NewRouter(nil, logging.DefaultConfig(), []logging.NamedSink{
		{Name: "memory", Sink: memory},
	})
	for i := 0; i < 64; i++ {
		router.Publish(context.Background(), logging.Event{Type: "tick", Severity: logging.SeverityInfo})
	}
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := len(memory.Events()); got != 64 {
		t.Fatalf("expected all 64 events drained on close, got %d", got)
	}
	// Publishing after close is a no-op.
	router.Publish(context.Background(), logging.Event{Type: "late", Severity: logging.SeverityInfo})
	if got := len(memory.Events()); got != 64 {
		t.Fatalf("expected post-close publish to be dropped, got %d", got)
	}
}

func TestNilRouterIsInert(t *testing.T) {
	var router *logging.Router
	router.Publish(context.Background(), logging.Event{Type: "x"})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := router.Stats(); got != (logging.RouterStats{}) {
		t.Fatalf("expected zero stats, got %+v", got)
	}
}

func TestMetricsCounters(t *testing.T) {
	m := logging.NewMetrics()
	m.TelemetryAdd("ticks", 2)
	m.TelemetryAdd("ticks", 3)
	m.TelemetryStore("occupancy", 7)
	if got := m.TelemetryValue("ticks"); got != 5 {
		t.Fatalf("expected ticks=5, got %d", got)
	}
	snapshot := m.TelemetrySnapshot()
	if snapshot["ticks"] != 5 || snapshot["occupancy"] != 7 {
		t.Fatalf("unexpected snapshot %v", snapshot)
	}
	snapshot["ticks"] = 99
	if got := m.TelemetryValue("ticks"); got != 5 {
		t.Fatalf("expected snapshot to be a copy, got %d", got)
	}
}
