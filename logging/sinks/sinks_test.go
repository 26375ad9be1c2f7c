package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"fightstate/runtime/logging"
)

func TestConsoleWritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsole(&buf, false)

	err := sink.Write(logging.Event{
		Type:     "combat.hit_landed",
		Tick:     9,
		Time:     time.Unix(1000, 0).UTC(),
		Actor:    logging.EntityRef{ID: "p1", Kind: logging.EntityKindCombatant},
		Severity: logging.SeverityWarn,
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	line := buf.String()
	if !strings.Contains(line, "WARN") || !strings.Contains(line, "tick=9") {
		t.Fatalf("unexpected line %q", line)
	}
	if !strings.Contains(line, "combat.hit_landed") || !strings.Contains(line, "actor=p1") {
		t.Fatalf("unexpected line %q", line)
	}
	if strings.Contains(line, "\033[") {
		t.Fatalf("expected no color codes, got %q", line)
	}
	if strings.Count(line, "\n") != 1 {
		t.Fatalf("expected exactly one line, got %q", line)
	}
}

func TestConsoleColorsWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsole(&buf, true)
	if err := sink.Write(logging.Event{Severity: logging.SeverityError}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "\033[31m") {
		t.Fatalf("expected red error label, got %q", buf.String())
	}
}

func TestJSONEmitsDecodableLines(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSON(&buf, 0)

	events := []logging.Event{
		{Type: "a", Tick: 1, Severity: logging.SeverityInfo},
		{Type: "b", Tick: 2, Severity: logging.SeverityDebug},
	}
	for _, event := range events {
		if err := sink.Write(event); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for i, line := range lines {
		var decoded logging.Event
		if err := json.Unmarshal([]byte(line), &decoded); err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if decoded.Type != events[i].Type || decoded.Tick != events[i].Tick {
			t.Fatalf("line %d: expected %+v, got %+v", i, events[i], decoded)
		}
	}
}

func TestJSONFlushesOnClose(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSON(&buf, time.Hour)
	if err := sink.Write(logging.Event{Type: "buffered"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !strings.Contains(buf.String(), "buffered") {
		t.Fatalf("expected close to flush, got %q", buf.String())
	}
}

func TestMemoryRetainsAndResets(t *testing.T) {
	sink := NewMemory()
	if err := sink.Write(logging.Event{Type: "x"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	events := sink.Events()
	if len(events) != 1 || events[0].Type != "x" {
		t.Fatalf("unexpected events %v", events)
	}
	events[0].Type = "mutated"
	if sink.Events()[0].Type != "x" {
		t.Fatalf("expected Events to return a copy")
	}
	sink.Reset()
	if len(sink.Events()) != 0 {
		t.Fatalf("expected reset to clear events")
	}
}
