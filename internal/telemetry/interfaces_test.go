package telemetry

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"fightstate/runtime/logging"
)

func TestLoggerFunc(t *testing.T) {
	var got string
	logger := LoggerFunc(func(format string, args ...any) {
		got = format
	})
	logger.Printf("tick %d", 3)
	if got != "tick %d" {
		t.Fatalf("expected format forwarded, got %q", got)
	}
	var nilLogger LoggerFunc
	nilLogger.Printf("must not panic")
}

func TestWrapLogger(t *testing.T) {
	var buf bytes.Buffer
	wrapped := WrapLogger(log.New(&buf, "", 0))
	wrapped.Printf("hello %s", "world")
	if !strings.Contains(buf.String(), "hello world") {
		t.Fatalf("expected forwarded output, got %q", buf.String())
	}
	WrapLogger(nil).Printf("must not panic")
}

func TestWrapMetrics(t *testing.T) {
	registry := logging.NewMetrics()
	wrapped := WrapMetrics(registry)
	wrapped.Add("ticks", 2)
	wrapped.Add("ticks", 1)
	wrapped.Store("occupancy", 9)
	if got := registry.TelemetryValue("ticks"); got != 3 {
		t.Fatalf("expected ticks=3, got %d", got)
	}
	if got := registry.TelemetryValue("occupancy"); got != 9 {
		t.Fatalf("expected occupancy=9, got %d", got)
	}
	nilWrapped := WrapMetrics(nil)
	nilWrapped.Add("x", 1)
	nilWrapped.Store("x", 1)
}
