package sim

import (
	"sync"
	"testing"
)

type recordingMetrics struct {
	mu     sync.Mutex
	adds   map[string]uint64
	stores map[string]uint64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{adds: make(map[string]uint64), stores: make(map[string]uint64)}
}

func (m *recordingMetrics) Add(key string, delta uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adds[key] += delta
}

func (m *recordingMetrics) Store(key string, value uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores[key] = value
}

func TestCommandBufferDrainsInOrder(t *testing.T) {
	buf := NewCommandBuffer(4, nil)
	for _, actor := range []string{"a", "b", "c"} {
		if !buf.Push(Command{ActorID: actor, Type: CommandCancel}) {
			t.Fatalf("expected push to succeed for %s", actor)
		}
	}
	if got := buf.Len(); got != 3 {
		t.Fatalf("expected 3 staged commands, got %d", got)
	}
	drained := buf.Drain()
	if len(drained) != 3 {
		t.Fatalf("expected 3 drained commands, got %d", len(drained))
	}
	for i, actor := range []string{"a", "b", "c"} {
		if drained[i].ActorID != actor {
			t.Fatalf("expected FIFO order at %d, got %s", i, drained[i].ActorID)
		}
	}
	if buf.Drain() != nil {
		t.Fatalf("expected empty drain to return nil")
	}
}

func TestCommandBufferOverflowCountsMetric(t *testing.T) {
	metrics := newRecordingMetrics()
	buf := NewCommandBuffer(2, metrics)
	buf.Push(Command{ActorID: "a"})
	buf.Push(Command{ActorID: "b"})
	if buf.Push(Command{ActorID: "c"}) {
		t.Fatalf("expected push past capacity to fail")
	}
	if got := metrics.adds["sim_command_buffer_overflow_total"]; got != 1 {
		t.Fatalf("expected 1 overflow, got %d", got)
	}
	if got := metrics.stores["sim_command_buffer_occupancy"]; got != 2 {
		t.Fatalf("expected occupancy 2, got %d", got)
	}
	buf.Drain()
	if got := metrics.stores["sim_command_buffer_occupancy"]; got != 0 {
		t.Fatalf("expected occupancy reset to 0, got %d", got)
	}
}

func TestCommandBufferWrapsAround(t *testing.T) {
	buf := NewCommandBuffer(2, nil)
	buf.Push(Command{ActorID: "a"})
	buf.Drain()
	buf.Push(Command{ActorID: "b"})
	buf.Push(Command{ActorID: "c"})
	drained := buf.Drain()
	if len(drained) != 2 || drained[0].ActorID != "b" || drained[1].ActorID != "c" {
		t.Fatalf("expected [b c] after wrap, got %v", drained)
	}
}

func TestCommandBufferNilReceiver(t *testing.T) {
	var buf *CommandBuffer
	if buf.Push(Command{}) {
		t.Fatalf("expected nil buffer to reject pushes")
	}
	if buf.Drain() != nil || buf.Len() != 0 || buf.Capacity() != 0 {
		t.Fatalf("expected nil buffer to report empty")
	}
}
