package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"fightstate/runtime/internal/net/proto"
	"fightstate/runtime/logging"
)

func TestHealthEndpoint(t *testing.T) {
	h := newTestHub(t, DefaultHubConfig())
	srv := httptest.NewServer(Handler(h, nil, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestJoinEndpoint(t *testing.T) {
	h := newTestHub(t, DefaultHubConfig())
	srv := httptest.NewServer(Handler(h, nil, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/join")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET, got %d", resp.StatusCode)
	}

	var joined proto.JoinResponse
	for _, want := range []string{"p1", "p2"} {
		resp, err := http.Post(srv.URL+"/join", "application/json", nil)
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&joined); err != nil {
			t.Fatalf("decode: %v", err)
		}
		resp.Body.Close()
		if joined.ID != want {
			t.Fatalf("expected slot %s, got %s", want, joined.ID)
		}
	}

	resp, err = http.Post(srv.URL+"/join", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 with a full roster, got %d", resp.StatusCode)
	}
}

func TestDiagnosticsEndpoint(t *testing.T) {
	h := newTestHub(t, DefaultHubConfig())
	metrics := logging.NewMetrics()
	metrics.TelemetryStore("sim_command_buffer_occupancy", 3)
	srv := httptest.NewServer(Handler(h, metrics, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/diagnostics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var payload struct {
		Tick    uint64            `json:"tick"`
		Metrics map[string]uint64 `json:"metrics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Metrics["sim_command_buffer_occupancy"] != 3 {
		t.Fatalf("expected exported counter, got %v", payload.Metrics)
	}
}

func TestWebsocketRoundTrip(t *testing.T) {
	h := newTestHub(t, DefaultHubConfig())
	srv := httptest.NewServer(Handler(h, nil, nil))
	defer srv.Close()
	if _, err := h.Join(); err != nil {
		t.Fatalf("join: %v", err)
	}

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?id=p1"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	// The heartbeat ack confirms the session is subscribed before stepping.
	hb, _ := json.Marshal(proto.ClientMessage{Ver: proto.Version, Type: proto.TypeHeartbeat, SentAt: 42})
	if err := conn.WriteMessage(websocket.TextMessage, hb); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read ack: %v", err)
	}
	var ack proto.HeartbeatAckMessage
	if err := json.Unmarshal(payload, &ack); err != nil || ack.Type != proto.TypeHeartbeatAck || ack.ClientSent != 42 {
		t.Fatalf("unexpected ack %s err=%v", payload, err)
	}

	h.Advance(time.Now())
	_, payload, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var frame proto.FrameMessage
	if err := json.Unmarshal(payload, &frame); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if frame.Type != proto.TypeFrame || frame.Tick != 1 {
		t.Fatalf("unexpected frame %+v", frame)
	}
	if len(frame.Combatants) != 2 {
		t.Fatalf("expected 2 combatants in frame, got %d", len(frame.Combatants))
	}
}

func TestWebsocketEndpointRequiresID(t *testing.T) {
	h := newTestHub(t, DefaultHubConfig())
	srv := httptest.NewServer(Handler(h, nil, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without an id, got %d", resp.StatusCode)
	}
}
