package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"fightstate/runtime/internal/net/proto"
	"fightstate/runtime/internal/net/ws"
	"fightstate/runtime/internal/telemetry"
)

// Handler builds the HTTP surface: join handshake, websocket endpoint and
// operational probes.
func Handler(h *Hub, metrics metricsSource, logger telemetry.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		snapshot := h.Snapshot()
		payload := struct {
			Tick    uint64            `json:"tick"`
			Metrics map[string]uint64 `json:"metrics,omitempty"`
		}{Tick: snapshot.Tick}
		if metrics != nil {
			payload.Metrics = metrics.TelemetrySnapshot()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	})

	mux.HandleFunc("/join", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		response, err := h.Join()
		if err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	})

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		actorID := r.URL.Query().Get("id")
		if actorID == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if logger != nil {
				logger.Printf("ws upgrade failed for %s: %v", actorID, err)
			}
			return
		}
		session := ws.NewSession(conn, 0)
		if err := h.Subscribe(actorID, session); err != nil {
			if logger != nil {
				logger.Printf("subscribe rejected for %s: %v", actorID, err)
			}
			session.Close()
			return
		}
		go readLoop(h, actorID, session, logger)
	})

	return mux
}

// metricsSource is the telemetry registry slice the diagnostics endpoint
// reads.
type metricsSource interface {
	TelemetrySnapshot() map[string]uint64
}

func readLoop(h *Hub, actorID string, session *ws.Session, logger telemetry.Logger) {
	defer h.Disconnect(actorID)
	for {
		payload, err := session.ReadMessage()
		if err != nil {
			return
		}
		var msg proto.ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			if logger != nil {
				logger.Printf("malformed message from %s: %v", actorID, err)
			}
			continue
		}
		h.HandleMessage(actorID, msg)
	}
}
