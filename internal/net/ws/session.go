// Package ws wraps gorilla websocket connections with the write locking and
// deadline discipline the broadcast path needs.
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultWriteTimeout bounds a single frame write before the session is
// considered stale.
const DefaultWriteTimeout = 5 * time.Second

// Session is a single client connection. Writes are serialized; reads belong
// to the owning read loop.
type Session struct {
	conn *websocket.Conn

	writeMu      sync.Mutex
	writeTimeout time.Duration

	closeOnce sync.Once
}

// NewSession wraps an upgraded connection.
func NewSession(conn *websocket.Conn, writeTimeout time.Duration) *Session {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &Session{conn: conn, writeTimeout: writeTimeout}
}

// SendJSON marshals v and writes it as a single text frame.
func (s *Session) SendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Send(data)
}

// Send writes a pre-marshaled text frame.
func (s *Session) Send(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// ReadMessage blocks for the next client frame.
func (s *Session) ReadMessage() ([]byte, error) {
	_, payload, err := s.conn.ReadMessage()
	return payload, err
}

// Close tears the connection down. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		_ = s.conn.Close()
	})
}
