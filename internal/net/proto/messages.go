// Package proto defines the JSON messages exchanged between the match server
// and its websocket clients.
package proto

import "fightstate/runtime/internal/sim"

// Version is bumped whenever a message layout changes incompatibly.
const Version = 1

// Message type discriminators.
const (
	TypeCancel          = "cancel"
	TypeBlock           = "block"
	TypeReset           = "reset"
	TypeHeartbeat       = "heartbeat"
	TypeKeyframeRequest = "keyframe_request"

	TypeFrame        = "frame"
	TypeKeyframe     = "keyframe"
	TypeKeyframeNack = "keyframe_nack"
	TypeReject       = "reject"
	TypeHeartbeatAck = "heartbeat_ack"
)

// ClientMessage is the single envelope clients send over the socket.
type ClientMessage struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`

	// Target carries the requested cancel target for TypeCancel.
	Target uint16 `json:"target,omitempty"`
	// Blocking carries the guard toggle for TypeBlock.
	Blocking bool `json:"blocking,omitempty"`
	// Sequence names the wanted keyframe for TypeKeyframeRequest.
	Sequence uint64 `json:"sequence,omitempty"`
	// SentAt is the client clock in unix milliseconds for TypeHeartbeat.
	SentAt int64 `json:"sentAt,omitempty"`
}

// JoinResponse answers the HTTP join handshake.
type JoinResponse struct {
	Ver              int                 `json:"ver"`
	ID               string              `json:"id"`
	Tick             uint64              `json:"t"`
	Combatants       []sim.CombatantView `json:"combatants"`
	KeyframeInterval int                 `json:"keyframeInterval,omitempty"`
}

// FrameMessage broadcasts the per-tick match snapshot.
type FrameMessage struct {
	Ver         int                 `json:"ver"`
	Type        string              `json:"type"`
	Tick        uint64              `json:"t"`
	Combatants  []sim.CombatantView `json:"combatants,omitempty"`
	Hits        []sim.HitEvent      `json:"hits,omitempty"`
	KeyframeSeq uint64              `json:"keyframeSeq,omitempty"`
	ServerTime  int64               `json:"serverTime"`
}

// KeyframeMessage answers a keyframe request with journal contents.
type KeyframeMessage struct {
	Ver        int                 `json:"ver"`
	Type       string              `json:"type"`
	Sequence   uint64              `json:"sequence"`
	Tick       uint64              `json:"t"`
	Combatants []sim.CombatantView `json:"combatants"`
}

// KeyframeNackMessage reports that a requested keyframe left the journal
// window; the client should resync from the next frame.
type KeyframeNackMessage struct {
	Ver      int    `json:"ver"`
	Type     string `json:"type"`
	Sequence uint64 `json:"sequence"`
	Reason   string `json:"reason"`
}

// RejectMessage reports a dropped client command and why.
type RejectMessage struct {
	Ver         int    `json:"ver"`
	Type        string `json:"type"`
	CommandType string `json:"commandType"`
	Reason      string `json:"reason"`
}

// HeartbeatAckMessage echoes a heartbeat so clients can measure RTT.
type HeartbeatAckMessage struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	ClientSent int64  `json:"clientSent"`
	ServerTime int64  `json:"serverTime"`
}
