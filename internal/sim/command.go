package sim

import "time"

// CommandType enumerates the supported simulation commands.
type CommandType string

const (
	// CommandCancel requests a transition into a target state or virtual
	// action on the next tick.
	CommandCancel CommandType = "Cancel"
	// CommandReset returns a combatant to idle with refreshed resources.
	CommandReset CommandType = "Reset"
	// CommandHeartbeat updates connectivity metadata for a combatant.
	CommandHeartbeat CommandType = "Heartbeat"
)

// CancelCommand carries the requested cancel target.
type CancelCommand struct {
	Target uint16 `json:"target"`
}

// HeartbeatCommand updates connectivity metadata for a combatant.
type HeartbeatCommand struct {
	ReceivedAt time.Time     `json:"receivedAt"`
	ClientSent int64         `json:"clientSent"`
	RTT        time.Duration `json:"rtt"`
}

// Command represents an intent captured for processing on the next tick.
type Command struct {
	OriginTick uint64            `json:"originTick"`
	ActorID    string            `json:"actorId"`
	Type       CommandType       `json:"type"`
	IssuedAt   time.Time         `json:"issuedAt"`
	Cancel     *CancelCommand    `json:"cancel,omitempty"`
	Heartbeat  *HeartbeatCommand `json:"heartbeat,omitempty"`
}
