package ws

import (
	"time"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/preview"
)

// Inbound message types
const (
	TypeUpdate   = "update"
	TypeSelect   = "select"
	TypeDispatch = "dispatch"
	TypePing     = "ping"
)

// Outbound message types
const (
	TypeSystem   = "system"
	TypeSnapshot = "snapshot"
	TypeError    = "error"
	TypePong     = "pong"
)

// Error codes carried by error messages
const (
	CodeInvalid      = "invalid"
	CodeUnknownTopic = "unknown_topic"
	CodeHandler      = "handler_error"
	CodeNodeNotFound = "node_not_found"
	CodeNoSession    = "no_session"
)

// Inbound is a message received from a client
type Inbound struct {
	Type string `json:"type"`

	// update, select
	Topic   string  `json:"topic,omitempty"`
	File    string  `json:"file,omitempty"`
	Content *string `json:"content,omitempty"`

	// dispatch
	NodeID  string  `json:"node_id,omitempty"`
	Event   string  `json:"event,omitempty"`
	Value   *string `json:"value,omitempty"`
	Checked *bool   `json:"checked,omitempty"`
}

// Outbound is a message sent to a client
type Outbound struct {
	Type      string            `json:"type"`
	ClientID  string            `json:"client_id,omitempty"`
	Message   string            `json:"message,omitempty"`
	Code      string            `json:"code,omitempty"`
	Snapshot  *preview.Snapshot `json:"snapshot,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

func snapshotMessage(snap preview.Snapshot) Outbound {
	return Outbound{Type: TypeSnapshot, Snapshot: &snap, Timestamp: time.Now().Unix()}
}

func errorMessage(code, msg string) Outbound {
	return Outbound{Type: TypeError, Code: code, Message: msg, Timestamp: time.Now().Unix()}
}
