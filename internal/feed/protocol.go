package feed

import (
	"github.com/Sigmakib2/serialconsole/internal/session"
)

type MessageType string

const (
	MsgSnapshot MessageType = "snapshot"
	MsgEvents   MessageType = "events"
	MsgError    MessageType = "error"
)

type WSMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

type SnapshotPayload struct {
	Snapshot session.Snapshot `json:"snapshot"`
}

type EventsPayload struct {
	Events []session.Event `json:"events"`
}

// SendRequest is the body of POST /api/send. LineEnding overrides the
// session's current mode for this one message when non-empty.
type SendRequest struct {
	Text       string `json:"text"`
	LineEnding string `json:"lineEnding,omitempty"`
}

type SendResponse struct {
	Bytes int `json:"bytes"`
}
