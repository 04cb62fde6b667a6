package session

import (
	"encoding/json"
	"time"
)

// Kind classifies sink events.
type Kind int

const (
	KindMessage   Kind = iota // a framed inbound line, or an echoed send
	KindHex                   // a raw inbound chunk for the hex view
	KindStateChange
	KindStatsTick
)

var kindNames = map[Kind]string{
	KindMessage:     "message",
	KindHex:         "hex",
	KindStateChange: "stateChange",
	KindStatsTick:   "statsTick",
}

var kindFromName = map[string]Kind{
	"message":     KindMessage,
	"hex":         KindHex,
	"stateChange": KindStateChange,
	"statsTick":   KindStatsTick,
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if v, ok := kindFromName[s]; ok {
		*k = v
	}
	return nil
}

// Color is the severity tag renderers map to a display color.
type Color string

const (
	ColorInfo    Color = "info"
	ColorSuccess Color = "success"
	ColorWarning Color = "warning"
	ColorError   Color = "error"
)

// Event is one entry on the sink feed. Events are ephemeral values: the
// session hands them off and never retains them.
type Event struct {
	Kind      Kind            `json:"kind"`
	Payload   string          `json:"payload,omitempty"`
	Raw       []byte          `json:"raw,omitempty"` // hex events only
	Color     Color           `json:"color"`
	Timestamp time.Time       `json:"timestamp"`
	Outbound  bool            `json:"outbound,omitempty"` // echoed sends
	State     ConnectionState `json:"state"`
	Stats     *StatsSnapshot  `json:"stats,omitempty"` // statsTick events only
}
