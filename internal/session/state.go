package session

import (
	"encoding/json"
)

// ConnectionState is the session's position in the connection lifecycle.
// Only the session loop mutates it; everything else observes snapshots.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
	Reconnecting
	PermanentlyFailed
)

var stateNames = map[ConnectionState]string{
	Disconnected:      "disconnected",
	Connecting:        "connecting",
	Connected:         "connected",
	Reconnecting:      "reconnecting",
	PermanentlyFailed: "failed",
}

var stateFromName = map[string]ConnectionState{
	"disconnected": Disconnected,
	"connecting":   Connecting,
	"connected":    Connected,
	"reconnecting": Reconnecting,
	"failed":       PermanentlyFailed,
}

func (s ConnectionState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s ConnectionState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ConnectionState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	if v, ok := stateFromName[name]; ok {
		*s = v
	}
	return nil
}

// LineEnding selects the byte sequence appended to outbound sends. Inbound
// framing always splits on \n regardless of this setting.
type LineEnding int

const (
	LF LineEnding = iota
	CR
	CRLF
)

func (e LineEnding) String() string {
	switch e {
	case CR:
		return "cr"
	case CRLF:
		return "crlf"
	default:
		return "lf"
	}
}

func (e LineEnding) Bytes() []byte {
	switch e {
	case CR:
		return []byte{'\r'}
	case CRLF:
		return []byte{'\r', '\n'}
	default:
		return []byte{'\n'}
	}
}

// Next returns the following mode in the cycle LF → CR → CRLF → LF.
func (e LineEnding) Next() LineEnding {
	switch e {
	case LF:
		return CR
	case CR:
		return CRLF
	default:
		return LF
	}
}

// ParseLineEnding maps a config string to a LineEnding, defaulting to LF.
func ParseLineEnding(s string) LineEnding {
	switch s {
	case "cr":
		return CR
	case "crlf":
		return CRLF
	default:
		return LF
	}
}

func (e LineEnding) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

func (e *LineEnding) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	*e = ParseLineEnding(name)
	return nil
}

// Config collects every user-togglable flag the session owns. It travels as
// a value inside snapshots so renderers never share mutable state with the
// loop.
type Config struct {
	AutoReconnect bool         `json:"autoReconnect"`
	Paused        bool         `json:"paused"`
	Echo          bool         `json:"echo"`
	ShowHex       bool         `json:"showHex"`
	LineEnding    LineEnding   `json:"lineEnding"`
	Filter        FilterConfig `json:"filter"`
}
