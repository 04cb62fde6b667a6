package session

import (
	"encoding/json"
	"testing"
)

func TestConnectionStateJSONRoundTrip(t *testing.T) {
	for state := range stateNames {
		data, err := json.Marshal(state)
		if err != nil {
			t.Fatalf("marshal %v: %v", state, err)
		}
		var back ConnectionState
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != state {
			t.Errorf("round trip %v -> %s -> %v", state, data, back)
		}
	}
}

func TestLineEndingBytes(t *testing.T) {
	tests := []struct {
		mode LineEnding
		want string
	}{
		{LF, "\n"},
		{CR, "\r"},
		{CRLF, "\r\n"},
	}
	for _, tt := range tests {
		if got := string(tt.mode.Bytes()); got != tt.want {
			t.Errorf("%s.Bytes() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestLineEndingCycle(t *testing.T) {
	if LF.Next() != CR || CR.Next() != CRLF || CRLF.Next() != LF {
		t.Error("cycle must be LF -> CR -> CRLF -> LF")
	}
}

func TestParseLineEnding(t *testing.T) {
	if ParseLineEnding("crlf") != CRLF || ParseLineEnding("cr") != CR {
		t.Error("explicit modes not parsed")
	}
	if ParseLineEnding("bogus") != LF {
		t.Error("unknown mode should default to LF")
	}
}
