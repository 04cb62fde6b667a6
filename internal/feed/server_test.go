package feed

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Sigmakib2/serialconsole/internal/session"
	"github.com/gorilla/websocket"
)

type stubControl struct {
	snap    session.Snapshot
	sent    []string
	endings []session.LineEnding
	err     error
}

func (s *stubControl) Snapshot() session.Snapshot { return s.snap }

func (s *stubControl) Send(text string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.sent = append(s.sent, text)
	s.endings = append(s.endings, session.LF)
	return len(text) + 1, nil
}

func (s *stubControl) SendWith(text string, ending session.LineEnding) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.sent = append(s.sent, text)
	s.endings = append(s.endings, ending)
	return len(text) + len(ending.Bytes()), nil
}

func newTestServer(t *testing.T, control *stubControl) (*httptest.Server, *Broadcaster) {
	t.Helper()
	b := NewBroadcaster(control.Snapshot, 5*time.Millisecond, time.Hour)
	t.Cleanup(b.Stop)

	mux := http.NewServeMux()
	NewServer(control, b).SetupRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, b
}

func TestSnapshotEndpoint(t *testing.T) {
	control := &stubControl{snap: session.Snapshot{
		PortPath: "/dev/ttyUSB0",
		Baud:     115200,
		State:    session.Connected,
	}}
	srv, _ := newTestServer(t, control)

	resp, err := http.Get(srv.URL + "/api/snapshot")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var snap session.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.PortPath != "/dev/ttyUSB0" || snap.Baud != 115200 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.State != session.Connected {
		t.Errorf("state = %v, want Connected", snap.State)
	}
}

func TestSendEndpoint(t *testing.T) {
	control := &stubControl{}
	srv, _ := newTestServer(t, control)

	body, _ := json.Marshal(SendRequest{Text: "AT+RST", LineEnding: "crlf"})
	resp, err := http.Post(srv.URL+"/api/send", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post send: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var sr SendResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sr.Bytes != len("AT+RST")+2 {
		t.Errorf("bytes = %d, want %d", sr.Bytes, len("AT+RST")+2)
	}
	if len(control.sent) != 1 || control.sent[0] != "AT+RST" {
		t.Errorf("sent = %v", control.sent)
	}
	if control.endings[0] != session.CRLF {
		t.Errorf("ending = %v, want CRLF", control.endings[0])
	}
}

func TestSendEndpointWhenNotConnected(t *testing.T) {
	control := &stubControl{err: session.ErrNotConnected}
	srv, _ := newTestServer(t, control)

	body, _ := json.Marshal(SendRequest{Text: "hello"})
	resp, err := http.Post(srv.URL+"/api/send", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post send: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestSendEndpointRejectsEmptyText(t *testing.T) {
	control := &stubControl{}
	srv, _ := newTestServer(t, control)

	resp, err := http.Post(srv.URL+"/api/send", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("post send: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if len(control.sent) != 0 {
		t.Errorf("sent = %v, want none", control.sent)
	}
}

func TestWebsocketGreetsWithSnapshot(t *testing.T) {
	control := &stubControl{snap: session.Snapshot{PortPath: "/dev/ttyACM0", Baud: 9600}}
	srv, _ := newTestServer(t, control)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read greeting: %v", err)
	}
	if msg.Type != MsgSnapshot {
		t.Fatalf("greeting type = %q, want %q", msg.Type, MsgSnapshot)
	}
}

func TestWebsocketReceivesBatchedEvents(t *testing.T) {
	control := &stubControl{}
	srv, b := newTestServer(t, control)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var greeting WSMessage
	if err := conn.ReadJSON(&greeting); err != nil {
		t.Fatalf("read greeting: %v", err)
	}

	// Two events published inside one throttle window arrive as one batch.
	b.Publish(session.Event{Kind: session.KindMessage, Payload: "line one"})
	b.Publish(session.Event{Kind: session.KindMessage, Payload: "line two"})

	var raw struct {
		Type    MessageType   `json:"type"`
		Payload EventsPayload `json:"payload"`
	}
	if err := conn.ReadJSON(&raw); err != nil {
		t.Fatalf("read events: %v", err)
	}
	if raw.Type != MsgEvents {
		t.Fatalf("type = %q, want %q", raw.Type, MsgEvents)
	}
	if len(raw.Payload.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(raw.Payload.Events))
	}
	if raw.Payload.Events[0].Payload != "line one" || raw.Payload.Events[1].Payload != "line two" {
		t.Errorf("payloads = %q, %q", raw.Payload.Events[0].Payload, raw.Payload.Events[1].Payload)
	}
}

func TestClientCountTracksDisconnects(t *testing.T) {
	control := &stubControl{}
	srv, b := newTestServer(t, control)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for b.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()
	for b.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never removed after disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
