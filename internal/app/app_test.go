package app

import (
	"strings"
	"testing"
	"time"

	"github.com/Sigmakib2/serialconsole/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

type stubController struct {
	snap    session.Snapshot
	sent    []string
	pause   []bool
	hex     []bool
	echo    []bool
	auto    []bool
	filters []string
	cycles  int
	forced  int
}

func (s *stubController) Snapshot() session.Snapshot { return s.snap }
func (s *stubController) Send(text string) (int, error) {
	s.sent = append(s.sent, text)
	return len(text) + 1, nil
}
func (s *stubController) SetFilter(text string) { s.filters = append(s.filters, text) }

func (s *stubController) SetPause(paused bool) { s.pause = append(s.pause, paused) }

func (s *stubController) SetEcho(echo bool) { s.echo = append(s.echo, echo) }

func (s *stubController) SetShowHex(show bool) { s.hex = append(s.hex, show) }

func (s *stubController) CycleLineEnding() { s.cycles++ }

func (s *stubController) SetAutoReconnect(on bool) { s.auto = append(s.auto, on) }

func (s *stubController) ForceReconnect() { s.forced++ }

func newTestModel(ctl *stubController) Model {
	m := New(ctl, 0)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestPauseKeyTogglesFromSnapshot(t *testing.T) {
	ctl := &stubController{}
	m := newTestModel(ctl)

	updated, _ := m.Update(keyRune('p'))
	if len(ctl.pause) != 1 || ctl.pause[0] != true {
		t.Fatalf("pause calls = %v, want [true]", ctl.pause)
	}

	m = updated.(Model)
	ctl.snap.Config.Paused = true
	m = m.refresh()
	m.Update(keyRune('p'))
	if len(ctl.pause) != 2 || ctl.pause[1] != false {
		t.Fatalf("pause calls = %v, want second call false", ctl.pause)
	}
}

func TestToggleKeysReachController(t *testing.T) {
	ctl := &stubController{}
	m := newTestModel(ctl)

	for _, r := range "xena" {
		updated, _ := m.Update(keyRune(r))
		m = updated.(Model)
	}

	if len(ctl.hex) != 1 || !ctl.hex[0] {
		t.Errorf("hex calls = %v", ctl.hex)
	}
	if len(ctl.echo) != 1 || !ctl.echo[0] {
		t.Errorf("echo calls = %v", ctl.echo)
	}
	if ctl.cycles != 1 {
		t.Errorf("cycles = %d, want 1", ctl.cycles)
	}
	if len(ctl.auto) != 1 || !ctl.auto[0] {
		t.Errorf("auto calls = %v", ctl.auto)
	}
}

func TestForceReconnectKey(t *testing.T) {
	ctl := &stubController{}
	m := newTestModel(ctl)

	m.Update(keyRune('r'))
	if ctl.forced != 1 {
		t.Errorf("forced = %d, want 1", ctl.forced)
	}
}

func TestSendPromptCommits(t *testing.T) {
	ctl := &stubController{}
	m := newTestModel(ctl)

	updated, _ := m.Update(keyRune('i'))
	m = updated.(Model)
	if !m.prompt.Active() {
		t.Fatal("prompt not active after send key")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("AT")})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if len(ctl.sent) != 1 || ctl.sent[0] != "AT" {
		t.Errorf("sent = %v, want [AT]", ctl.sent)
	}
	if m.prompt.Active() {
		t.Error("prompt still active after commit")
	}
}

func TestFilterPromptCommits(t *testing.T) {
	ctl := &stubController{}
	m := newTestModel(ctl)

	updated, _ := m.Update(keyRune('/'))
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("temp")})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if len(ctl.filters) != 1 || ctl.filters[0] != "temp" {
		t.Errorf("filters = %v, want [temp]", ctl.filters)
	}
}

func TestPromptEscapeCancels(t *testing.T) {
	ctl := &stubController{}
	m := newTestModel(ctl)

	updated, _ := m.Update(keyRune('i'))
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)

	if m.prompt.Active() {
		t.Error("prompt still active after escape")
	}
	if len(ctl.sent) != 0 {
		t.Errorf("sent = %v, want none", ctl.sent)
	}
}

func TestEventMsgAppearsInView(t *testing.T) {
	ctl := &stubController{}
	m := newTestModel(ctl)

	updated, _ := m.Update(EventMsg{Event: session.Event{
		Kind:      session.KindMessage,
		Payload:   "Temperature: 23.5C",
		Timestamp: time.Now(),
	}})
	m = updated.(Model)

	if !strings.Contains(m.View(), "Temperature: 23.5C") {
		t.Error("log line missing from view")
	}
}

func TestQuitKeyReturnsQuit(t *testing.T) {
	ctl := &stubController{}
	m := newTestModel(ctl)

	_, cmd := m.Update(keyRune('q'))
	if cmd == nil {
		t.Fatal("quit produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command did not produce QuitMsg")
	}
}

func TestHelpOverlayToggle(t *testing.T) {
	ctl := &stubController{}
	m := newTestModel(ctl)

	updated, _ := m.Update(keyRune('?'))
	m = updated.(Model)
	if !m.showHelp {
		t.Fatal("help not shown after ?")
	}

	// Regular bindings are swallowed while the overlay is up.
	updated, _ = m.Update(keyRune('p'))
	m = updated.(Model)
	if len(ctl.pause) != 0 {
		t.Errorf("pause calls = %v, want none while help open", ctl.pause)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if m.showHelp {
		t.Error("help still shown after escape")
	}
}
