// Package app holds the root Bubble Tea model for the serial console TUI.
package app

import (
	"time"

	"github.com/Sigmakib2/serialconsole/internal/session"
	"github.com/Sigmakib2/serialconsole/internal/theme"
	"github.com/Sigmakib2/serialconsole/internal/views/gauge"
	"github.com/Sigmakib2/serialconsole/internal/views/help"
	"github.com/Sigmakib2/serialconsole/internal/views/logview"
	"github.com/Sigmakib2/serialconsole/internal/views/prompt"
	"github.com/Sigmakib2/serialconsole/internal/views/status"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const frameInterval = 100 * time.Millisecond

// Controller is the slice of the session the TUI drives.
type Controller interface {
	Snapshot() session.Snapshot
	Send(text string) (int, error)
	SetFilter(text string)
	SetPause(paused bool)
	SetEcho(echo bool)
	SetShowHex(show bool)
	CycleLineEnding()
	SetAutoReconnect(on bool)
	ForceReconnect()
}

// EventMsg delivers one session event into the update loop. The entrypoint
// pumps these in via Program.Send.
type EventMsg struct {
	Event session.Event
}

type frameMsg time.Time

// Model is the root Bubble Tea model.
type Model struct {
	ctl  Controller
	keys KeyMap

	width  int
	height int

	snap session.Snapshot

	statusBar status.Model
	logView   logview.Model
	rxGauge   gauge.Model
	txGauge   gauge.Model
	helpView  help.Model
	prompt    prompt.Model

	showHelp bool

	// Clients reports connected feed clients for the status bar; nil when
	// the feed server is off.
	Clients func() int
}

// New creates the root model. Scrollback caps the log view; zero means
// the default.
func New(ctl Controller, scrollback int) Model {
	return Model{
		ctl:       ctl,
		keys:      DefaultKeyMap(),
		statusBar: status.New(),
		logView:   logview.New(scrollback),
		rxGauge:   gauge.New("RX", theme.ColorRx),
		txGauge:   gauge.New("TX", theme.ColorTx),
		helpView:  help.New(),
		prompt:    prompt.New(),
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Init starts the frame ticker.
func (m Model) Init() tea.Cmd {
	return frameTick()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.helpView.SetWidth(msg.Width)
		m.rxGauge.Width = msg.Width/2 - 16
		m.txGauge.Width = msg.Width/2 - 16
		// Status bar (3 rows with border), gauge row, footer.
		m.logView.SetSize(msg.Width, max(msg.Height-5, 3))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		return m.handleEvent(msg.Event), nil

	case frameMsg:
		m.rxGauge.Tick()
		m.txGauge.Tick()
		m.snap = m.ctl.Snapshot()
		m.statusBar.Snap = m.snap
		m.statusBar.Now = time.Time(msg)
		if m.Clients != nil {
			m.statusBar.Clients = m.Clients()
		}
		return m, frameTick()
	}

	return m, nil
}

func (m Model) handleEvent(ev session.Event) Model {
	switch ev.Kind {
	case session.KindStatsTick:
		if ev.Stats != nil {
			m.rxGauge.SetTarget(ev.Stats.RxRate)
			m.txGauge.SetTarget(ev.Stats.TxRate)
		}
	default:
		m.logView.Append(ev)
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt.Active() {
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.prompt.Close()
			return m, nil
		case key.Matches(msg, m.keys.Enter):
			m = m.commitPrompt()
			return m, nil
		}
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Quit) {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pause):
		m.ctl.SetPause(!m.snap.Config.Paused)
		return m.refresh(), nil

	case key.Matches(msg, m.keys.Hex):
		m.ctl.SetShowHex(!m.snap.Config.ShowHex)
		return m.refresh(), nil

	case key.Matches(msg, m.keys.Echo):
		m.ctl.SetEcho(!m.snap.Config.Echo)
		return m.refresh(), nil

	case key.Matches(msg, m.keys.LineEnding):
		m.ctl.CycleLineEnding()
		return m.refresh(), nil

	case key.Matches(msg, m.keys.AutoReconnect):
		m.ctl.SetAutoReconnect(!m.snap.Config.AutoReconnect)
		return m.refresh(), nil

	case key.Matches(msg, m.keys.Reconnect):
		m.ctl.ForceReconnect()
		return m.refresh(), nil

	case key.Matches(msg, m.keys.Filter):
		return m, m.prompt.Open(prompt.KindFilter, m.snap.Config.Filter.Text)

	case key.Matches(msg, m.keys.Send):
		return m, m.prompt.Open(prompt.KindSend, "")

	case key.Matches(msg, m.keys.Clear):
		m.logView.Clear()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	}

	// Anything else scrolls the log.
	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

func (m Model) commitPrompt() Model {
	text := m.prompt.Value()
	switch m.prompt.Kind {
	case prompt.KindSend:
		if text != "" {
			if _, err := m.ctl.Send(text); err != nil {
				m.logView.Append(session.Event{
					Kind:      session.KindMessage,
					Payload:   "send failed: " + err.Error(),
					Color:     session.ColorError,
					Timestamp: time.Now(),
				})
			}
		}
	case prompt.KindFilter:
		m.ctl.SetFilter(text)
	}
	m.prompt.Close()
	return m.refresh()
}

func (m Model) refresh() Model {
	m.snap = m.ctl.Snapshot()
	m.statusBar.Snap = m.snap
	return m
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.helpView.View())
	}

	gauges := m.rxGauge.View() + "   " + m.txGauge.View()

	footer := m.prompt.View()
	if footer == "" {
		footer = theme.StyleDimmed.Render("  p:pause  x:hex  e:echo  n:ending  /:filter  i:send  r:reconnect  ?:help  q:quit") +
			m.logView.ScrollInfo()
	}

	sections := []string{
		m.statusBar.View(),
		gauges,
		m.logView.View(),
		footer,
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
