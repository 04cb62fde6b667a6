// Package prompt wraps a single-line text input used for composing sends
// and editing the output filter.
package prompt

import (
	"github.com/Sigmakib2/serialconsole/internal/theme"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Kind identifies what the prompt input is for.
type Kind int

const (
	KindNone Kind = iota
	KindSend
	KindFilter
)

type Model struct {
	Kind  Kind
	input textinput.Model
}

func New() Model {
	ti := textinput.New()
	ti.CharLimit = 512
	return Model{input: ti}
}

// Open focuses the prompt for the given purpose, pre-filling the input.
func (m *Model) Open(kind Kind, initial string) tea.Cmd {
	m.Kind = kind
	switch kind {
	case KindSend:
		m.input.Placeholder = "text to send"
	case KindFilter:
		m.input.Placeholder = "filter text (empty clears)"
	}
	m.input.SetValue(initial)
	m.input.CursorEnd()
	return m.input.Focus()
}

// Close blurs and clears the prompt.
func (m *Model) Close() {
	m.Kind = KindNone
	m.input.Blur()
	m.input.SetValue("")
}

func (m Model) Active() bool { return m.Kind != KindNone }

func (m Model) Value() string { return m.input.Value() }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var label string
	switch m.Kind {
	case KindSend:
		label = "send"
	case KindFilter:
		label = "filter"
	default:
		return ""
	}
	return theme.StyleHeader.Render(label+"> ") + m.input.View()
}
