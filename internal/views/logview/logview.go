// Package logview renders the scrollable output log, including hex dumps
// of raw chunks when the hex view is on.
package logview

import (
	"fmt"
	"strings"

	"github.com/Sigmakib2/serialconsole/internal/session"
	"github.com/Sigmakib2/serialconsole/internal/theme"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultScrollback = 2000

// Model wraps a viewport over the rendered log lines. While the viewport
// sits at the bottom it follows new output; scrolling up pins it.
type Model struct {
	viewport   viewport.Model
	lines      []string
	scrollback int
	follow     bool
	sized      bool
}

// New creates a log model keeping at most scrollback rendered lines;
// zero or negative means the default.
func New(scrollback int) Model {
	if scrollback <= 0 {
		scrollback = defaultScrollback
	}
	return Model{scrollback: scrollback, follow: true}
}

// SetSize resizes the viewport.
func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.sized = true
	m.refresh()
}

// Append renders one session event into log lines.
func (m *Model) Append(ev session.Event) {
	m.lines = append(m.lines, renderEvent(ev)...)
	if len(m.lines) > m.scrollback {
		m.lines = m.lines[len(m.lines)-m.scrollback:]
	}
	m.refresh()
}

// Clear drops all log lines.
func (m *Model) Clear() {
	m.lines = nil
	m.follow = true
	m.refresh()
}

func (m *Model) refresh() {
	if !m.sized {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// Update forwards scroll keys to the viewport and tracks follow mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.sized {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	m.follow = m.viewport.AtBottom()
	return m, cmd
}

// ScrollInfo returns a short indicator when scrolled away from the bottom.
func (m Model) ScrollInfo() string {
	if !m.sized || m.follow {
		return ""
	}
	return theme.StyleDimmed.Render(fmt.Sprintf(" ↓ %d%%", int(m.viewport.ScrollPercent()*100)))
}

func (m Model) View() string {
	if !m.sized {
		return ""
	}
	return m.viewport.View()
}

func renderEvent(ev session.Event) []string {
	ts := theme.StyleDimmed.Render(ev.Timestamp.Format("15:04:05.000"))

	switch ev.Kind {
	case session.KindHex:
		var lines []string
		for _, row := range HexDump(ev.Raw) {
			lines = append(lines, ts+" "+theme.StyleHex.Render(row))
		}
		return lines

	case session.KindStateChange:
		style := lipgloss.NewStyle().Foreground(theme.StateColor(ev.State.String()))
		return []string{ts + " " + style.Render("-- "+ev.Payload)}

	default:
		if ev.Outbound {
			return []string{ts + " " + theme.StyleOutbound.Render("→ "+ev.Payload)}
		}
		style := lipgloss.NewStyle().Foreground(theme.EventColor(string(ev.Color)))
		return []string{ts + " " + style.Render(ev.Payload)}
	}
}

// HexDump formats raw bytes as rows of 16 hex pairs with an ASCII gutter.
func HexDump(data []byte) []string {
	const cols = 16
	var rows []string
	for off := 0; off < len(data); off += cols {
		end := off + cols
		if end > len(data) {
			end = len(data)
		}
		chunk := data[off:end]

		var hexPart, asciiPart strings.Builder
		for i := 0; i < cols; i++ {
			if i < len(chunk) {
				fmt.Fprintf(&hexPart, "%02X ", chunk[i])
			} else {
				hexPart.WriteString("   ")
			}
			if i == cols/2-1 {
				hexPart.WriteByte(' ')
			}
		}
		for _, b := range chunk {
			if b >= 0x20 && b < 0x7f {
				asciiPart.WriteByte(b)
			} else {
				asciiPart.WriteByte('.')
			}
		}

		rows = append(rows, fmt.Sprintf("%04X  %s |%s|", off, hexPart.String(), asciiPart.String()))
	}
	return rows
}
