// Package help renders the key-binding reference overlay from markdown.
package help

import (
	"github.com/Sigmakib2/serialconsole/internal/theme"
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# Serial Console

## Keys

| Key | Action |
|-----|--------|
| p | pause / resume output |
| x | toggle hex view |
| e | toggle local echo |
| n | cycle line ending (LF → CR → CRLF) |
| / | set output filter |
| i | compose and send a line |
| r | force reconnect |
| a | toggle auto-reconnect |
| c | clear the log |
| j/k, PgUp/PgDn | scroll the log |
| ? | toggle this help |
| q | quit |

## Remote access

The feed server exposes the live event stream on ` + "`/ws`" + `, the current
snapshot on ` + "`/api/snapshot`" + ` and accepts sends on ` + "`/api/send`" + `.
`

// Model caches the rendered markdown per width.
type Model struct {
	rendered string
	width    int
}

func New() Model {
	return Model{}
}

// SetWidth re-renders the help text when the terminal width changes.
func (m *Model) SetWidth(width int) {
	if width == m.width && m.rendered != "" {
		return
	}
	m.width = width

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(width-4, 80)),
	)
	if err != nil {
		m.rendered = helpMarkdown
		return
	}
	out, err := renderer.Render(helpMarkdown)
	if err != nil {
		m.rendered = helpMarkdown
		return
	}
	m.rendered = out
}

func (m Model) View() string {
	return theme.StyleBorder.Padding(0, 2).Render(m.rendered)
}
