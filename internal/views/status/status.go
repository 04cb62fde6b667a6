// Package status renders the status bar: connection state, port identity,
// throughput counters and the active toggle flags.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sigmakib2/serialconsole/internal/session"
	"github.com/Sigmakib2/serialconsole/internal/theme"
	"github.com/charmbracelet/lipgloss"
)

// Model holds the status bar state.
type Model struct {
	Width   int
	Snap    session.Snapshot
	Now     time.Time
	Clients int
}

// New creates a status bar model.
func New() Model {
	return Model{}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	stateName := m.Snap.State.String()
	stateStyle := lipgloss.NewStyle().Foreground(theme.StateColor(stateName))
	stateStr := stateStyle.Render(theme.StateGlyph(stateName) + " " + stateName)

	if m.Snap.State == session.Reconnecting {
		remaining := m.Snap.RetryRemaining(m.Now)
		stateStr += theme.StyleDimmed.Render(fmt.Sprintf(" (attempt %d, retry in %s)",
			m.Snap.Attempt, remaining.Round(time.Second)))
	}

	portStr := theme.StyleHeader.Render(fmt.Sprintf("%s@%d", m.Snap.PortPath, m.Snap.Baud))

	stats := m.Snap.Stats
	trafficStr := fmt.Sprintf("rx %s  tx %s  msgs %d",
		formatBytes(stats.BytesReceived),
		formatBytes(stats.BytesSent),
		stats.MessagesReceived)

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	parts := []string{stateStr, portStr, trafficStr, m.renderToggles()}

	if fp := stats.Footprint; fp.RSSBytes > 0 {
		parts = append(parts, theme.StyleDimmed.Render(
			fmt.Sprintf("cpu %.1f%% rss %s", fp.CPUPercent, formatBytes(fp.RSSBytes))))
	}
	if m.Clients > 0 {
		parts = append(parts, theme.StyleDimmed.Render(fmt.Sprintf("%d remote", m.Clients)))
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(strings.Join(parts, sep))
}

func (m Model) renderToggles() string {
	cfg := m.Snap.Config
	on := lipgloss.NewStyle().Foreground(theme.ColorSuccess)
	off := theme.StyleDimmed

	flag := func(label string, active bool) string {
		if active {
			return on.Render(label)
		}
		return off.Render(label)
	}

	parts := []string{
		flag("PAUSE", cfg.Paused),
		flag("HEX", cfg.ShowHex),
		flag("ECHO", cfg.Echo),
		flag("AUTO", cfg.AutoReconnect),
		on.Render(strings.ToUpper(cfg.LineEnding.String())),
	}
	if cfg.Filter.Enabled {
		parts = append(parts, on.Render(fmt.Sprintf("FILTER:%q", cfg.Filter.Text)))
	}
	return strings.Join(parts, " ")
}

// formatBytes formats byte counts with K/M suffixes.
func formatBytes(n uint64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fMB", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fKB", float64(n)/1_000)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
