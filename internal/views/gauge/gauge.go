// Package gauge renders spring-smoothed throughput bars for the RX and TX
// byte rates, so bursty serial traffic reads as motion instead of flicker.
package gauge

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
)

const fps = 30

// Model animates a single rate bar toward its target value.
type Model struct {
	Label string
	Color lipgloss.Color
	Width int

	spring harmonica.Spring
	pos    float64
	vel    float64
	target float64
	peak   float64
}

func New(label string, color lipgloss.Color) Model {
	return Model{
		Label:  label,
		Color:  color,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 5.0, 0.8),
		peak:   1,
	}
}

// SetTarget points the spring at a new rate in bytes per second.
func (m *Model) SetTarget(rate float64) {
	m.target = rate
	if rate > m.peak {
		m.peak = rate
	}
}

// Tick advances the spring one frame.
func (m *Model) Tick() {
	m.pos, m.vel = m.spring.Update(m.pos, m.vel, m.target)
	if m.pos < 0 {
		m.pos = 0
	}
}

// View renders the bar scaled against the peak rate seen so far.
func (m Model) View() string {
	barWidth := m.Width
	if barWidth < 10 {
		barWidth = 10
	}

	frac := m.pos / m.peak
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(barWidth))
	empty := barWidth - filled

	bar := lipgloss.NewStyle().Foreground(m.Color).Render(strings.Repeat("▰", filled)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("#4b5563")).Render(strings.Repeat("▱", empty))

	label := lipgloss.NewStyle().Foreground(m.Color).Render(
		fmt.Sprintf("%s %8s/s", m.Label, formatRate(m.pos)))

	return label + " " + bar
}

func formatRate(rate float64) string {
	switch {
	case rate >= 1_000_000:
		return fmt.Sprintf("%.1fMB", rate/1_000_000)
	case rate >= 1_000:
		return fmt.Sprintf("%.1fKB", rate/1_000)
	default:
		return fmt.Sprintf("%.0fB", rate)
	}
}
