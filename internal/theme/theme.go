// Package theme provides the Lip Gloss color palette and reusable styles
// for the serial console TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Connection state colors.
var (
	ColorConnected    = lipgloss.Color("#22c55e")
	ColorConnecting   = lipgloss.Color("#d97706")
	ColorReconnecting = lipgloss.Color("#f59e0b")
	ColorDisconnected = lipgloss.Color("#6b7280")
	ColorFailed       = lipgloss.Color("#dc2626")
)

// Event colors.
var (
	ColorInfo    = lipgloss.Color("#3b82f6")
	ColorSuccess = lipgloss.Color("#16a34a")
	ColorWarning = lipgloss.Color("#d97706")
	ColorError   = lipgloss.Color("#dc2626")
)

// UI chrome colors.
var (
	ColorBorder   = lipgloss.Color("#4b5563")
	ColorDimmed   = lipgloss.Color("#6b7280")
	ColorBright   = lipgloss.Color("#f9fafb")
	ColorOutbound = lipgloss.Color("#a855f7")
	ColorHex      = lipgloss.Color("#06b6d4")
	ColorRx       = lipgloss.Color("#22c55e")
	ColorTx       = lipgloss.Color("#3b82f6")
)

// StateColor returns the color for a connection state name.
func StateColor(state string) lipgloss.Color {
	switch state {
	case "connected":
		return ColorConnected
	case "connecting":
		return ColorConnecting
	case "reconnecting":
		return ColorReconnecting
	case "failed":
		return ColorFailed
	default:
		return ColorDisconnected
	}
}

// StateGlyph returns a glyph for a connection state name.
func StateGlyph(state string) string {
	switch state {
	case "connected":
		return "●"
	case "connecting":
		return "◎"
	case "reconnecting":
		return "◌"
	case "failed":
		return "✗"
	default:
		return "○"
	}
}

// EventColor returns the color for an event color tag.
func EventColor(tag string) lipgloss.Color {
	switch tag {
	case "success":
		return ColorSuccess
	case "warning":
		return ColorWarning
	case "error":
		return ColorError
	case "info":
		return ColorInfo
	default:
		return ColorBright
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleOutbound = lipgloss.NewStyle().
			Foreground(ColorOutbound)

	StyleHex = lipgloss.NewStyle().
			Foreground(ColorHex)
)
