package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Colors - cyberpunk/neon palette
var (
	ColorPrimary = lipgloss.Color("#C084FC") // soft violet
	ColorSuccess = lipgloss.Color("#39FF14") // neon green
	ColorDanger  = lipgloss.Color("#FF5555") // red
	ColorMuted   = lipgloss.Color("#4A5568") // darker muted
	ColorBorder  = lipgloss.Color("#4A5568") // border
	ColorCyan    = lipgloss.Color("#00FFFF") // neon cyan
	ColorDir     = lipgloss.Color("#00FFFF") // cyan for directories
	ColorFile    = lipgloss.Color("#A0A0A0") // dimmer for files
	ColorText    = lipgloss.Color("#E4E4E7") // default text

	// Freed space
	ColorShrunk = lipgloss.Color("#5EEAD4") // teal - freed space
)

// Styles
var (
	// Header
	StatsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	// Browser
	BrowserPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorder).
				Padding(0, 1)

	BrowserItemSelected = lipgloss.NewStyle().
				Background(ColorPrimary).
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true)

	// Clear dialog
	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)

	DialogErrorStyle = DialogStyle.
				BorderForeground(ColorDanger)

	DialogTitle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	DialogOption = lipgloss.NewStyle().
			Foreground(ColorText).
			Padding(0, 1)

	DialogOptionSelected = lipgloss.NewStyle().
				Background(ColorPrimary).
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true).
				Padding(0, 1)

	// Help bar - dimmer with bright key highlights
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3D4555")). // very dim
			Padding(0, 1)

	HelpKey = lipgloss.NewStyle().
		Foreground(ColorCyan).
		Background(lipgloss.Color("#1E3A4C")). // subtle dark cyan bg
		Padding(0, 1)

	// Help overlay key style (no background for cleaner look)
	HelpOverlayKey = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Padding(0, 1)

	// Freed space indicator
	ShrunkStyle = lipgloss.NewStyle().
			Foreground(ColorShrunk)
)

// FormatSize formats bytes to human readable string
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	// Handle negative values
	negative := bytes < 0
	if negative {
		bytes = -bytes
	}

	var result string
	switch {
	case bytes >= TB:
		result = fmt.Sprintf("%.1fTB", float64(bytes)/TB)
	case bytes >= GB:
		result = fmt.Sprintf("%.1fGB", float64(bytes)/GB)
	case bytes >= MB:
		result = fmt.Sprintf("%.1fMB", float64(bytes)/MB)
	case bytes >= KB:
		result = fmt.Sprintf("%.1fKB", float64(bytes)/KB)
	default:
		result = fmt.Sprintf("%dB", bytes)
	}

	if negative {
		return "-" + result
	}
	return result
}

// FormatTime formats a time for display, using shorter format for current year
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Year() == time.Now().Year() {
		return t.Format("Jan 2 15:04")
	}
	return t.Format("Jan 2, 2006 15:04")
}
