package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

const helpKeyColumnWidth = 14 // Width for key column in help text (includes padding)

// HelpOverlay displays keyboard shortcuts in a centered overlay
type HelpOverlay struct {
	visible bool
	width   int
	height  int
	version string
	keys    KeyMap
}

// NewHelpOverlay creates a new help overlay component
func NewHelpOverlay(version string, keys KeyMap) HelpOverlay {
	return HelpOverlay{
		version: version,
		keys:    keys,
	}
}

// Toggle toggles the visibility of the help overlay
func (h *HelpOverlay) Toggle() {
	h.visible = !h.visible
}

// SetVisible sets the visibility of the help overlay
func (h *HelpOverlay) SetVisible(visible bool) {
	h.visible = visible
}

// IsVisible returns whether the help overlay is visible
func (h HelpOverlay) IsVisible() bool {
	return h.visible
}

// SetSize sets the dimensions of the help overlay
func (ho *HelpOverlay) SetSize(w, h int) {
	ho.width = w
	ho.height = h
}

// View renders the help overlay
func (h HelpOverlay) View() string {
	if !h.visible {
		return ""
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 3)
	sectionStyle := lipgloss.NewStyle().
		Foreground(ColorMuted).
		MarginTop(1)
	descStyle := lipgloss.NewStyle().Foreground(ColorText)
	dimStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	var content strings.Builder

	// App name and version header
	content.WriteString(lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Render("DiskPrune"))
	if h.version != "" {
		content.WriteString(dimStyle.Render(" " + h.version))
	}
	content.WriteString("\n")

	for i, group := range h.keys.FullHelp() {
		content.WriteString(sectionStyle.Render(helpSections[i]))
		content.WriteString("\n")
		for _, b := range group {
			content.WriteString(formatHelpLine(HelpOverlayKey, descStyle, b))
		}
	}

	// Footer
	content.WriteString("\n")
	content.WriteString(dimStyle.Render("Press any key to close"))

	box := boxStyle.Render(content.String())
	return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, box)
}

// formatHelpLine formats a single help line with key and description
func formatHelpLine(keyStyle, descStyle lipgloss.Style, b key.Binding) string {
	help := b.Help()
	return keyStyle.Width(helpKeyColumnWidth).Render(help.Key) + descStyle.Render(help.Desc) + "\n"
}

// HelpBar renders a bottom help bar with key hints. Narrow terminals get
// the first few hints only.
func HelpBar(width int, keys KeyMap) string {
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")) // lighter dim description

	hints := keys.ShortHelp()
	switch {
	case width < 60:
		hints = []key.Binding{keys.Help, keys.Quit}
	case width < 100:
		hints = []key.Binding{keys.Open, keys.Back, keys.Clear, keys.Help, keys.Quit}
	}

	parts := make([]string, 0, len(hints))
	for _, b := range hints {
		help := b.Help()
		parts = append(parts, HelpKey.Render(help.Key)+" "+descStyle.Render(help.Desc))
	}

	separator := "   "
	if width < 80 {
		separator = "  "
	}
	return HelpStyle.Width(width).MaxHeight(1).Render(strings.Join(parts, separator))
}
