package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lumipallolabs/diskprune/internal/model"
)

const headerProgressBarWidth = 20 // Width of disk usage progress bar

// Header displays volume info and stats (2 lines)
type Header struct {
	path         string
	volume       model.Volume
	width        int
	freedSession int64
	freedTotal   int64
	version      string
}

// NewHeader creates a new header component
func NewHeader(path, version string) Header {
	return Header{
		path:    path,
		version: version,
	}
}

// SetVolume updates the disk space shown
func (h *Header) SetVolume(v model.Volume) {
	h.volume = v
}

// SetFreedStats sets the freed space statistics
func (h *Header) SetFreedStats(session, total int64) {
	h.freedSession = session
	h.freedTotal = total
}

// SetWidth sets the header width
func (h *Header) SetWidth(w int) {
	h.width = w
}

// View renders the header
// Line 1: DiskPrune 0.1.0                  Free: X / Y [bar]
// Line 2: Path: /some/dir                  Freed: X session | Y total
func (h Header) View() string {
	nameStyle := lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#9CA3AF")) // lighter dim gray
	barFilledStyle := lipgloss.NewStyle().
		Foreground(ColorPrimary)
	barEmptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	// === LINE 1: App name (left) | Free space stats (right) ===
	appName := nameStyle.Render("DiskPrune") + dimStyle.Render(" "+h.version)

	var freeStats string
	if h.volume.TotalBytes > 0 {
		freeLabel := dimStyle.Render("Free: ")
		freeValue := StatsStyle.Render(fmt.Sprintf("%s / %s", FormatSize(h.volume.FreeBytes), FormatSize(h.volume.TotalBytes)))
		freeStats = freeLabel + freeValue

		fullStatsWidth := lipgloss.Width(freeStats) + 2 + headerProgressBarWidth
		if h.width >= lipgloss.Width(appName)+fullStatsWidth+4 {
			// bar shows used space: filled = used, empty = free
			filled := int(h.volume.UsedPercent() / 100 * headerProgressBarWidth)
			if filled > headerProgressBarWidth {
				filled = headerProgressBarWidth
			}
			bar := barFilledStyle.Render(strings.Repeat("▓", filled)) +
				barEmptyStyle.Render(strings.Repeat("░", headerProgressBarWidth-filled))
			freeStats += StatsStyle.Render("  ") + bar
		}
	}
	line1 := joinEnds(appName, freeStats, h.width)

	// === LINE 2: Path (left) | Freed stats (right) ===
	var freedStats string
	if h.freedSession > 0 || h.freedTotal > 0 {
		freedStats = dimStyle.Render("Freed: ") +
			ShrunkStyle.Render(FormatSize(h.freedSession)+" session") +
			dimStyle.Render(" | ") +
			dimStyle.Render(FormatSize(h.freedTotal)+" total")
	}

	pathLabel := dimStyle.Render("Path: ")
	var mount string
	if h.volume.Mount != "" {
		mount = dimStyle.Render(fmt.Sprintf("  on %s (%s)", h.volume.Mount, h.volume.FSType))
	}
	room := h.width - lipgloss.Width(pathLabel) - lipgloss.Width(mount) - lipgloss.Width(freedStats) - 2
	pathValue := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true).
		Render(cropMiddle(h.path, room))
	line2 := joinEnds(pathLabel+pathValue+mount, freedStats, h.width)

	return lipgloss.JoinVertical(lipgloss.Left, line1, line2)
}

// joinEnds puts left and right at the two ends of a width-wide line
func joinEnds(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + right
}
