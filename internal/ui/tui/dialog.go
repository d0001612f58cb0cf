package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/lumipallolabs/diskprune/internal/clearing"
)

const (
	dialogWidth   = 60 // outer width of the clear dialog
	dialogInner   = dialogWidth - 4
	dialogCaret   = "▸"
	dialogNoCaret = " "
)

var (
	confirmOptions = []string{"yes", "no", "don't ask me again"}
	errorOptions   = []string{"abort", "ignore", "ignore all"}
)

// renderDialog draws the clear dialog for one engine snapshot
func renderDialog(v clearing.View) string {
	var title string
	var lines []string
	style := DialogStyle

	switch v.State {
	case clearing.StateConfirm:
		title = "Confirm clear"
		lines = []string{
			fmt.Sprintf("Are you sure you want to clear %q?", cropMiddle(v.RootName, 21)),
			"",
			renderOptions(confirmOptions, v.Selected),
		}

	case clearing.StateProgress:
		title = "Clearing..."
		hint := lipgloss.NewStyle().Foreground(ColorMuted).Render("Press q to abort")
		lines = []string{
			cropMiddle(v.Path, dialogInner),
			"",
			lipgloss.PlaceHorizontal(dialogInner, lipgloss.Right, hint),
		}

	case clearing.StateError:
		title = "Error!"
		style = DialogErrorStyle
		verb := "delete"
		if v.AtRoot {
			verb = "clear"
		}
		lines = []string{
			fmt.Sprintf("Can't %s %s:", verb, cropMiddle(v.Path, dialogInner-13)),
			"  " + lipgloss.NewStyle().Foreground(ColorDanger).Render(v.Err),
			renderOptions(errorOptions, v.Selected),
		}
	}

	body := DialogTitle.Render(title) + "\n" + strings.Join(lines, "\n")
	return style.Width(dialogWidth - 2).Render(body)
}

// renderOptions lays out the options on one centered row. The caret
// marks the highlighted option.
func renderOptions(options []string, selected int) string {
	parts := make([]string, len(options))
	for i, opt := range options {
		if i == selected {
			parts[i] = dialogCaret + DialogOptionSelected.Render(opt)
		} else {
			parts[i] = dialogNoCaret + DialogOption.Render(opt)
		}
	}
	return lipgloss.PlaceHorizontal(dialogInner, lipgloss.Center, strings.Join(parts, " "))
}

// cropMiddle shortens s to max cells, keeping both ends
func cropMiddle(s string, max int) string {
	if max < 5 || ansi.StringWidth(s) <= max {
		return s
	}
	runes := []rune(s)
	keep := max - 3
	head := keep / 2
	tail := keep - head
	for ansi.StringWidth(string(runes[:head]))+ansi.StringWidth(string(runes[len(runes)-tail:])) > keep && head > 0 {
		head--
	}
	return string(runes[:head]) + "..." + string(runes[len(runes)-tail:])
}

// overlay draws box centered over background. Background cells under
// the box are replaced; the rest of each line is kept.
func overlay(background, box string, width, height int) string {
	if width <= 0 || height <= 0 {
		return box
	}
	bgLines := strings.Split(background, "\n")
	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}
	boxLines := strings.Split(box, "\n")
	boxW := lipgloss.Width(box)

	x := (width - boxW) / 2
	if x < 0 {
		x = 0
	}
	y := (height - len(boxLines)) / 2
	if y < 0 {
		y = 0
	}

	for i, line := range boxLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		bg := bgLines[row]
		left := ansi.Truncate(bg, x, "")
		if pad := x - ansi.StringWidth(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		right := ansi.TruncateLeft(bg, x+boxW, "")
		bgLines[row] = left + line + right
	}
	return strings.Join(bgLines[:height], "\n")
}
