package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lumipallolabs/diskprune/internal/clearing"
)

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Top          key.Binding
	Bottom       key.Binding
	Open         key.Binding
	Back         key.Binding
	Clear        key.Binding
	Rescan       key.Binding
	OpenExplorer key.Binding
	Preview      key.Binding
	Help         key.Binding
	Quit         key.Binding

	// Clear dialog
	DialogLeft   key.Binding
	DialogRight  key.Binding
	DialogAccept key.Binding
	DialogQuit   key.Binding
	Interrupt    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn", "page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", "right", "l"),
			key.WithHelp("→/enter", "open directory"),
		),
		Back: key.NewBinding(
			key.WithKeys("left", "h", "backspace", "esc"),
			key.WithHelp("←/esc", "parent directory"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear directory"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		OpenExplorer: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in file manager"),
		),
		Preview: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "preview"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),

		DialogLeft: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous option"),
		),
		DialogRight: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next option"),
		),
		DialogAccept: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "choose"),
		),
		DialogQuit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "abort"),
		),
		Interrupt: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
	}
}

// ShortHelp returns the bindings shown in the help bar
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Back, k.Clear, k.Preview, k.Rescan, k.Help, k.Quit}
}

// FullHelp returns all help bindings, one group per helpSections entry
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom, k.Open, k.Back},
		{k.Clear, k.Rescan, k.OpenExplorer, k.Preview, k.Help, k.Quit},
		{k.DialogLeft, k.DialogRight, k.DialogAccept, k.DialogQuit},
	}
}

var helpSections = []string{"Navigation", "Actions", "Clear dialog"}

// DialogEvent decodes a terminal key for the clear engine
func (k KeyMap) DialogEvent(msg tea.KeyMsg) clearing.Event {
	switch {
	case key.Matches(msg, k.Interrupt):
		return clearing.Event{Interrupt: true}
	case key.Matches(msg, k.DialogLeft):
		return clearing.Event{Key: clearing.KeyLeft}
	case key.Matches(msg, k.DialogRight):
		return clearing.Event{Key: clearing.KeyRight}
	case key.Matches(msg, k.DialogAccept):
		return clearing.Event{Key: clearing.KeyAccept}
	case key.Matches(msg, k.DialogQuit):
		return clearing.Event{Key: clearing.KeyQuit}
	}
	return clearing.Event{}
}
