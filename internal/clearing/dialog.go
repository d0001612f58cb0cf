package clearing

import (
	"github.com/lumipallolabs/diskprune/internal/model"
)

// State is the dialog currently shown during a clear operation
type State int

const (
	StateConfirm State = iota
	StateProgress
	StateError
)

// String returns a human-readable state name
func (s State) String() string {
	switch s {
	case StateConfirm:
		return "confirm"
	case StateProgress:
		return "progress"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Key is a dialog input, already decoded from the terminal key
type Key int

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyAccept
	KeyQuit
)

// Confirm dialog options
const (
	OptionYes = iota
	OptionNo
	OptionNeverAsk
)

// Error dialog options
const (
	OptionAbort = iota
	OptionIgnore
	OptionIgnoreAll
)

const maxOption = 2

// Prefs are the sticky preferences of a session. Once set they stay set
// for every later clear operation that shares the same Prefs.
type Prefs struct {
	NoConfirm    bool // skip the confirm dialog
	IgnoreErrors bool // never raise the error dialog
}

// Dialog is the confirm / progress / error state machine
type Dialog struct {
	State    State
	Selected int
	Root     model.NodeID
	Current  model.NodeID
	Err      error // valid in StateError only

	prefs *Prefs
}

// NewDialog creates a dialog sharing prefs with its session
func NewDialog(prefs *Prefs) *Dialog {
	if prefs == nil {
		prefs = &Prefs{}
	}
	return &Dialog{
		Root:    model.None,
		Current: model.None,
		prefs:   prefs,
	}
}

// Prefs returns the sticky preferences
func (d *Dialog) Prefs() *Prefs {
	return d.prefs
}

// Fail enters the error dialog for node with the highlight on "abort"
func (d *Dialog) Fail(node model.NodeID, err error) {
	d.State = StateError
	d.Current = node
	d.Err = err
	d.Selected = OptionAbort
}

// HandleKey applies one key and reports whether the dialog wants the
// operation to stop.
func (d *Dialog) HandleKey(k Key) bool {
	switch d.State {
	case StateConfirm:
		switch k {
		case KeyLeft, KeyRight:
			d.move(k)
		case KeyAccept:
			if d.Selected == OptionNo {
				return true
			}
			if d.Selected == OptionNeverAsk {
				d.prefs.NoConfirm = true
			}
			d.State = StateProgress
		case KeyQuit:
			return true
		}

	case StateProgress:
		if k == KeyQuit {
			return true
		}

	case StateError:
		switch k {
		case KeyLeft, KeyRight:
			d.move(k)
		case KeyAccept:
			if d.Selected == OptionAbort {
				return true
			}
			if d.Selected == OptionIgnoreAll {
				d.prefs.IgnoreErrors = true
			}
			d.State = StateProgress
			d.Err = nil
		case KeyQuit:
			return true
		}
	}
	return false
}

func (d *Dialog) move(k Key) {
	if k == KeyLeft && d.Selected > 0 {
		d.Selected--
	}
	if k == KeyRight && d.Selected < maxOption {
		d.Selected++
	}
}
