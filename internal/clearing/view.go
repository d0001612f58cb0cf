package clearing

import (
	"errors"
	"os"
	"syscall"

	"github.com/lumipallolabs/diskprune/internal/model"
)

// View is an immutable snapshot of the dialog for rendering
type View struct {
	State    State
	Selected int
	RootName string // always a directory, Begin refuses anything else
	Path     string // path of the node being visited
	AtRoot   bool   // the node being visited is the clear root
	Err      string // OS error text, StateError only
}

// View snapshots the dialog. It reads the tree, so it must run on the
// goroutine that owns the tree.
func (d *Dialog) View(t *model.Tree) View {
	v := View{
		State:    d.State,
		Selected: d.Selected,
	}
	if t.Valid(d.Root) {
		v.RootName = t.Node(d.Root).Name
	}
	switch {
	case t.Valid(d.Current):
		v.Path = t.Path(d.Current)
	case t.Valid(d.Root):
		v.Path = t.Path(d.Root)
	}
	v.AtRoot = d.Current == d.Root
	if d.State == StateError && d.Err != nil {
		v.Err = osErrorText(d.Err)
	}
	return v
}

// osErrorText returns the bare OS description ("permission denied") when
// err wraps an errno, and the full message otherwise.
func osErrorText(err error) string {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno.Error()
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}
