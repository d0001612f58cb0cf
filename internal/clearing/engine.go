// Package clearing empties a directory on disk while keeping the scanned
// tree in step with what has been removed.
//
// An Engine owns the tree for the duration of one operation. It walks the
// clear root depth first, removes entries bottom up, releases each tree
// node as soon as its disk entry is gone, and asks the operator what to
// do whenever the filesystem refuses an operation.
package clearing

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lumipallolabs/diskprune/internal/logging"
	"github.com/lumipallolabs/diskprune/internal/model"
)

var (
	ErrBusy         = errors.New("clear already in progress")
	ErrNotDirectory = errors.New("only directories can be cleared")
)

// DefaultUpdateDelay is the minimum interval between progress redraws
const DefaultUpdateDelay = 100 * time.Millisecond

// FS is the working-directory view of the filesystem used by the engine.
// Names passed to Rmdir and Unlink are relative to the last Chdir.
type FS interface {
	Chdir(path string) error
	Rmdir(name string) error
	Unlink(name string) error
}

// Event is one serviced input
type Event struct {
	Key       Key
	Resize    bool
	Interrupt bool // program-level quit, independent of the dialog
}

// EventSource delivers input to the engine. Poll services at most one
// pending event; with blocking set it waits for one.
type EventSource interface {
	Poll(blocking bool) Event
}

// Hooks connect the engine to the rest of the UI
type Hooks interface {
	// Draw renders the dialog over the browse background
	Draw(v View)
	// Return hands control back to the browser, positioned at node
	Return(node model.NodeID)
}

// Result summarises a finished operation
type Result struct {
	Root      model.NodeID
	Cancelled bool
	Removed   int   // entries removed from disk and tree
	Errors    int   // failed filesystem operations, ignored or not
	Freed     int64 // allocated bytes of files actually removed from disk
}

// Engine runs clear operations against a tree
type Engine struct {
	tree   *model.Tree
	fs     FS
	events EventSource
	hooks  Hooks
	dialog *Dialog

	root        model.NodeID
	active      bool
	result      Result
	updateDelay time.Duration
	lastDraw    time.Time
}

// New creates an engine. prefs is shared with later engines of the same
// session so sticky choices survive between operations.
func New(tree *model.Tree, fs FS, events EventSource, hooks Hooks, prefs *Prefs) *Engine {
	return &Engine{
		tree:        tree,
		fs:          fs,
		events:      events,
		hooks:       hooks,
		dialog:      NewDialog(prefs),
		root:        model.None,
		updateDelay: DefaultUpdateDelay,
	}
}

// SetUpdateDelay sets the minimum interval between progress redraws
func (e *Engine) SetUpdateDelay(d time.Duration) {
	e.updateDelay = d
}

// Active reports whether an operation has begun and not yet returned
func (e *Engine) Active() bool {
	return e.active
}

// Dialog returns the dialog state machine
func (e *Engine) Dialog() *Dialog {
	return e.dialog
}

// View snapshots the dialog for rendering
func (e *Engine) View() View {
	return e.dialog.View(e.tree)
}

// HandleKey routes a key to the dialog and reports whether to stop
func (e *Engine) HandleKey(k Key) bool {
	return e.dialog.HandleKey(k)
}

// Begin prepares a clear of root. The root itself is never removed.
func (e *Engine) Begin(root model.NodeID) error {
	if e.active {
		return ErrBusy
	}
	if !e.tree.Valid(root) {
		return fmt.Errorf("clear: invalid node %d", root)
	}
	if !e.tree.Node(root).IsDir() {
		return fmt.Errorf("clear %s: %w", e.tree.Path(root), ErrNotDirectory)
	}

	e.root = root
	e.dialog.State = StateConfirm
	e.dialog.Root = root
	e.dialog.Current = root
	e.dialog.Err = nil
	e.tree.Pin(root)
	e.active = true
	e.result = Result{Root: root}
	return nil
}

// Run confirms, clears and hands control back to the browser. It blocks
// until the operation is finished, cancelled or aborted.
func (e *Engine) Run() Result {
	if !e.active {
		return Result{Root: model.None}
	}

	t := e.tree
	root := e.root
	back := t.Parent(root)
	if back == model.None {
		back = root
	}
	log := logging.Clear.WithField("root", t.Path(root))

	defer func() {
		if c, ok := e.fs.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.WithError(err).Warn("closing working directory")
			}
		}
		t.Unpin()
		e.active = false
		e.hooks.Return(back)
	}()

	e.dialog.Selected = OptionNo
	for e.dialog.State == StateConfirm && !e.dialog.prefs.NoConfirm {
		if e.poll(true) {
			log.Debug("clear not confirmed")
			e.result.Cancelled = true
			return e.result
		}
	}

	if err := e.fs.Chdir(filepath.Dir(t.Path(root))); err != nil {
		log.WithError(err).Warn("entering parent directory")
		e.result.Errors++
		if !e.dialog.prefs.IgnoreErrors {
			e.dialog.Fail(root, err)
			for e.dialog.State == StateError {
				if e.poll(true) {
					e.result.Cancelled = true
					return e.result
				}
			}
		}
	}

	e.dialog.Selected = OptionAbort
	e.dialog.State = StateProgress
	e.render(true)
	e.clear(root)

	log.WithFields(logrus.Fields{
		"removed":   e.result.Removed,
		"errors":    e.result.Errors,
		"cancelled": e.result.Cancelled,
	}).Info("clear finished")
	return e.result
}

// clear processes node and its subtree. It returns true when everything
// must stop: either the operator cancelled, or node is the clear root
// and the operation is complete.
func (e *Engine) clear(id model.NodeID) bool {
	t := e.tree
	e.dialog.Current = id
	if e.poll(false) {
		e.result.Cancelled = true
		return true
	}

	name := t.Node(id).Name
	isDir := t.Node(id).IsDir()

	var err error
	if isDir {
		if err = e.fs.Chdir(name); err == nil {
			for cur := t.FirstChild(id); cur != model.None; {
				// cur may be released by the recursive call
				next := t.Next(cur)
				if e.clear(cur) {
					_ = e.fs.Chdir("..")
					return true
				}
				cur = next
			}
			if err = e.fs.Chdir(".."); err == nil && t.FirstChild(id) == model.None && id != e.root {
				err = e.fs.Rmdir(name)
			}
		}
	} else {
		err = e.fs.Unlink(name)
	}

	if err != nil {
		e.result.Errors++
		logging.Clear.WithError(err).WithField("path", t.Path(id)).Debug("clear failed")
		if !e.dialog.prefs.IgnoreErrors {
			e.dialog.Fail(id, err)
			for e.dialog.State == StateError {
				if e.poll(true) {
					e.result.Cancelled = true
					return true
				}
			}
		}
	}

	// An ignored error releases the node exactly like a successful removal.
	if !(isDir && t.FirstChild(id) != model.None) && id != e.root {
		if err == nil {
			e.result.Removed++
			// an inode is freed with its last link in the tree
			if !isDir && len(t.Hardlinks(id)) == 1 {
				e.result.Freed += t.Node(id).ASize
			}
		}
		t.Remove(id)
		return false
	}
	return id == e.root
}

// poll services one event and reports whether to stop
func (e *Engine) poll(blocking bool) bool {
	if blocking {
		e.render(true)
	}
	ev := e.events.Poll(blocking)
	if ev.Interrupt {
		return true
	}
	stop := false
	if ev.Key != KeyNone {
		stop = e.dialog.HandleKey(ev.Key)
	}
	e.render(ev.Key != KeyNone || ev.Resize)
	return stop
}

func (e *Engine) render(force bool) {
	now := time.Now()
	if !force && now.Sub(e.lastDraw) < e.updateDelay {
		return
	}
	e.lastDraw = now
	e.hooks.Draw(e.dialog.View(e.tree))
}
