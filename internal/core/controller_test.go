package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumipallolabs/diskprune/internal/clearing"
	"github.com/lumipallolabs/diskprune/internal/model"
	"github.com/lumipallolabs/diskprune/internal/scanner"
	"github.com/lumipallolabs/diskprune/internal/stats"
)

// quietInput never has pending input
type quietInput struct{}

func (quietInput) Poll(blocking bool) clearing.Event {
	if blocking {
		return clearing.Event{Interrupt: true}
	}
	return clearing.Event{}
}

type nopHooks struct{ returned model.NodeID }

func (h *nopHooks) Draw(clearing.View) {}
func (h *nopHooks) Return(node model.NodeID) { h.returned = node }

func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	payload := strings.Repeat("x", 64*1024)
	for _, p := range []string{"cache/a.bin", "cache/nested/b.bin", "keep/c.bin"} {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(payload), 0644))
	}
	return root
}

func scan(t *testing.T, c *Controller) *model.Tree {
	t.Helper()
	events, err := c.StartScan(context.Background())
	require.NoError(t, err)

	var done *ScanCompletedEvent
	started := false
	for ev := range events {
		switch ev := ev.(type) {
		case ScanStartedEvent:
			started = true
		case ScanCompletedEvent:
			done = &ev
		}
	}
	require.True(t, started)
	require.NotNil(t, done)
	require.NoError(t, done.Err)
	assert.Equal(t, PhaseComplete, c.ScanState().Phase)
	c.FinalizeScan()
	return done.Tree
}

func child(tree *model.Tree, parent model.NodeID, name string) model.NodeID {
	for _, id := range tree.Children(parent) {
		if tree.Node(id).Name == name {
			return id
		}
	}
	return model.None
}

func TestControllerScanAndClear(t *testing.T) {
	root := makeTree(t)
	st := stats.NewManager(filepath.Join(t.TempDir(), "stats.json"))
	c, err := NewController(Options{
		Path:    root,
		Workers: 2,
		Scan:    scanner.Options{OneFileSystem: true},
		Stats:   st,
		Prefs:   &clearing.Prefs{NoConfirm: true},
	})
	require.NoError(t, err)
	defer c.Stop()

	tree := scan(t, c)
	assert.Same(t, tree, c.Tree())

	cache := child(tree, tree.Root(), "cache")
	require.NotEqual(t, model.None, cache)
	before := tree.Node(cache).ASize
	rootBefore := tree.Node(tree.Root()).ASize

	hooks := &nopHooks{}
	fs := clearing.NewOSFS()
	ev, err := c.Clear(cache, fs, quietInput{}, hooks)
	require.NoError(t, err)

	assert.False(t, ev.Result.Cancelled)
	assert.Equal(t, 3, ev.Result.Removed)
	assert.Equal(t, before, ev.Freed)
	assert.Equal(t, ev.Freed, ev.SessionFreed)
	assert.Equal(t, tree.Root(), hooks.returned)

	// the clear root stays, empty, on disk and in the tree
	entries, err := os.ReadDir(filepath.Join(root, "cache"))
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.True(t, tree.Valid(cache))
	assert.Zero(t, tree.Node(cache).ASize)
	assert.Equal(t, rootBefore-before, tree.Node(tree.Root()).ASize)

	_, err = os.Stat(filepath.Join(root, "keep", "c.bin"))
	assert.NoError(t, err)

	assert.False(t, c.State().Clearing)
	assert.Equal(t, 1, st.Snapshot().Clears)
	assert.Equal(t, ev.Freed, st.FreedLifetime())
	assert.Equal(t, root, st.LastPath())
}

// failUnlink is an OSFS that refuses to unlink one name
type failUnlink struct {
	*clearing.OSFS
	name string
}

func (f *failUnlink) Unlink(name string) error {
	if name == f.name {
		return &os.PathError{Op: "unlink", Path: name, Err: syscall.EACCES}
	}
	return f.OSFS.Unlink(name)
}

func TestControllerFreedSkipsIgnoredErrors(t *testing.T) {
	root := makeTree(t)
	st := stats.NewManager(filepath.Join(t.TempDir(), "stats.json"))
	c, err := NewController(Options{
		Path:  root,
		Stats: st,
		Prefs: &clearing.Prefs{NoConfirm: true, IgnoreErrors: true},
	})
	require.NoError(t, err)
	defer c.Stop()

	tree := scan(t, c)
	cache := child(tree, tree.Root(), "cache")
	nested := child(tree, cache, "nested")
	kept := tree.Node(child(tree, nested, "b.bin")).ASize

	ev, err := c.Clear(cache, &failUnlink{OSFS: clearing.NewOSFS(), name: "a.bin"}, quietInput{}, &nopHooks{})
	require.NoError(t, err)

	assert.Equal(t, 1, ev.Result.Errors)
	assert.Equal(t, 2, ev.Result.Removed)
	assert.Equal(t, kept, ev.Freed)
	assert.Equal(t, kept, st.FreedLifetime())

	_, err = os.Stat(filepath.Join(root, "cache", "a.bin"))
	assert.NoError(t, err, "ignored file stays on disk")
}

func TestControllerClearRequiresTree(t *testing.T) {
	c, err := NewController(Options{Path: t.TempDir()})
	require.NoError(t, err)

	_, err = c.Clear(0, clearing.NewOSFS(), quietInput{}, &nopHooks{})
	assert.ErrorIs(t, err, ErrNoTree)
}

func TestControllerClearDeclined(t *testing.T) {
	root := makeTree(t)
	c, err := NewController(Options{Path: root, Workers: 1})
	require.NoError(t, err)
	tree := scan(t, c)

	// quietInput interrupts the confirm dialog
	cache := child(tree, tree.Root(), "cache")
	ev, err := c.Clear(cache, clearing.NewOSFS(), quietInput{}, &nopHooks{})
	require.NoError(t, err)
	assert.True(t, ev.Result.Cancelled)
	assert.Zero(t, ev.Freed)

	_, err = os.Stat(filepath.Join(root, "cache", "a.bin"))
	assert.NoError(t, err)

	_, err = c.Clear(child(tree, tree.Root(), "keep"), clearing.NewOSFS(), quietInput{}, &nopHooks{})
	assert.NoError(t, err)

	_, err = c.Clear(tree.FirstChild(child(tree, tree.Root(), "keep")), clearing.NewOSFS(), quietInput{}, &nopHooks{})
	assert.ErrorIs(t, err, clearing.ErrNotDirectory)
	assert.False(t, c.State().Clearing)
}

func TestScanPhaseString(t *testing.T) {
	assert.Equal(t, "Scanning files", PhaseScanning.String())
	assert.Equal(t, "", PhaseIdle.String())
}
