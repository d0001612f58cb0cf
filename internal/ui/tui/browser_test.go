package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumipallolabs/diskprune/internal/model"
)

// browseTree builds /data{small, big/{inner}, empty/}
func browseTree(t *testing.T) (*model.Tree, map[string]model.NodeID) {
	t.Helper()
	tr := model.NewTree("/data", model.FlagDir)
	ids := map[string]model.NodeID{}
	ids["small"] = tr.Add(tr.Root(), model.Node{Name: "small", Size: 10, ASize: 4096, Flags: model.FlagFile})
	ids["big"] = tr.Add(tr.Root(), model.Node{Name: "big", Flags: model.FlagDir})
	ids["inner"] = tr.Add(ids["big"], model.Node{Name: "inner", Size: 100000, ASize: 102400, Flags: model.FlagFile})
	ids["empty"] = tr.Add(tr.Root(), model.Node{Name: "empty", Flags: model.FlagDir})
	tr.ComputeSizes(tr.Root())
	return tr, ids
}

func TestBrowserListsLargestFirst(t *testing.T) {
	tr, ids := browseTree(t)
	b := NewBrowser()
	b.SetSize(80, 20)
	b.SetTree(tr)

	assert.Equal(t, tr.Root(), b.Dir())
	assert.Equal(t, ids["big"], b.Selected())

	b.MoveDown()
	assert.Equal(t, ids["small"], b.Selected())
	b.MoveDown()
	assert.Equal(t, ids["empty"], b.Selected())
	b.MoveDown()
	assert.Equal(t, ids["empty"], b.Selected(), "cursor stops at the last entry")
}

func TestBrowserEnterAndBack(t *testing.T) {
	tr, ids := browseTree(t)
	b := NewBrowser()
	b.SetSize(80, 20)
	b.SetTree(tr)

	b.Enter()
	assert.Equal(t, ids["big"], b.Dir())
	assert.Equal(t, ids["inner"], b.Selected())

	// files cannot be entered
	b.Enter()
	assert.Equal(t, ids["big"], b.Dir())

	b.Back()
	assert.Equal(t, tr.Root(), b.Dir())
	assert.Equal(t, ids["big"], b.Selected(), "the directory just left stays highlighted")

	b.Back()
	assert.Equal(t, tr.Root(), b.Dir(), "root has no parent")
}

func TestBrowserRefreshAfterRemoval(t *testing.T) {
	tr, ids := browseTree(t)
	b := NewBrowser()
	b.SetSize(80, 20)
	b.SetTree(tr)
	b.GoToBottom()
	require.Equal(t, ids["empty"], b.Selected())

	tr.Remove(ids["empty"])
	tr.ComputeSizes(tr.Root())
	b.Refresh()

	assert.Equal(t, ids["small"], b.Selected(), "cursor is clamped to the shorter list")
}

func TestBrowserOpenHighlights(t *testing.T) {
	tr, ids := browseTree(t)
	b := NewBrowser()
	b.SetSize(80, 20)
	b.SetTree(tr)

	b.Open(tr.Root(), ids["empty"])
	assert.Equal(t, ids["empty"], b.Selected())

	// files are not listable
	b.Open(ids["small"], model.None)
	assert.Equal(t, tr.Root(), b.Dir())
}

func TestBrowserScrollsToCursor(t *testing.T) {
	tr := model.NewTree("/many", model.FlagDir)
	for i := 0; i < 50; i++ {
		tr.Add(tr.Root(), model.Node{Name: strings.Repeat("f", i+1), ASize: int64(1000 - i), Flags: model.FlagFile})
	}
	b := NewBrowser()
	b.SetSize(80, 10)
	b.SetTree(tr)

	b.GoToBottom()
	assert.Equal(t, 49, b.cursor)
	assert.Equal(t, 49-b.rows()+1, b.offset)

	b.GoToTop()
	assert.Equal(t, 0, b.offset)

	b.PageDown()
	assert.Equal(t, b.rows()-1, b.cursor)
}

func TestBrowserView(t *testing.T) {
	tr, ids := browseTree(t)
	tr.Node(ids["small"]).Flags |= model.FlagErr
	b := NewBrowser()
	b.SetSize(80, 20)
	b.SetTree(tr)

	out := plain(b.View())
	assert.Contains(t, out, "--- /data")
	assert.Contains(t, out, "big/")
	assert.Contains(t, out, "! small")
	assert.Contains(t, out, "e empty/")
	assert.Contains(t, out, "[██████████]")
}

func TestFlagChar(t *testing.T) {
	cases := []struct {
		flags model.Flags
		empty bool
		want  string
	}{
		{model.FlagFile, false, " "},
		{model.FlagFile | model.FlagErr, false, "!"},
		{model.FlagDir | model.FlagSubErr, false, "."},
		{model.FlagDir | model.FlagOtherFS, true, ">"},
		{model.FlagDir | model.FlagExcluded, true, "<"},
		{model.FlagFile | model.FlagHardlink, false, "H"},
		{0, false, "@"},
		{model.FlagDir, true, "e"},
		{model.FlagDir, false, " "},
	}
	for _, tc := range cases {
		n := &model.Node{Flags: tc.flags}
		assert.Equal(t, tc.want, flagChar(n, tc.empty), "flags %08b", tc.flags)
	}
}
