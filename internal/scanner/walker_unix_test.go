//go:build !windows

package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumipallolabs/diskprune/internal/model"
)

func TestWalkerHardlinksCountedOnce(t *testing.T) {
	tmp := t.TempDir()
	orig := filepath.Join(tmp, "a", "data")
	writeFile(t, orig, "0123456789")
	require.NoError(t, os.MkdirAll(filepath.Join(tmp, "b"), 0755))
	require.NoError(t, os.Link(orig, filepath.Join(tmp, "b", "data")))

	tree, err := NewWalker(2, Options{}).Scan(context.Background(), tmp)
	require.NoError(t, err)

	a := findChild(tree, tree.Root(), "a")
	b := findChild(tree, tree.Root(), "b")
	first := tree.FirstChild(a)
	second := tree.FirstChild(b)
	assert.True(t, tree.Node(first).Has(model.FlagHardlink))
	assert.True(t, tree.Node(second).Has(model.FlagHardlink))
	assert.ElementsMatch(t, []model.NodeID{first, second}, tree.Hardlinks(first))

	assert.Equal(t, int64(10), tree.Node(tree.Root()).Size, "shared inode counted once")
}

func TestWalkerSymlinkNotFollowed(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "target", "big"), "0123456789")
	require.NoError(t, os.Symlink(filepath.Join(tmp, "target"), filepath.Join(tmp, "link")))

	tree, err := NewWalker(2, Options{}).Scan(context.Background(), tmp)
	require.NoError(t, err)

	link := findChild(tree, tree.Root(), "link")
	require.NotEqual(t, model.None, link)
	assert.False(t, tree.Node(link).IsDir())
	assert.False(t, tree.Node(link).Has(model.FlagFile))
	assert.Equal(t, model.None, tree.FirstChild(link))
}
