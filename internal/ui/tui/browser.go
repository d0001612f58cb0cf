package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lumipallolabs/diskprune/internal/model"
)

const browserSizeBarWidth = 10 // Width of size proportion bar [██████████]

// Browser lists one directory of the tree at a time, largest first
type Browser struct {
	tree   *model.Tree
	dir    model.NodeID
	items  []model.NodeID
	cursor int
	offset int // scroll offset
	width  int
	height int
}

// NewBrowser creates an empty browser
func NewBrowser() Browser {
	return Browser{dir: model.None}
}

// SetTree shows the root of tree
func (b *Browser) SetTree(tree *model.Tree) {
	b.tree = tree
	b.dir = model.None
	if tree != nil {
		b.dir = tree.Root()
	}
	b.cursor, b.offset = 0, 0
	b.Refresh()
}

// Tree returns the browsed tree
func (b Browser) Tree() *model.Tree {
	return b.tree
}

// SetSize sets the panel dimensions
func (b *Browser) SetSize(w, h int) {
	b.width = w
	b.height = h
	b.ensureVisible()
}

// Dir returns the directory being listed
func (b Browser) Dir() model.NodeID {
	return b.dir
}

// Selected returns the highlighted entry or None
func (b Browser) Selected() model.NodeID {
	if b.cursor >= 0 && b.cursor < len(b.items) {
		return b.items[b.cursor]
	}
	return model.None
}

// Refresh re-reads the listed directory after the tree changed
func (b *Browser) Refresh() {
	b.items = nil
	if b.tree == nil {
		return
	}
	if !b.tree.Valid(b.dir) {
		b.dir = b.tree.Root()
	}
	b.tree.SortChildren(b.dir, byDiskUsage)
	b.items = b.tree.Children(b.dir)
	if b.cursor >= len(b.items) {
		b.cursor = len(b.items) - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}
	b.ensureVisible()
}

// Open lists dir and highlights sel when it is one of its entries
func (b *Browser) Open(dir, sel model.NodeID) {
	if b.tree == nil || !b.tree.Valid(dir) || !b.tree.Node(dir).IsDir() {
		return
	}
	b.dir = dir
	b.cursor, b.offset = 0, 0
	b.Refresh()
	b.SelectNode(sel)
}

// SelectNode moves the cursor to id if it is listed
func (b *Browser) SelectNode(id model.NodeID) {
	for i, item := range b.items {
		if item == id {
			b.cursor = i
			b.ensureVisible()
			return
		}
	}
}

// Enter opens the highlighted directory
func (b *Browser) Enter() {
	sel := b.Selected()
	if sel == model.None || !b.tree.Node(sel).IsDir() {
		return
	}
	b.Open(sel, model.None)
}

// Back lists the parent directory, keeping the current one highlighted
func (b *Browser) Back() {
	if b.tree == nil || !b.tree.Valid(b.dir) {
		return
	}
	parent := b.tree.Parent(b.dir)
	if parent == model.None {
		return
	}
	b.Open(parent, b.dir)
}

// MoveUp moves cursor up
func (b *Browser) MoveUp() {
	if b.cursor > 0 {
		b.cursor--
		b.ensureVisible()
	}
}

// MoveDown moves cursor down
func (b *Browser) MoveDown() {
	if b.cursor < len(b.items)-1 {
		b.cursor++
		b.ensureVisible()
	}
}

// PageUp moves cursor up by a page
func (b *Browser) PageUp() {
	b.cursor -= b.pageSize()
	if b.cursor < 0 {
		b.cursor = 0
	}
	b.ensureVisible()
}

// PageDown moves cursor down by a page
func (b *Browser) PageDown() {
	b.cursor += b.pageSize()
	if b.cursor >= len(b.items) {
		b.cursor = len(b.items) - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}
	b.ensureVisible()
}

// GoToTop moves to first item
func (b *Browser) GoToTop() {
	b.cursor = 0
	b.offset = 0
}

// GoToBottom moves to last item
func (b *Browser) GoToBottom() {
	b.cursor = len(b.items) - 1
	if b.cursor < 0 {
		b.cursor = 0
	}
	b.ensureVisible()
}

func (b Browser) pageSize() int {
	if n := b.rows(); n > 1 {
		return n - 1
	}
	return 1
}

// rows is the number of entry lines that fit: borders and the path line
// take three
func (b Browser) rows() int {
	if n := b.height - 3; n > 0 {
		return n
	}
	return 1
}

func (b *Browser) ensureVisible() {
	if b.cursor < b.offset {
		b.offset = b.cursor
	}
	if rows := b.rows(); b.cursor >= b.offset+rows {
		b.offset = b.cursor - rows + 1
	}
}

// byDiskUsage orders entries by allocated size, largest first, then by name
func byDiskUsage(a, b *model.Node) bool {
	if a.ASize != b.ASize {
		return a.ASize > b.ASize
	}
	return a.Name < b.Name
}

// flagChar returns the one-letter marker shown before a name
func flagChar(n *model.Node, empty bool) string {
	switch {
	case n.Has(model.FlagErr):
		return "!"
	case n.Has(model.FlagSubErr):
		return "."
	case n.Has(model.FlagOtherFS):
		return ">"
	case n.Has(model.FlagExcluded):
		return "<"
	case n.Has(model.FlagHardlink):
		return "H"
	case !n.IsDir() && !n.Has(model.FlagFile):
		return "@"
	case n.IsDir() && empty:
		return "e"
	}
	return " "
}

// sizeBar renders size relative to the largest entry
func sizeBar(size, largest int64) string {
	filled := 0
	if largest > 0 {
		filled = int(float64(size) / float64(largest) * browserSizeBarWidth)
	}
	if filled > browserSizeBarWidth {
		filled = browserSizeBarWidth
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat(" ", browserSizeBarWidth-filled) + "]"
}

// View renders the listing
func (b Browser) View() string {
	innerW := b.width - 4 // border and padding
	if innerW < 1 {
		innerW = 1
	}
	if b.tree == nil {
		return BrowserPanelStyle.Width(b.width - 2).Height(b.height - 2).Render("No data")
	}

	pathStyle := lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
	lines := []string{pathStyle.Render(cropMiddle("--- "+b.tree.Path(b.dir)+" ", innerW))}

	var largest int64
	for _, id := range b.items {
		if s := b.tree.Node(id).ASize; s > largest {
			largest = s
		}
	}

	if len(b.items) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(ColorMuted).Render("  (empty directory)"))
	}
	for i := b.offset; i < len(b.items) && len(lines) <= b.rows(); i++ {
		id := b.items[i]
		n := b.tree.Node(id)

		name := n.Name
		if n.IsDir() {
			name += "/"
		}
		flag := flagChar(n, n.IsDir() && b.tree.FirstChild(id) == model.None)
		line := fmt.Sprintf("%9s %s %s %s", FormatSize(n.ASize), sizeBar(n.ASize, largest), flag, name)

		var style lipgloss.Style
		switch {
		case i == b.cursor:
			style = BrowserItemSelected
		case n.IsDir():
			style = lipgloss.NewStyle().Foreground(ColorDir)
		default:
			style = lipgloss.NewStyle().Foreground(ColorFile)
		}
		lines = append(lines, style.Width(innerW).MaxWidth(innerW).Render(line))
	}

	return BrowserPanelStyle.Width(b.width - 2).Height(b.height - 2).Render(strings.Join(lines, "\n"))
}
