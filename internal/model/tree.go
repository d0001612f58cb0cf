package model

import (
	"fmt"
	"path/filepath"
	"sort"
)

// inodeKey identifies an inode across the whole scan
type inodeKey struct {
	dev uint64
	ino uint64
}

// Tree is an arena of nodes linked by index.
//
// A node is owned by exactly one parent through the parent's child list.
// Slots of removed nodes are never reused, so a stale NodeID stays
// detectably invalid (see Valid) instead of aliasing a newer node.
type Tree struct {
	nodes  []Node
	tails  []NodeID // last child per slot, for O(1) append
	root   NodeID
	pinned NodeID
	live   int

	// Hardlink side table: every live node sharing (dev, ino), in insertion
	// order. The first entry is the representative used for size dedup.
	links map[inodeKey][]NodeID
}

// NewTree creates a tree holding only a root node. The root name is the
// absolute path of the scanned directory.
func NewTree(rootName string, flags Flags) *Tree {
	t := &Tree{
		pinned: None,
		links:  make(map[inodeKey][]NodeID),
	}
	t.root = t.alloc(Node{Name: rootName, Flags: flags})
	return t
}

func (t *Tree) alloc(n Node) NodeID {
	n.parent, n.sub, n.next, n.prev = None, None, None, None
	n.live = true
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, n)
	t.tails = append(t.tails, None)
	t.live++
	return id
}

// Root returns the root node id
func (t *Tree) Root() NodeID {
	return t.root
}

// Len returns the number of live nodes, root included
func (t *Tree) Len() int {
	return t.live
}

// Valid reports whether id refers to a live node
func (t *Tree) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes) && t.nodes[id].live
}

func (t *Tree) mustLive(id NodeID) *Node {
	if !t.Valid(id) {
		panic(fmt.Sprintf("model: invalid node %d", id))
	}
	return &t.nodes[id]
}

// Node returns the node stored at id. The pointer stays valid until the
// next Add, which may grow the arena.
func (t *Tree) Node(id NodeID) *Node {
	return t.mustLive(id)
}

// Parent returns the parent of id, or None for the root
func (t *Tree) Parent(id NodeID) NodeID {
	return t.mustLive(id).parent
}

// FirstChild returns the first child of id, or None
func (t *Tree) FirstChild(id NodeID) NodeID {
	return t.mustLive(id).sub
}

// Next returns the next sibling of id, or None.
//
// Callers that may remove the current node must read Next before doing
// so: a removed node no longer has siblings.
func (t *Tree) Next(id NodeID) NodeID {
	return t.mustLive(id).next
}

// Prev returns the previous sibling of id, or None
func (t *Tree) Prev(id NodeID) NodeID {
	return t.mustLive(id).prev
}

// Children returns a snapshot of the child list of id
func (t *Tree) Children(id NodeID) []NodeID {
	var ids []NodeID
	for c := t.FirstChild(id); c != None; c = t.nodes[c].next {
		ids = append(ids, c)
	}
	return ids
}

// ChildCount returns the number of direct children of id
func (t *Tree) ChildCount(id NodeID) int {
	n := 0
	for c := t.FirstChild(id); c != None; c = t.nodes[c].next {
		n++
	}
	return n
}

// Add appends n to the child list of parent and returns its id
func (t *Tree) Add(parent NodeID, n Node) NodeID {
	if !t.mustLive(parent).IsDir() {
		panic(fmt.Sprintf("model: parent %d is not a directory", parent))
	}
	id := t.alloc(n)
	t.nodes[id].parent = parent

	if tail := t.tails[parent]; tail != None {
		t.nodes[tail].next = id
		t.nodes[id].prev = tail
	} else {
		t.nodes[parent].sub = id
	}
	t.tails[parent] = id

	if n.Flags&FlagHardlink != 0 {
		key := inodeKey{dev: n.Dev, ino: n.Ino}
		t.links[key] = append(t.links[key], id)
	}
	return id
}

// Pin designates id as the root of a clear operation. A pinned node
// cannot be removed. Only one node is pinned at a time.
func (t *Tree) Pin(id NodeID) {
	t.mustLive(id)
	t.pinned = id
}

// Unpin releases the pinned node, if any
func (t *Tree) Unpin() {
	t.pinned = None
}

// Pinned returns the pinned node or None
func (t *Tree) Pinned() NodeID {
	return t.pinned
}

// Remove splices id out of its parent's child list and releases it.
//
// Removing a node that still has children, the tree root or the pinned
// node is a programming error and panics.
func (t *Tree) Remove(id NodeID) {
	n := t.mustLive(id)
	switch {
	case id == t.root:
		panic("model: cannot remove the tree root")
	case id == t.pinned:
		panic(fmt.Sprintf("model: cannot remove pinned node %q", n.Name))
	case n.sub != None:
		panic(fmt.Sprintf("model: cannot remove %q: node has children", n.Name))
	}

	parent := n.parent
	if n.prev != None {
		t.nodes[n.prev].next = n.next
	} else {
		t.nodes[parent].sub = n.next
	}
	if n.next != None {
		t.nodes[n.next].prev = n.prev
	} else {
		t.tails[parent] = n.prev
	}

	if n.Flags&FlagHardlink != 0 {
		t.dropAlias(id, inodeKey{dev: n.Dev, ino: n.Ino})
	}

	t.nodes[id] = Node{parent: None, sub: None, next: None, prev: None}
	t.tails[id] = None
	t.live--
}

func (t *Tree) dropAlias(id NodeID, key inodeKey) {
	ids := t.links[key]
	for i, other := range ids {
		if other == id {
			ids = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(t.links, key)
		return
	}
	t.links[key] = ids
}

// Hardlinks returns the live nodes sharing the inode of id, id included.
// Nodes that are not hardlink candidates only alias themselves.
func (t *Tree) Hardlinks(id NodeID) []NodeID {
	n := t.mustLive(id)
	if n.Flags&FlagHardlink == 0 {
		return []NodeID{id}
	}
	ids := t.links[inodeKey{dev: n.Dev, ino: n.Ino}]
	return append([]NodeID(nil), ids...)
}

// Representative returns the node that accounts for the inode of id
func (t *Tree) Representative(id NodeID) NodeID {
	n := t.mustLive(id)
	if n.Flags&FlagHardlink == 0 {
		return id
	}
	if ids := t.links[inodeKey{dev: n.Dev, ino: n.Ino}]; len(ids) > 0 {
		return ids[0]
	}
	return id
}

// Path returns the full filesystem path of id
func (t *Tree) Path(id NodeID) string {
	var names []string
	for cur := id; cur != None; cur = t.mustLive(cur).parent {
		names = append(names, t.nodes[cur].Name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return filepath.Join(names...)
}

// MarkSubErr flags every ancestor of id as having an error below it
func (t *Tree) MarkSubErr(id NodeID) {
	for cur := t.Parent(id); cur != None; cur = t.nodes[cur].parent {
		t.nodes[cur].Flags |= FlagSubErr
	}
}

// ComputeSizes calculates and caches sizes and item counts below id.
// Hardlinked inodes are counted once, at their representative.
// Call this once after building the tree and again after removals.
func (t *Tree) ComputeSizes(id NodeID) (size, asize int64, items int) {
	n := t.mustLive(id)
	if !n.IsDir() {
		if n.Flags&FlagHardlink != 0 && t.Representative(id) != id {
			return 0, 0, 1
		}
		return n.Size, n.ASize, 1
	}
	for c := n.sub; c != None; c = t.nodes[c].next {
		s, a, i := t.ComputeSizes(c)
		size += s
		asize += a
		items += i
	}
	n = &t.nodes[id]
	n.Size, n.ASize, n.Items = size, asize, items
	return size, asize, items + 1
}

// SortChildren reorders the child list of id. The sort is stable.
func (t *Tree) SortChildren(id NodeID, less func(a, b *Node) bool) {
	ids := t.Children(id)
	if len(ids) < 2 {
		return
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return less(&t.nodes[ids[i]], &t.nodes[ids[j]])
	})

	t.nodes[id].sub = ids[0]
	t.tails[id] = ids[len(ids)-1]
	for i, c := range ids {
		n := &t.nodes[c]
		n.prev, n.next = None, None
		if i > 0 {
			n.prev = ids[i-1]
		}
		if i < len(ids)-1 {
			n.next = ids[i+1]
		}
	}
}

// SortBySize sorts the children of id by total size descending, then by name ascending
func (t *Tree) SortBySize(id NodeID) {
	t.SortChildren(id, func(a, b *Node) bool {
		if a.Size != b.Size {
			return a.Size > b.Size
		}
		return a.Name < b.Name
	})
}
