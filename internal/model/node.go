package model

// NodeID addresses a node slot in a Tree
type NodeID int32

// None is the zero link: no parent, no child, no sibling
const None NodeID = -1

// Flags describes what kind of entry a node is and what happened while scanning it
type Flags uint8

const (
	FlagDir      Flags = 1 << iota // directory
	FlagFile                       // regular file
	FlagErr                        // error while reading this entry
	FlagOtherFS                    // not descended: other filesystem
	FlagExcluded                   // not descended: matched an exclude pattern
	FlagSubErr                     // error somewhere below this directory
	FlagHardlink                   // file with more than one link
	FlagSelected                   // marked in the browser
)

// Node represents a file or directory in the scanned tree
type Node struct {
	Name  string
	Size  int64 // logical size (cached total for dirs, see ComputeSizes)
	ASize int64 // allocated size on disk
	Ino   uint64
	Dev   uint64
	Items int // entries below this node (cached, see ComputeSizes)
	Flags Flags

	parent NodeID
	sub    NodeID
	next   NodeID
	prev   NodeID
	live   bool
}

// IsDir reports whether the node is a directory
func (n *Node) IsDir() bool {
	return n.Flags&FlagDir != 0
}

// Has reports whether all of f are set
func (n *Node) Has(f Flags) bool {
	return n.Flags&f == f
}

// TotalSize returns the cached total size (call ComputeSizes first)
func (n *Node) TotalSize() int64 {
	return n.Size
}
