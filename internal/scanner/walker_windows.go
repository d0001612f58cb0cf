//go:build windows

package scanner

import (
	"io/fs"
)

// fileStat holds the platform fields the tree needs
type fileStat struct {
	dev   uint64
	ino   uint64
	nlink uint64
	asize int64
}

// statOf returns the logical size as the allocated size. Windows drives
// are separate roots, so every entry shares device zero and hardlinks
// are not detected.
func statOf(info fs.FileInfo) fileStat {
	return fileStat{nlink: 1, asize: info.Size()}
}
