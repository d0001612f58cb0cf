//go:build !windows

package scanner

import (
	"io/fs"
	"syscall"
)

// fileStat holds the platform fields the tree needs
type fileStat struct {
	dev   uint64
	ino   uint64
	nlink uint64
	asize int64
}

// statOf extracts device, inode, link count and allocated size
func statOf(info fs.FileInfo) fileStat {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileStat{nlink: 1, asize: info.Size()}
	}
	// Blocks is in 512-byte units, which handles sparse files
	return fileStat{
		dev:   uint64(stat.Dev),
		ino:   uint64(stat.Ino),
		nlink: uint64(stat.Nlink),
		asize: int64(stat.Blocks) * 512,
	}
}
