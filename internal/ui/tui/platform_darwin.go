//go:build darwin

package tui

import (
	"os"
	"os/exec"
	"syscall"
	"time"
)

// revealPath shows path selected in Finder
func revealPath(path string) error {
	return exec.Command("open", "-R", path).Start()
}

// previewPath opens the file in Quick Look
func previewPath(path string) error {
	return exec.Command("qlmanage", "-p", path).Start()
}

// creationTime returns the birth time of the entry
func creationTime(info os.FileInfo) time.Time {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec)
	}
	return time.Time{}
}
