//go:build windows

package tui

import (
	"os"
	"os/exec"
	"syscall"
	"time"
)

// revealPath opens Explorer with path selected
func revealPath(path string) error {
	// explorer /select,path - opens folder with item selected
	return exec.Command("explorer", "/select,"+path).Start()
}

// previewPath opens the file with the default viewer
func previewPath(path string) error {
	return exec.Command("cmd", "/c", "start", "", path).Start()
}

// creationTime returns the creation time of the entry
func creationTime(info os.FileInfo) time.Time {
	if attr, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		return time.Unix(0, attr.CreationTime.Nanoseconds())
	}
	return time.Time{}
}
