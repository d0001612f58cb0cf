//go:build !darwin && !windows

package tui

import (
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// revealPath opens the directory holding path; xdg-open cannot select
func revealPath(path string) error {
	return exec.Command("xdg-open", filepath.Dir(path)).Start()
}

// previewPath opens the file with xdg-open
func previewPath(path string) error {
	return exec.Command("xdg-open", path).Start()
}

// creationTime is unknown here: Stat_t carries no birth time
func creationTime(os.FileInfo) time.Time {
	return time.Time{}
}
