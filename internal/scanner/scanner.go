package scanner

import (
	"context"

	"github.com/lumipallolabs/diskprune/internal/model"
)

// Progress reports scanning progress
type Progress struct {
	FilesScanned int64
	DirsScanned  int64
	BytesFound   int64
	Errors       int64
	CurrentPath  string
}

// Options control what a scan descends into
type Options struct {
	// OneFileSystem keeps the scan on the device of the root. Mount points
	// are listed but not descended.
	OneFileSystem bool
	// Exclude holds gitignore-style patterns, matched against paths
	// relative to the scan root. Matches are listed but not descended.
	Exclude []string
}

// Scanner defines the interface for filesystem scanning
type Scanner interface {
	// Scan scans the given root path and returns the tree of entries
	// below it. Sizes are computed and children sorted by name.
	Scan(ctx context.Context, root string) (*model.Tree, error)

	// Progress returns a channel that receives progress updates. It is
	// closed when Scan returns.
	Progress() <-chan Progress
}
