package core

import (
	"time"

	"github.com/lumipallolabs/diskprune/internal/model"
)

// ScanPhase represents the current phase of scanning
type ScanPhase int

const (
	PhaseIdle ScanPhase = iota
	PhaseScanning
	PhaseComplete
)

// String returns a human-readable phase name
func (p ScanPhase) String() string {
	switch p {
	case PhaseScanning:
		return "Scanning files"
	case PhaseComplete:
		return "Complete"
	default:
		return ""
	}
}

// ScanState holds the current scan state
type ScanState struct {
	Phase        ScanPhase
	StartTime    time.Time
	FilesScanned int64
	DirsScanned  int64
	BytesFound   int64
	Errors       int64
	CurrentPath  string
}

// IsScanning returns true if a scan is in progress (including the brief "Complete" display)
func (s ScanState) IsScanning() bool {
	return s.Phase == PhaseScanning || s.Phase == PhaseComplete
}

// Elapsed returns time since scan started
func (s ScanState) Elapsed() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	return time.Since(s.StartTime).Truncate(time.Second)
}

// FreedState tracks space recovered by clear operations
type FreedState struct {
	Session  int64 // Bytes freed this session
	Lifetime int64 // Bytes freed all time
}

// AppState holds the complete application state (read-only view)
type AppState struct {
	Path     string // Directory being browsed
	Scan     ScanState
	Freed    FreedState
	Volume   model.Volume
	Clearing bool
}
