package core

import (
	"github.com/lumipallolabs/diskprune/internal/clearing"
	"github.com/lumipallolabs/diskprune/internal/model"
)

// Event represents a state change from the controller
type Event interface {
	isEvent()
}

// ScanStartedEvent is emitted when a scan begins
type ScanStartedEvent struct {
	Path string
}

func (ScanStartedEvent) isEvent() {}

// ScanProgressEvent is emitted during scanning
type ScanProgressEvent struct {
	FilesScanned int64
	BytesFound   int64
	CurrentPath  string
}

func (ScanProgressEvent) isEvent() {}

// ScanCompletedEvent is emitted when scan finishes
type ScanCompletedEvent struct {
	Tree *model.Tree
	Err  error
}

func (ScanCompletedEvent) isEvent() {}

// ClearCompletedEvent is emitted when a clear operation hands control back
type ClearCompletedEvent struct {
	Result       clearing.Result
	Freed        int64 // Bytes freed by this operation
	SessionFreed int64
	TotalFreed   int64
}

func (ClearCompletedEvent) isEvent() {}
