package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lumipallolabs/diskprune/internal/clearing"
	"github.com/lumipallolabs/diskprune/internal/logging"
	"github.com/lumipallolabs/diskprune/internal/model"
	"github.com/lumipallolabs/diskprune/internal/scanner"
	"github.com/lumipallolabs/diskprune/internal/stats"
)

var (
	ErrBusy   = errors.New("operation in progress")
	ErrNoTree = errors.New("nothing scanned yet")
)

// Options configure a Controller
type Options struct {
	Path    string
	Workers int
	Scan    scanner.Options
	Stats   *stats.Manager  // nil disables persistent stats
	Prefs   *clearing.Prefs // sticky clear preferences, shared by every clear
}

// Controller manages the core application logic without UI dependencies.
//
// The tree belongs to whichever goroutine is running a clear. While
// State().Clearing is true nothing else may read or modify it.
type Controller struct {
	mu sync.RWMutex

	// State
	path     string
	tree     *model.Tree
	scan     ScanState
	freed    FreedState
	volume   model.Volume
	clearing bool

	// Internal services
	opts         Options
	prefs        *clearing.Prefs
	statsManager *stats.Manager
	newScanner   func() scanner.Scanner
}

// NewController creates a new application controller
func NewController(opts Options) (*Controller, error) {
	path, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", opts.Path, err)
	}
	prefs := opts.Prefs
	if prefs == nil {
		prefs = &clearing.Prefs{}
	}

	c := &Controller{
		path:         path,
		opts:         opts,
		prefs:        prefs,
		statsManager: opts.Stats,
		volume:       model.VolumeFor(path),
	}
	c.newScanner = func() scanner.Scanner {
		return scanner.NewWalker(c.opts.Workers, c.opts.Scan)
	}
	if c.statsManager != nil {
		c.freed.Lifetime = c.statsManager.FreedLifetime()
		c.statsManager.SetLastPath(path)
	}
	return c, nil
}

// State returns a read-only snapshot of the current state
func (c *Controller) State() AppState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return AppState{
		Path:     c.path,
		Scan:     c.scan,
		Freed:    c.freed,
		Volume:   c.volume,
		Clearing: c.clearing,
	}
}

// Path returns the scanned directory
func (c *Controller) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// Tree returns the scanned tree, or nil before the first scan completes
func (c *Controller) Tree() *model.Tree {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree
}

// Prefs returns the sticky clear preferences of this session
func (c *Controller) Prefs() *clearing.Prefs {
	return c.prefs
}

// ScanState returns the current scan state
func (c *Controller) ScanState() ScanState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scan
}

// FreedState returns the current freed space state
func (c *Controller) FreedState() FreedState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.freed
}

// RefreshVolume re-reads the disk space of the scanned filesystem
func (c *Controller) RefreshVolume() model.Volume {
	c.mu.RLock()
	path := c.path
	c.mu.RUnlock()

	v := model.VolumeFor(path)

	c.mu.Lock()
	c.volume = v
	c.mu.Unlock()
	return v
}

// StartScan begins scanning the configured path
func (c *Controller) StartScan(ctx context.Context) (<-chan Event, error) {
	c.mu.Lock()
	if c.clearing || c.scan.Phase == PhaseScanning {
		c.mu.Unlock()
		return nil, ErrBusy
	}

	c.scan = ScanState{
		Phase:     PhaseScanning,
		StartTime: time.Now(),
	}
	path := c.path
	sc := c.newScanner()
	c.mu.Unlock()

	eventCh := make(chan Event, 100)
	go c.runScan(ctx, sc, path, eventCh)
	return eventCh, nil
}

// runScan executes the scan in a goroutine
func (c *Controller) runScan(ctx context.Context, sc scanner.Scanner, path string, eventCh chan Event) {
	defer close(eventCh)

	log := logging.Debug.WithField("path", path)
	log.Debug("starting scan")
	eventCh <- ScanStartedEvent{Path: path}

	// Forward progress until the scanner closes its channel
	var progressWg sync.WaitGroup
	progressWg.Add(1)
	go func() {
		defer progressWg.Done()
		for p := range sc.Progress() {
			c.mu.Lock()
			c.scan.FilesScanned = p.FilesScanned
			c.scan.DirsScanned = p.DirsScanned
			c.scan.BytesFound = p.BytesFound
			c.scan.Errors = p.Errors
			c.scan.CurrentPath = p.CurrentPath
			c.mu.Unlock()

			eventCh <- ScanProgressEvent{
				FilesScanned: p.FilesScanned,
				BytesFound:   p.BytesFound,
				CurrentPath:  p.CurrentPath,
			}
		}
	}()

	tree, err := sc.Scan(ctx, path)
	progressWg.Wait()

	if err != nil {
		log.WithError(err).Warn("scan failed")
		c.mu.Lock()
		c.scan.Phase = PhaseIdle
		c.mu.Unlock()
		eventCh <- ScanCompletedEvent{Err: err}
		return
	}

	c.mu.Lock()
	c.scan.Phase = PhaseComplete
	c.tree = tree
	c.mu.Unlock()
	c.RefreshVolume()

	eventCh <- ScanCompletedEvent{Tree: tree}
	log.WithField("entries", tree.Len()).Debug("scan complete")
}

// FinalizeScan marks the scan as fully complete (after UI delay)
func (c *Controller) FinalizeScan() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scan.Phase = PhaseIdle
}

// Clear runs one clear operation of node on the calling goroutine and
// blocks until control returns to the browser. The tree must not be
// touched by anyone else until Clear returns.
//
// Sizes are recomputed afterwards, and whatever the clear root shrank by
// is accounted as freed.
func (c *Controller) Clear(node model.NodeID, fs clearing.FS, events clearing.EventSource, hooks clearing.Hooks) (ClearCompletedEvent, error) {
	c.mu.Lock()
	if c.clearing || c.scan.Phase == PhaseScanning {
		c.mu.Unlock()
		return ClearCompletedEvent{}, ErrBusy
	}
	tree := c.tree
	if tree == nil {
		c.mu.Unlock()
		return ClearCompletedEvent{}, ErrNoTree
	}
	if !tree.Valid(node) {
		c.mu.Unlock()
		return ClearCompletedEvent{}, fmt.Errorf("clear: invalid node %d", node)
	}
	c.clearing = true
	c.mu.Unlock()

	log := logging.Clear.WithField("op", uuid.NewString())
	log.WithField("path", tree.Path(node)).Debug("clear requested")

	eng := clearing.New(tree, fs, events, hooks, c.prefs)
	if err := eng.Begin(node); err != nil {
		c.mu.Lock()
		c.clearing = false
		c.mu.Unlock()
		return ClearCompletedEvent{}, err
	}
	res := eng.Run()

	tree.ComputeSizes(tree.Root())
	freed := res.Freed
	vol := model.VolumeFor(c.Path())

	c.mu.Lock()
	c.clearing = false
	c.volume = vol
	c.freed.Session += freed
	c.freed.Lifetime += freed
	ev := ClearCompletedEvent{
		Result:       res,
		Freed:        freed,
		SessionFreed: c.freed.Session,
		TotalFreed:   c.freed.Lifetime,
	}
	c.mu.Unlock()

	if c.statsManager != nil && (res.Removed > 0 || res.Errors > 0) {
		c.statsManager.RecordClear(freed)
	}

	log.WithFields(logrus.Fields{
		"freed":     freed,
		"session":   ev.SessionFreed,
		"cancelled": res.Cancelled,
	}).Info("clear accounted")
	return ev, nil
}

// Stop cleans up resources
func (c *Controller) Stop() {
	if c.statsManager != nil {
		if err := c.statsManager.Close(); err != nil {
			logging.Debug.WithError(err).Warn("saving stats")
		}
	}
}
