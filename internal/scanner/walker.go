package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/sirupsen/logrus"

	"github.com/lumipallolabs/diskprune/internal/logging"
	"github.com/lumipallolabs/diskprune/internal/model"
)

// progressInterval is how often progress snapshots are published
const progressInterval = 100 * time.Millisecond

// Walker implements parallel filesystem scanning. A Walker runs a single
// scan: its progress channel is closed when Scan returns.
type Walker struct {
	workers    int
	opts       Options
	progressCh chan Progress
	progress   Progress
	mu         sync.Mutex // guards progress.CurrentPath
}

// NewWalker creates a new parallel filesystem walker
func NewWalker(workers int, opts Options) *Walker {
	if workers < 1 {
		workers = 8
	}
	return &Walker{
		workers:    workers,
		opts:       opts,
		progressCh: make(chan Progress, 100),
	}
}

// Progress returns the progress channel
func (w *Walker) Progress() <-chan Progress {
	return w.progressCh
}

// nodeEntry is a temporary structure for building the tree
type nodeEntry struct {
	path  string
	name  string
	size  int64
	asize int64
	dev   uint64
	ino   uint64
	flags model.Flags
}

// Scan scans the filesystem starting at root using fastwalk
func (w *Walker) Scan(ctx context.Context, root string) (*model.Tree, error) {
	defer close(w.progressCh)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Lstat(absRoot)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", absRoot)
	}
	rootStat := statOf(info)
	exclude := newExcluder(absRoot, w.opts.Exclude)
	log := logging.Scanner.WithField("root", absRoot)
	log.Debug("scan started")

	// Use channels for lock-free entry collection
	entryChan := make(chan nodeEntry, 50000)
	var entries []nodeEntry
	var entriesWg sync.WaitGroup

	entriesWg.Add(1)
	go func() {
		defer entriesWg.Done()
		for e := range entryChan {
			entries = append(entries, e)
		}
	}()

	stopProgress := w.publishProgress()

	conf := &fastwalk.Config{
		Follow:     false,
		NumWorkers: w.workers,
	}

	walkErr := fastwalk.Walk(conf, absRoot, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			// Reported for entries that could not be read, including a
			// second call for directories whose listing failed.
			atomic.AddInt64(&w.progress.Errors, 1)
			log.WithError(err).WithField("path", path).Debug("read failed")
			entryChan <- nodeEntry{path: path, name: filepath.Base(path), flags: model.FlagErr}
			return nil
		}

		if path == absRoot {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			atomic.AddInt64(&w.progress.Errors, 1)
			entryChan <- nodeEntry{path: path, name: d.Name(), flags: model.FlagErr}
			return nil
		}
		st := statOf(info)
		e := nodeEntry{
			path: path,
			name: d.Name(),
			dev:  st.dev,
			ino:  st.ino,
		}

		if d.IsDir() {
			e.flags = model.FlagDir
			atomic.AddInt64(&w.progress.DirsScanned, 1)
			w.setCurrent(path)

			switch {
			case exclude.excluded(path, true):
				e.flags |= model.FlagExcluded
			case w.opts.OneFileSystem && st.dev != rootStat.dev:
				e.flags |= model.FlagOtherFS
			}
			entryChan <- e
			if e.flags&(model.FlagExcluded|model.FlagOtherFS) != 0 {
				return fs.SkipDir
			}
			return nil
		}

		if exclude.excluded(path, false) {
			e.flags = model.FlagExcluded
			entryChan <- e
			return nil
		}

		if info.Mode().IsRegular() {
			e.flags = model.FlagFile
		}
		if st.nlink > 1 {
			e.flags |= model.FlagHardlink
		}
		e.size = info.Size()
		e.asize = st.asize
		atomic.AddInt64(&w.progress.FilesScanned, 1)
		atomic.AddInt64(&w.progress.BytesFound, e.asize)

		entryChan <- e
		return nil
	})

	close(entryChan)
	entriesWg.Wait()
	stopProgress()

	if walkErr != nil {
		if errors.Is(walkErr, ctx.Err()) {
			log.Debug("scan cancelled")
		} else {
			log.WithError(walkErr).Warn("scan failed")
		}
		return nil, walkErr
	}

	tree := w.buildTree(absRoot, entries)
	tree.ComputeSizes(tree.Root())

	log.WithFields(logrus.Fields{
		"files":  atomic.LoadInt64(&w.progress.FilesScanned),
		"dirs":   atomic.LoadInt64(&w.progress.DirsScanned),
		"errors": atomic.LoadInt64(&w.progress.Errors),
	}).Info("scan finished")
	return tree, nil
}

// buildTree constructs the tree from flat entries. Sorting by full path
// puts every parent before its children and every child list in name
// order.
func (w *Walker) buildTree(rootPath string, entries []nodeEntry) *model.Tree {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].path != entries[j].path {
			return entries[i].path < entries[j].path
		}
		return entries[i].flags&model.FlagErr < entries[j].flags&model.FlagErr
	})

	tree := model.NewTree(rootPath, model.FlagDir)
	ids := make(map[string]model.NodeID, len(entries)+1)
	ids[rootPath] = tree.Root()

	var failed []model.NodeID
	for i := range entries {
		e := &entries[i]

		// a directory that was listed and then failed to read shows up twice
		if id, ok := ids[e.path]; ok {
			if e.flags&model.FlagErr != 0 {
				tree.Node(id).Flags |= model.FlagErr
				failed = append(failed, id)
			}
			continue
		}

		parent, ok := ids[filepath.Dir(e.path)]
		if !ok || !tree.Node(parent).IsDir() {
			logging.Scanner.WithField("path", e.path).Debug("orphan entry dropped")
			continue
		}
		id := tree.Add(parent, model.Node{
			Name:  e.name,
			Size:  e.size,
			ASize: e.asize,
			Dev:   e.dev,
			Ino:   e.ino,
			Flags: e.flags,
		})
		ids[e.path] = id
		if e.flags&model.FlagErr != 0 {
			failed = append(failed, id)
		}
	}

	for _, id := range failed {
		tree.MarkSubErr(id)
	}
	return tree
}

func (w *Walker) setCurrent(path string) {
	w.mu.Lock()
	w.progress.CurrentPath = path
	w.mu.Unlock()
}

func (w *Walker) snapshot() Progress {
	w.mu.Lock()
	current := w.progress.CurrentPath
	w.mu.Unlock()
	return Progress{
		FilesScanned: atomic.LoadInt64(&w.progress.FilesScanned),
		DirsScanned:  atomic.LoadInt64(&w.progress.DirsScanned),
		BytesFound:   atomic.LoadInt64(&w.progress.BytesFound),
		Errors:       atomic.LoadInt64(&w.progress.Errors),
		CurrentPath:  current,
	}
}

// publishProgress sends snapshots until the returned stop function is
// called. Snapshots are dropped when nobody keeps up with the channel.
func (w *Walker) publishProgress() (stop func()) {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				w.send(w.snapshot())
				return
			case <-ticker.C:
				w.send(w.snapshot())
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}

func (w *Walker) send(p Progress) {
	select {
	case w.progressCh <- p:
	default:
	}
}

// Ensure Walker implements Scanner
var _ Scanner = (*Walker)(nil)
