package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process keeps the stats file locked
var ErrLocked = errors.New("stats file is locked")

// Stats holds persistent statistics
type Stats struct {
	FreedLifetime int64  `json:"freed_lifetime"`
	Clears        int    `json:"clears"`
	LastPath      string `json:"last_path,omitempty"` // Last directory scanned
}

// Manager handles loading and saving stats. Several processes may share
// one file: each save adds this process's counts to what is on disk.
type Manager struct {
	path         string
	stats        Stats
	pending      Stats // counts not yet written
	lock         *flock.Flock
	mu           sync.RWMutex
	dirty        bool
	saveTimer    *time.Timer
	saveDuration time.Duration
}

// NewManager creates a stats manager for the file at path. An empty path
// selects DefaultPath.
func NewManager(path string) *Manager {
	if path == "" {
		path = DefaultPath()
	}
	return &Manager{
		path:         path,
		lock:         flock.New(path + ".lock"),
		saveDuration: 2 * time.Second, // Debounce saves
	}
}

// DefaultPath returns the default stats file path
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".diskprune-stats.json"
	}
	return filepath.Join(home, ".diskprune", "stats.json")
}

// Path returns the stats file path
func (m *Manager) Path() string {
	return m.path
}

// Load loads stats from disk
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := readStats(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			// No stats file yet, start fresh
			m.stats = Stats{}
			return nil
		}
		return err
	}
	m.stats = s
	return nil
}

func readStats(path string) (Stats, error) {
	var s Stats
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, err
		}
		return s, fmt.Errorf("read stats: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse stats %s: %w", path, err)
	}
	return s, nil
}

// Save saves stats to disk immediately
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.saveLocked()
}

// saveLocked saves stats without acquiring the lock (caller must hold lock)
func (m *Manager) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("create stats dir: %w", err)
	}
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.lock.Unlock()

	// Another process may have saved since we loaded
	merged, err := readStats(m.path)
	switch {
	case err == nil:
		merged.FreedLifetime += m.pending.FreedLifetime
		merged.Clears += m.pending.Clears
		merged.LastPath = m.stats.LastPath
	case os.IsNotExist(err):
		merged = Stats{
			FreedLifetime: m.pending.FreedLifetime,
			Clears:        m.pending.Clears,
			LastPath:      m.stats.LastPath,
		}
	default:
		merged = m.stats // unreadable file is replaced
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}

	// Write through a temp file so a crash never leaves half a file
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write stats: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("write stats: %w", err)
	}
	m.stats = merged
	m.pending = Stats{}
	m.dirty = false
	return nil
}

// acquire takes the inter-process lock, waiting briefly for other writers
func (m *Manager) acquire() error {
	return retry.Do(func() error {
		ok, err := m.lock.TryLock()
		if err != nil {
			return retry.Unrecoverable(fmt.Errorf("lock stats: %w", err))
		}
		if !ok {
			return ErrLocked
		}
		return nil
	},
		retry.Attempts(5),
		retry.Delay(50*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

// scheduleLocked marks the stats dirty and restarts the debounce timer
func (m *Manager) scheduleLocked() {
	m.dirty = true
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.saveTimer = time.AfterFunc(m.saveDuration, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.dirty {
			_ = m.saveLocked() // Ignore errors for background save
		}
	})
}

// Snapshot returns a copy of the current stats
func (m *Manager) Snapshot() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// FreedLifetime returns the lifetime freed bytes
func (m *Manager) FreedLifetime() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.FreedLifetime
}

// LastPath returns the last scanned directory
func (m *Manager) LastPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.LastPath
}

// SetLastPath records the scanned directory and schedules a save
func (m *Manager) SetLastPath(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stats.LastPath == path {
		return
	}
	m.stats.LastPath = path
	m.scheduleLocked()
}

// RecordClear counts a finished clear that freed bytes and schedules a save
func (m *Manager) RecordClear(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.Clears++
	m.pending.Clears++
	if bytes > 0 {
		m.stats.FreedLifetime += bytes
		m.pending.FreedLifetime += bytes
	}
	m.scheduleLocked()
}

// Close ensures any pending saves are written
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}

	if m.dirty {
		return m.saveLocked()
	}
	return nil
}
