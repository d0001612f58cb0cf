package stats

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileStartsFresh(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "none", "stats.json"))
	require.NoError(t, m.Load())
	assert.Equal(t, Stats{}, m.Snapshot())
}

func TestRecordClearPersistsOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "stats.json")
	m := NewManager(path)
	require.NoError(t, m.Load())

	m.RecordClear(1000)
	m.RecordClear(0)
	m.RecordClear(-5)
	m.SetLastPath("/data")
	require.NoError(t, m.Close())

	reloaded := NewManager(path)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, Stats{FreedLifetime: 1000, Clears: 3, LastPath: "/data"}, reloaded.Snapshot())
	assert.Equal(t, int64(1000), reloaded.FreedLifetime())
	assert.Equal(t, "/data", reloaded.LastPath())

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")
}

func TestDebouncedSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	m := NewManager(path)
	m.saveDuration = 10 * time.Millisecond

	m.SetLastPath("/srv")

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && len(data) > 0
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, m.Close())
}

func TestCloseWithoutChangesWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	m := NewManager(path)
	m.SetLastPath("")
	require.NoError(t, m.Close())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	err := NewManager(path).Load()
	assert.Error(t, err)
}

func TestConcurrentManagersAddUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	first := NewManager(path)
	second := NewManager(path)
	require.NoError(t, first.Load())
	require.NoError(t, second.Load())

	first.RecordClear(100)
	require.NoError(t, first.Close())
	second.RecordClear(50)
	second.SetLastPath("/second")
	require.NoError(t, second.Close())

	reloaded := NewManager(path)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, Stats{FreedLifetime: 150, Clears: 2, LastPath: "/second"}, reloaded.Snapshot())
	assert.Equal(t, int64(150), second.FreedLifetime(), "a save picks up the other process's counts")
}

func TestSaveReplacesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	m := NewManager(path)
	m.RecordClear(10)
	require.NoError(t, m.Save())

	reloaded := NewManager(path)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, int64(10), reloaded.FreedLifetime())
}

func TestSaveWaitsForLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	held := flock.New(path + ".lock")
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)

	m := NewManager(path)
	m.RecordClear(1)
	assert.ErrorIs(t, m.Save(), ErrLocked)

	require.NoError(t, held.Unlock())
	require.NoError(t, m.Save())
}
