package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFlushesProfileOnError(t *testing.T) {
	profile := filepath.Join(t.TempDir(), "cpu.prof")
	t.Setenv("CPUPROFILE", profile)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("DISKPRUNE_CONFIG_DIR", home)

	args := os.Args
	t.Cleanup(func() { os.Args = args })
	os.Args = []string{"diskprune", filepath.Join(t.TempDir(), "missing")}

	assert.Equal(t, 1, run())

	info, err := os.Stat(profile)
	require.NoError(t, err)
	assert.NotZero(t, info.Size(), "profile is written out on the error path")
}
