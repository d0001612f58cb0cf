//go:build !windows

package model

import (
	"testing"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/stretchr/testify/assert"
)

func TestMountForPicksDeepestMount(t *testing.T) {
	parts := []disk.PartitionStat{
		{Mountpoint: "/", Fstype: "ext4"},
		{Mountpoint: "/home", Fstype: "xfs"},
		{Mountpoint: "/home/user/media", Fstype: "nfs"},
		{Mountpoint: "/homework", Fstype: "tmpfs"},
	}

	mount, fstype := mountFor("/home/user/src", parts)
	assert.Equal(t, "/home", mount)
	assert.Equal(t, "xfs", fstype)

	mount, _ = mountFor("/home/user/media", parts)
	assert.Equal(t, "/home/user/media", mount)

	mount, _ = mountFor("/var/log", parts)
	assert.Equal(t, "/", mount)

	mount, _ = mountFor("/var/log", nil)
	assert.Empty(t, mount)
}

func TestVolumeUsage(t *testing.T) {
	v := Volume{TotalBytes: 200, FreeBytes: 50}
	assert.Equal(t, int64(150), v.UsedBytes())
	assert.InDelta(t, 75.0, v.UsedPercent(), 0.001)
	assert.Zero(t, Volume{}.UsedPercent())
}

func TestVolumeForTempDir(t *testing.T) {
	v := VolumeFor(t.TempDir())
	assert.Greater(t, v.TotalBytes, int64(0))
	assert.GreaterOrEqual(t, v.TotalBytes, v.FreeBytes)
}
