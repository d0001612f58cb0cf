package model

import (
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
)

// Volume describes the filesystem holding a scanned path
type Volume struct {
	Path       string
	Mount      string // mount point holding Path, empty when unknown
	FSType     string
	TotalBytes int64
	FreeBytes  int64
}

// UsedBytes returns bytes used on this volume
func (v Volume) UsedBytes() int64 {
	return v.TotalBytes - v.FreeBytes
}

// UsedPercent returns percentage of volume used
func (v Volume) UsedPercent() float64 {
	if v.TotalBytes == 0 {
		return 0
	}
	return float64(v.UsedBytes()) / float64(v.TotalBytes) * 100
}

// VolumeFor returns disk space information for the filesystem holding path.
// Sizes are zero when the platform query fails.
func VolumeFor(path string) Volume {
	v := Volume{Path: path}
	v.TotalBytes, v.FreeBytes = getDiskSpace(path)
	if parts, err := disk.Partitions(false); err == nil {
		v.Mount, v.FSType = mountFor(path, parts)
	}
	return v
}

// mountFor picks the deepest mount point containing path
func mountFor(path string, parts []disk.PartitionStat) (mount, fstype string) {
	for _, p := range parts {
		if len(p.Mountpoint) > len(mount) && within(path, p.Mountpoint) {
			mount, fstype = p.Mountpoint, p.Fstype
		}
	}
	return mount, fstype
}

func within(path, dir string) bool {
	if filepath.VolumeName(dir) == dir {
		dir += string(filepath.Separator) // "C:" means the drive root
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
