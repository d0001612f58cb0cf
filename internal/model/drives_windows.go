//go:build windows

package model

import "golang.org/x/sys/windows"

func getDiskSpace(path string) (total, free int64) {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, 0
	}

	var freeBytesAvailable, totalBytes, totalFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(pathPtr, &freeBytesAvailable, &totalBytes, &totalFreeBytes); err != nil {
		return 0, 0
	}
	return int64(totalBytes), int64(freeBytesAvailable)
}
