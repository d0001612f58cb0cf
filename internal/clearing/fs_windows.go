//go:build windows

package clearing

import (
	"os"
	"path/filepath"
	"syscall"
)

// OSFS implements FS by tracking the working directory as a path
type OSFS struct {
	dir string
}

// NewOSFS returns an OSFS with no working directory. Rmdir and Unlink
// fail until the first Chdir succeeds.
func NewOSFS() *OSFS {
	return &OSFS{}
}

// Chdir moves the working directory to path, relative to the current one
func (f *OSFS) Chdir(path string) error {
	target := path
	if !filepath.IsAbs(path) {
		if f.dir == "" {
			return &os.PathError{Op: "chdir", Path: path, Err: syscall.ENOENT}
		}
		target = filepath.Join(f.dir, path)
	}
	info, err := os.Lstat(target)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "chdir", Path: target, Err: syscall.ENOTDIR}
	}
	f.dir = target
	return nil
}

// Rmdir removes the empty directory name
func (f *OSFS) Rmdir(name string) error {
	if f.dir == "" {
		return &os.PathError{Op: "rmdir", Path: name, Err: syscall.ENOENT}
	}
	path := filepath.Join(f.dir, name)
	if err := syscall.Rmdir(path); err != nil {
		return &os.PathError{Op: "rmdir", Path: path, Err: err}
	}
	return nil
}

// Unlink removes the non-directory entry name
func (f *OSFS) Unlink(name string) error {
	if f.dir == "" {
		return &os.PathError{Op: "unlink", Path: name, Err: syscall.ENOENT}
	}
	return os.Remove(filepath.Join(f.dir, name))
}

// Close forgets the working directory
func (f *OSFS) Close() error {
	f.dir = ""
	return nil
}
