//go:build !windows

package clearing

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// OSFS implements FS on an open directory descriptor. Changing directory
// only moves the descriptor; the process working directory is untouched.
type OSFS struct {
	fd   int
	path string
}

// NewOSFS returns an OSFS with no working directory. Rmdir and Unlink
// fail until the first Chdir succeeds.
func NewOSFS() *OSFS {
	return &OSFS{fd: -1}
}

// Chdir moves the working directory to path, relative to the current one
func (f *OSFS) Chdir(path string) error {
	dirfd := unix.AT_FDCWD
	switch {
	case f.fd >= 0:
		dirfd = f.fd
	case !filepath.IsAbs(path):
		// nothing to be relative to; never fall back to the process cwd
		return &os.PathError{Op: "chdir", Path: path, Err: unix.ENOENT}
	}
	flags := unix.O_RDONLY | unix.O_DIRECTORY | unix.O_CLOEXEC
	if !filepath.IsAbs(path) && path != ".." {
		// a child swapped for a symlink must not be followed
		flags |= unix.O_NOFOLLOW
	}

	fd, err := unix.Openat(dirfd, path, flags, 0)
	if err != nil {
		return &os.PathError{Op: "chdir", Path: f.join(path), Err: err}
	}
	if f.fd >= 0 {
		_ = unix.Close(f.fd)
	}
	f.fd = fd
	f.path = f.join(path)
	return nil
}

// Rmdir removes the empty directory name
func (f *OSFS) Rmdir(name string) error {
	if f.fd < 0 {
		return &os.PathError{Op: "rmdir", Path: name, Err: unix.EBADF}
	}
	if err := unix.Unlinkat(f.fd, name, unix.AT_REMOVEDIR); err != nil {
		return &os.PathError{Op: "rmdir", Path: f.join(name), Err: err}
	}
	return nil
}

// Unlink removes the non-directory entry name
func (f *OSFS) Unlink(name string) error {
	if f.fd < 0 {
		return &os.PathError{Op: "unlink", Path: name, Err: unix.EBADF}
	}
	if err := unix.Unlinkat(f.fd, name, 0); err != nil {
		return &os.PathError{Op: "unlink", Path: f.join(name), Err: err}
	}
	return nil
}

// Close releases the working directory descriptor
func (f *OSFS) Close() error {
	if f.fd < 0 {
		return nil
	}
	err := unix.Close(f.fd)
	f.fd = -1
	f.path = ""
	return err
}

func (f *OSFS) join(path string) string {
	if filepath.IsAbs(path) || f.path == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(f.path, path)
}
