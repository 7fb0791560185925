//go:build linux

package tempfiles

import (
	"os"

	"golang.org/x/sys/unix"
)

// CreateTempFile returns an anonymous memory-backed file. The kernel reclaims
// it once the last descriptor is closed, so callers never delete it.
// https://man7.org/linux/man-pages/man2/memfd_create.2.html
func CreateTempFile() (*os.File, error) {
	fd, err := unix.MemfdCreate("stester temporary file", unix.MFD_CLOEXEC)
	if err != nil {
		return nil, os.NewSyscallError("memfd_create", err)
	}
	return os.NewFile(uintptr(fd), "/memfd:stester"), nil
}
