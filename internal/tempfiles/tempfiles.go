// Package tempfiles provides anonymous ephemeral files and a bounded,
// concurrency-safe pool of reusable scratch file paths. Both exist so that a
// run over hundreds of tests does not pay filesystem metadata churn for every
// short-lived intermediate file.
package tempfiles

import (
	"os"

	"golang.org/x/sys/unix"
)

// ClonedStdio returns an independent descriptor for the same underlying file,
// suitable for wiring as a child process's stdin or stdout without handing
// over ownership of the original handle.
func ClonedStdio(f *os.File) (*os.File, error) {
	fd, err := unix.Dup(int(f.Fd()))
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(fd)
	return os.NewFile(uintptr(fd), f.Name()), nil
}
