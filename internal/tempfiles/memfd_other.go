//go:build !linux

package tempfiles

import "os"

// CreateTempFile returns an unnamed filesystem-backed temporary file. The
// name is unlinked immediately, so the storage is reclaimed once the last
// descriptor is closed, matching the linux memfd behaviour.
func CreateTempFile() (*os.File, error) {
	f, err := os.CreateTemp("", "stester-*")
	if err != nil {
		return nil, err
	}
	if err := os.Remove(f.Name()); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
