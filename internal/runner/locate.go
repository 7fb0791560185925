package runner

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sio2jail wraps the external sio2jail binary. Construct it once before any
// concurrent test execution and share it between workers; it holds no mutable
// state after construction.
type Sio2jail struct {
	path string
}

// NewSio2jail wraps an explicitly configured sio2jail binary path.
func NewSio2jail(path string) (*Sio2jail, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("sio2jail not found at %s: %w", path, err)
	}
	return &Sio2jail{path: path}, nil
}

// LocateSio2jail resolves sio2jail from the user's executable directory,
// honoring XDG_BIN_HOME and defaulting to ~/.local/bin.
func LocateSio2jail() (*Sio2jail, error) {
	dir := os.Getenv("XDG_BIN_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving the user's executable directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "bin")
	}
	return NewSio2jail(filepath.Join(dir, "sio2jail"))
}

// Path reports the resolved binary path.
func (s *Sio2jail) Path() string { return s.path }
