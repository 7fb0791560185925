package tempfiles

import (
	"errors"
	"fmt"
	"path/filepath"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/puzpuzpuz/xsync/v3"
)

// ErrPoolExhausted is returned by Acquire when no scratch path is available.
// The pool is sized for the maximum number of in-flight tests, so hitting
// this means a caller is holding more paths than it accounted for.
var ErrPoolExhausted = errors.New("scratch file pool exhausted")

// Pool hands out pre-generated scratch file paths to concurrent workers.
// Paths, not open handles, are pooled: each use needs a fresh file so that
// content from a previous test cannot leak into the next one, but the name
// itself is reused to avoid directory-entry churn.
//
// Acquire and Release are safe to call from many goroutines without external
// locking. There is no ordering guarantee on which path comes back; paths are
// fungible.
type Pool struct {
	queue    *xsync.MPMCQueueOf[string]
	lent     mapset.Set[string]
	capacity int
}

// NewPool creates an empty pool with the given fixed capacity. Size it as
// (worker count) x (scratch files needed per in-flight test).
func NewPool(capacity int) *Pool {
	if capacity <= 0 {
		panic("pool capacity must be positive")
	}
	return &Pool{
		queue:    xsync.NewMPMCQueueOf[string](capacity),
		lent:     mapset.NewSet[string](),
		capacity: capacity,
	}
}

// Fill pre-populates the pool with capacity distinct path names under dir.
// Call it once, before any concurrent test execution begins.
func (p *Pool) Fill(dir string) error {
	for i := 0; i < p.capacity; i++ {
		path := filepath.Join(dir, fmt.Sprintf("scratch-%d", i))
		if !p.queue.TryEnqueue(path) {
			return fmt.Errorf("filling scratch pool: capacity overflow at %d", i)
		}
	}
	return nil
}

// Acquire removes and returns one path. The caller owns the path until it
// calls Release and is responsible for creating a fresh file at it.
func (p *Pool) Acquire() (string, error) {
	path, ok := p.queue.TryDequeue()
	if !ok {
		return "", ErrPoolExhausted
	}
	p.lent.Add(path)
	return path, nil
}

// Release returns a previously acquired path to the pool. Paths the pool
// never handed out, and double releases, are rejected.
func (p *Pool) Release(path string) error {
	if !p.lent.ContainsOne(path) {
		return fmt.Errorf("releasing %q: path is not checked out", path)
	}
	p.lent.Remove(path)
	if !p.queue.TryEnqueue(path) {
		return fmt.Errorf("releasing %q: pool is already full", path)
	}
	return nil
}

// Capacity reports the fixed pool capacity.
func (p *Pool) Capacity() int { return p.capacity }

// Available reports how many paths are currently in the pool.
func (p *Pool) Available() int { return p.capacity - p.lent.Cardinality() }
