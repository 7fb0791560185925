package tempfiles_test

import (
	"sync"
	"testing"

	"github.com/sio2tools/stester/internal/tempfiles"
	"github.com/stretchr/testify/require"
)

func TestPoolFillAndDrain(t *testing.T) {
	pool := tempfiles.NewPool(4)
	require.NoError(t, pool.Fill(t.TempDir()))
	require.Equal(t, 4, pool.Available())

	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		path, err := pool.Acquire()
		require.NoError(t, err)
		require.False(t, seen[path], "pool handed out %q twice", path)
		seen[path] = true
	}

	_, err := pool.Acquire()
	require.ErrorIs(t, err, tempfiles.ErrPoolExhausted)

	for path := range seen {
		require.NoError(t, pool.Release(path))
	}
	require.Equal(t, 4, pool.Available())
}

func TestPoolRejectsForeignAndDoubleRelease(t *testing.T) {
	pool := tempfiles.NewPool(2)
	require.NoError(t, pool.Fill(t.TempDir()))

	require.Error(t, pool.Release("/nowhere/scratch-0"))

	path, err := pool.Acquire()
	require.NoError(t, err)
	require.NoError(t, pool.Release(path))
	require.Error(t, pool.Release(path))
}

func TestPoolConcurrentCheckouts(t *testing.T) {
	const workers = 16
	const rounds = 200

	pool := tempfiles.NewPool(workers * 3)
	require.NoError(t, pool.Fill(t.TempDir()))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				a, err := pool.Acquire()
				if err != nil {
					t.Error(err)
					return
				}
				b, err := pool.Acquire()
				if err != nil {
					t.Error(err)
					return
				}
				if a == b {
					t.Errorf("acquired the same path twice: %q", a)
				}
				if err := pool.Release(b); err != nil {
					t.Error(err)
				}
				if err := pool.Release(a); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	wg.Wait()

	// balanced acquire/release leaves the pool at its initial capacity
	require.Equal(t, pool.Capacity(), pool.Available())
}
