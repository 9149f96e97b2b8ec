package feature_test

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"ft/internal/feature"
)

func TestWithLockSerializesWriters(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "repository")

	const workers = 5

	var (
		wg      sync.WaitGroup
		counter int // guarded by the file lock, not a mutex
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			err := feature.WithLock(lockPath, func() error {
				counter++

				return nil
			})
			require.NoError(t, err)
		}()
	}

	wg.Wait()
	require.Equal(t, workers, counter)
}

func TestWithLockReleasesOnHandlerError(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "repository")
	boom := errors.New("boom")

	err := feature.WithLock(lockPath, func() error { return boom })
	require.ErrorIs(t, err, boom)

	err = feature.WithLock(lockPath, func() error { return nil })
	require.NoError(t, err, "lock must be free after a failed handler")
}
