package feature

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// locksDirName is the subdirectory for lock files. Keeping them out of the
// features directory proper means they never show up in a scan.
const locksDirName = ".locks"

// LockTimeout bounds how long a transition waits for the repository lock.
const LockTimeout = 2 * time.Second

var (
	errLockTimeout  = errors.New("lock timeout")
	errLockFileOpen = errors.New("failed to open lock file")
)

// WithLock runs handler while holding an exclusive lock derived from path.
// The lock is released when handler returns.
func WithLock(path string, handler func() error) error {
	lock, err := acquireLock(path, LockTimeout)
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}

	defer lock.release()

	return handler()
}

type fileLock struct {
	path string
	file *os.File
}

// release removes the lock file while still holding the lock, then unlocks
// and closes. Order matters.
func (l *fileLock) release() {
	if l.file == nil {
		return
	}

	_ = os.Remove(l.path)
	_ = syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	_ = l.file.Close()
	l.file = nil
}

// acquireLock takes an exclusive flock on a .lock file in the .locks
// subdirectory next to path. After acquiring it verifies the file at the
// path still has the inode we opened; another process may have removed and
// recreated it while we waited, in which case we retry on the new file.
func acquireLock(path string, timeout time.Duration) (*fileLock, error) {
	locksDir := filepath.Join(filepath.Dir(path), locksDirName)
	lockPath := filepath.Join(locksDir, filepath.Base(path)+".lock")

	deadline := time.Now().Add(timeout)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: %s", errLockTimeout, path)
		}

		mkdirErr := os.MkdirAll(locksDir, dirPerms)
		if mkdirErr != nil {
			return nil, fmt.Errorf("creating locks dir: %w", mkdirErr)
		}

		file, openErr := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, filePerms) //nolint:gosec // lock path is derived, not user input
		if openErr != nil {
			return nil, fmt.Errorf("%w: %w", errLockFileOpen, openErr)
		}

		var openStat syscall.Stat_t

		statErr := syscall.Fstat(int(file.Fd()), &openStat)
		if statErr != nil {
			_ = file.Close()

			return nil, fmt.Errorf("fstat lock file: %w", statErr)
		}

		fd := int(file.Fd())
		done := make(chan error, 1)

		go func() {
			done <- syscall.Flock(fd, syscall.LOCK_EX)
		}()

		select {
		case flockErr := <-done:
			if flockErr != nil {
				_ = file.Close()

				return nil, fmt.Errorf("flock: %w", flockErr)
			}

			var pathStat syscall.Stat_t
			if err := syscall.Stat(lockPath, &pathStat); err != nil || pathStat.Ino != openStat.Ino {
				// Lock file was deleted and recreated while we waited.
				_ = syscall.Flock(fd, syscall.LOCK_UN)
				_ = file.Close()

				continue
			}

			return &fileLock{path: lockPath, file: file}, nil
		case <-time.After(remaining):
			_ = file.Close()

			return nil, fmt.Errorf("%w: %s", errLockTimeout, path)
		}
	}
}
