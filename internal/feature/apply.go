package feature

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

const (
	dirPerms  = 0o750
	filePerms = 0o600
)

// repoLockName is the sentinel the repository-wide lock is derived from.
const repoLockName = "repository"

// recordPath returns the full path a record with the given status lives at.
func recordPath(cfg Config, id string, status Status) string {
	if status == StatusDone {
		return filepath.Join(cfg.CompletedDirAbs, Filename(id, status))
	}

	return filepath.Join(cfg.FeaturesDirAbs, Filename(id, status))
}

// Exists reports whether any document (any status, including done) already
// claims the identifier.
func Exists(cfg Config, id string) bool {
	for _, status := range []Status{StatusReady, StatusActive, StatusBacklog, StatusBlocked, StatusDone} {
		if _, err := os.Stat(recordPath(cfg, id, status)); err == nil {
			return true
		}
	}

	return false
}

// Apply executes the persistence instructions of a validated transition.
//
// The snapshot used for validation may be stale by the time we get here (a
// human renaming files between calls, another ft invocation). Apply therefore
// re-scans under the repository lock and verifies every instruction against
// the fresh state; any mismatch fails with ErrStaleIndex and nothing is
// written. A transition is applied entirely or not at all.
func Apply(cfg Config, res TransitionResult) error {
	lockPath := filepath.Join(cfg.FeaturesDirAbs, repoLockName)

	return WithLock(lockPath, func() error {
		fresh, err := Scan(cfg.FeaturesDirAbs, cfg.CompletedDirAbs)
		if err != nil {
			return err
		}

		for _, ins := range res.Instructions {
			if err := checkFresh(fresh, ins, res.Forced); err != nil {
				return err
			}
		}

		for _, ins := range res.Instructions {
			if err := execute(cfg, res.Record, ins); err != nil {
				return err
			}
		}

		return nil
	})
}

func checkFresh(fresh Index, ins Instruction, forced bool) error {
	rec, err := fresh.Lookup(ins.ID)
	if err != nil {
		return fmt.Errorf("%w: %s no longer present", ErrStaleIndex, ins.ID)
	}

	if rec.Status != ins.From {
		return fmt.Errorf("%w: %s is %s, expected %s", ErrStaleIndex, ins.ID, rec.Status, ins.From)
	}

	if ins.To == StatusActive {
		if other, ok := fresh.OtherActive(ins.ID); ok {
			return fmt.Errorf("%w: %s became active since scan", ErrStaleIndex, other.ID)
		}
	}

	// The completion precondition was validated against the stale snapshot;
	// tasks may have landed in the document since.
	if ins.Op == OpArchive && !forced && !rec.TasksComplete() {
		return fmt.Errorf("%w: %s has incomplete tasks now", ErrStaleIndex, ins.ID)
	}

	return nil
}

// execute performs one relocate or archive. The new document is written
// atomically before the old one is removed; if the removal fails the new
// file is taken back out so the repository is left as found.
func execute(cfg Config, rec Record, ins Instruction) error {
	oldPath := recordPath(cfg, ins.ID, ins.From)
	newPath := recordPath(cfg, ins.ID, ins.To)

	mkdirErr := os.MkdirAll(filepath.Dir(newPath), dirPerms)
	if mkdirErr != nil {
		return fmt.Errorf("creating directory: %w", mkdirErr)
	}

	content := FormatRecord(rec)

	writeErr := atomic.WriteFile(newPath, strings.NewReader(content))
	if writeErr != nil {
		return fmt.Errorf("writing feature file: %w", writeErr)
	}

	if chmodErr := os.Chmod(newPath, filePerms); chmodErr != nil {
		return fmt.Errorf("setting file permissions: %w", chmodErr)
	}

	if oldPath == newPath {
		return nil
	}

	if removeErr := os.Remove(oldPath); removeErr != nil {
		_ = os.Remove(newPath)

		return fmt.Errorf("removing old feature file: %w", removeErr)
	}

	return nil
}

// WriteRecord persists a new record. Fails with ErrFeatureExists if any
// document already claims the identifier; the check and the write happen
// under the repository lock so concurrent creates cannot race.
func WriteRecord(cfg Config, rec Record) (string, error) {
	mkdirErr := os.MkdirAll(cfg.FeaturesDirAbs, dirPerms)
	if mkdirErr != nil {
		return "", fmt.Errorf("creating features directory: %w", mkdirErr)
	}

	lockPath := filepath.Join(cfg.FeaturesDirAbs, repoLockName)
	path := recordPath(cfg, rec.ID, rec.Status)

	lockErr := WithLock(lockPath, func() error {
		if Exists(cfg, rec.ID) {
			return fmt.Errorf("%w: %s", ErrFeatureExists, rec.ID)
		}

		writeErr := atomic.WriteFile(path, strings.NewReader(FormatRecord(rec)))
		if writeErr != nil {
			return fmt.Errorf("writing feature file: %w", writeErr)
		}

		return os.Chmod(path, filePerms)
	})
	if lockErr != nil {
		return "", lockErr
	}

	return path, nil
}

// UniqueID returns base if free, otherwise base-2, base-3, and so on.
func UniqueID(cfg Config, base string) string {
	if !Exists(cfg, base) {
		return base
	}

	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if !Exists(cfg, candidate) {
			return candidate
		}
	}
}
