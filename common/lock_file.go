package common

import (
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when a lock file is held by another process.
const ErrLocked = ConstError("lock file is held by another process")

// LockFile guards a resource against concurrent use by several processes.
// The lock is released by the operating system if its owner dies, so a
// crashed process never blocks its successor.
type LockFile struct {
	lock *flock.Flock
}

// CreateLockFile acquires the lock of the given path without blocking.
func CreateLockFile(path string) (*LockFile, error) {
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire file lock %s; %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return &LockFile{lock: lock}, nil
}

// Valid checks whether the lock is still owned.
func (f *LockFile) Valid() bool {
	return f != nil && f.lock != nil && f.lock.Locked()
}

// Release gives up the lock. A lock may only be released once.
func (f *LockFile) Release() error {
	if !f.Valid() {
		return fmt.Errorf("unable to release invalid lock")
	}
	if err := f.lock.Unlock(); err != nil {
		return fmt.Errorf("failed to release file lock; %w", err)
	}
	return nil
}
