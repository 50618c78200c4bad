package tracker

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ErrLocked is returned when another sync run holds the lock.
// Check with errors.Is().
var ErrLocked = errors.New("another sync run is in progress")

// staleLockAge is how old a lock file must be before it is assumed to
// belong to a crashed run and taken over. A sync run is a short batch
// job; nothing legitimate holds the lock for hours.
const staleLockAge = 2 * time.Hour

// RunLock is an advisory lock file guarding against overlapping sync
// runs from concurrent scheduler invocations. It lives next to the
// tracker snapshot.
type RunLock struct {
	path string
}

// AcquireLock takes the advisory lock at path, creating the file
// exclusively. Returns ErrLocked while a live lock exists; a lock older
// than the stale threshold is replaced.
func AcquireLock(path string) (*RunLock, error) {
	if info, err := os.Stat(path); err == nil {
		if time.Since(info.ModTime()) < staleLockAge {
			return nil, ErrLocked
		}
		// Crashed run left the lock behind.
		os.Remove(path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("create lock file: %w", err)
	}

	_, writeErr := f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	closeErr := f.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write lock file: %w", errors.Join(writeErr, closeErr))
	}

	return &RunLock{path: path}, nil
}

// Release removes the lock file.
func (l *RunLock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}
