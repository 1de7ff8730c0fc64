// Package runlock guards against concurrent littlebot runs hammering the
// same target from one machine, using an advisory file lock.
package runlock

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Lock is an advisory file lock held for the duration of a run.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock at path without blocking. It fails when another
// process already holds it.
func Acquire(path string) (*Lock, error) {
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("lock %s: held by another process", path)
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock. Safe to call on a nil Lock.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	if l == nil || l.fl == nil {
		return ""
	}
	return l.fl.Path()
}
