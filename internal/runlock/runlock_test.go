package runlock_test

import (
	"path/filepath"
	"testing"

	"github.com/mishioo/littlebot/internal/runlock"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "littlebot.lock")

	lock, err := runlock.Acquire(path)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if lock.Path() != path {
		t.Errorf("Path() = %q, want %q", lock.Path(), path)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	// Re-acquirable after release.
	lock, err = runlock.Acquire(path)
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
}

func TestAcquireHeldLockFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "littlebot.lock")

	lock, err := runlock.Acquire(path)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer lock.Release()

	if _, err := runlock.Acquire(path); err == nil {
		t.Fatal("expected second Acquire to fail while lock is held")
	}
}

func TestReleaseNil(t *testing.T) {
	var lock *runlock.Lock
	if err := lock.Release(); err != nil {
		t.Errorf("Release() on nil = %v, want nil", err)
	}
	if lock.Path() != "" {
		t.Errorf("Path() on nil = %q, want empty", lock.Path())
	}
}
