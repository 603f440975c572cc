package answers

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrLockHeld is returned when another live process holds a finalize lock.
var ErrLockHeld = errors.New("finalize already in progress")

// FinalizeLock is a PID lock file that keeps two processes from finalizing
// the same wizard instance at once.
type FinalizeLock struct {
	path string
}

// NewFinalizeLock returns the lock guarding key, stored under dir.
func NewFinalizeLock(dir, key string) *FinalizeLock {
	return &FinalizeLock{
		path: filepath.Join(dir, url.PathEscape(key)+".finalize.lock"),
	}
}

// Acquire takes the lock. It returns ErrLockHeld if a live process owns it.
// Locks left behind by dead processes, or holding garbage, are reclaimed.
func (l *FinalizeLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	err := l.create()
	if err == nil {
		return nil
	}
	if !os.IsExist(err) {
		return fmt.Errorf("failed to create lock file: %w", err)
	}

	pid, ok := l.owner()
	if ok && processExists(pid) {
		return ErrLockHeld
	}

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale lock file: %w", err)
	}

	// One retry only; losing this race means someone else just took it.
	if err := l.create(); err != nil {
		if os.IsExist(err) {
			return ErrLockHeld
		}
		return fmt.Errorf("failed to create lock file on retry: %w", err)
	}
	return nil
}

// Release removes the lock file. Idempotent.
func (l *FinalizeLock) Release() error {
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

func (l *FinalizeLock) create() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, writeErr := fmt.Fprintf(f, "%d", os.Getpid())
	f.Close()
	if writeErr != nil {
		os.Remove(l.path)
		return fmt.Errorf("failed to write lock file: %w", writeErr)
	}
	return nil
}

func (l *FinalizeLock) owner() (int, bool) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}
	return pid, true
}

// processExists checks for a live process using signal 0.
func processExists(pid int) bool {
	if pid == os.Getpid() {
		return true
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
