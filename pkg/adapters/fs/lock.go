package fs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aretw0/notes/pkg/core"
)

// fileLock is a lock file created with O_EXCL. Its content is the PID
// of the owner, to help clean up after a crash.
type fileLock struct {
	path string
}

// acquireLock retries every 10ms until the lock is free, timeout
// elapses (core.ErrLocked) or ctx is done. A lock left behind by a
// process that no longer runs is removed.
func acquireLock(ctx context.Context, path string, timeout time.Duration) (*fileLock, error) {
	deadline := time.Now().Add(timeout)

	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path)
				return nil, fmt.Errorf("failed to write lock file: %v %v", werr, cerr)
			}
			return &fileLock{path: path}, nil
		}

		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}
		if breakStaleLock(path) {
			continue
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", core.ErrLocked, path)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// Release removes the lock file.
func (l *fileLock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// lockOwner returns the PID recorded in the lock file.
func lockOwner(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(string(bytes.TrimSpace(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// breakStaleLock removes the lock file when its owner is gone. A file
// without a readable PID may still be being written and is left alone.
func breakStaleLock(path string) bool {
	pid, ok := lockOwner(path)
	if !ok || processAlive(pid) {
		return false
	}
	// Another process may have broken and retaken the lock meanwhile.
	if current, ok := lockOwner(path); !ok || current != pid {
		return false
	}
	return os.Remove(path) == nil
}
