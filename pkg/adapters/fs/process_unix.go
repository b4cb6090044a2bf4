//go:build !windows

package fs

import (
	"errors"
	"os"
	"syscall"
)

// processAlive reports whether pid names a running process. Signal 0
// checks existence without delivering anything; EPERM means the process
// exists under another user.
func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = p.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
