//go:build windows

package fs

import "os"

// processAlive reports whether pid names a running process. On Windows
// FindProcess opens a handle and fails once the process has exited.
func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}
