package core

import "errors"

// Common errors.
var (
	ErrNotFound = errors.New("note not found")
	ErrCorrupt  = errors.New("notes file is corrupt")
	ErrReadOnly = errors.New("store is in read-only mode")
	ErrLocked   = errors.New("store is locked by another process")
)
