package notes

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/notes/internal/platform"
	"github.com/aretw0/notes/pkg/core"
)

// --- Types ---

// Note is a public alias for the core note.
type Note = core.Note

// Store is a public alias for the note collection.
type Store = core.Store

// Change is a public alias for an Update field change.
type Change = core.Change

// Event is a public alias for a backing store change notification.
type Event = core.Event

// --- Errors ---

var (
	ErrNotFound = core.ErrNotFound
	ErrCorrupt  = core.ErrCorrupt
	ErrReadOnly = core.ErrReadOnly
	ErrLocked   = core.ErrLocked
)

// --- Export formats ---

const (
	FormatJSON = core.FormatJSON
	FormatTXT  = core.FormatTXT
	FormatYAML = core.FormatYAML
)

// DefaultDir is the storage directory used when Open is given "".
const DefaultDir = platform.DefaultDir

// --- Changes ---

// Title sets the note title during Update.
func Title(title string) Change { return core.Title(title) }

// Content sets the note body during Update.
func Content(content string) Change { return core.Content(content) }

// Tags replaces the tag list during Update. Tags() clears it.
func Tags(tags ...string) Change { return core.Tags(tags...) }

// --- Configuration ---

// Option defines a functional option for configuring a store.
type Option = platform.Option

// WithLogger sets the logger for the store and its adapter.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithAdapter selects the storage adapter by name ("fs" or "sqlite").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithFileName overrides the data file name (e.g. "notes.json").
func WithFileName(name string) Option {
	return platform.WithFileName(name)
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".notes").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithMustExist ensures the storage directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithReadOnly opens the store without ever writing to disk.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithStrictLoad makes Open fail on unreadable data instead of starting empty.
func WithStrictLoad(strict bool) Option {
	return platform.WithStrictLoad(strict)
}

// WithLegacyIDs assigns IDs as count+1, as notes_data files written by
// older tools expect. IDs may then repeat after a deletion.
func WithLegacyIDs() Option {
	return platform.WithLegacyIDs()
}

// WithLock guards the storage directory with a lock file.
func WithLock(enabled bool) Option {
	return platform.WithLock(enabled)
}

// WithLockTimeout bounds how long Open waits for the lock file.
func WithLockTimeout(d time.Duration) Option {
	return platform.WithLockTimeout(d)
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithWatcherErrorHandler receives errors from the file watcher.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// Open loads the store rooted at dir, creating it when needed.
func Open(dir string, opts ...Option) (*Store, error) {
	return OpenContext(context.Background(), dir, opts...)
}

// OpenContext is Open with a context bounding initialization, such as
// waiting for the lock file.
func OpenContext(ctx context.Context, dir string, opts ...Option) (*Store, error) {
	return platform.New(ctx, dir, opts...)
}
