package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/notes/pkg/core"
)

// options holds the internal configuration for a notes store.
type options struct {
	repository core.Repository
	logger     *slog.Logger
	adapter    string
	config     map[string]interface{}
}

// Option defines a functional option for configuring a store.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		repository: nil,
		logger:     nil,
		adapter:    "fs",
		config:     make(map[string]interface{}),
	}
}

// WithLogger sets the logger for the store and its adapter.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository allows injecting a custom storage adapter (e.g. mock).
// If provided, the adapter name is ignored.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithAdapter allows specifying the storage adapter to use by name ("fs" or "sqlite").
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithFileName overrides the data file name inside the storage directory.
func WithFileName(name string) Option {
	return func(o *options) {
		o.config["file_name"] = name
	}
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".notes").
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.config["system_dir"] = name
	}
}

// WithMustExist ensures the storage directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Mutations return core.ErrReadOnly.
// 2. No directory is created and no lock is taken.
// 3. Nothing is ever written, not even the backup of a corrupt file.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithStrictLoad makes opening fail when the data file cannot be read
// or parsed. By default the store logs a warning and starts empty.
func WithStrictLoad(strict bool) Option {
	return func(o *options) {
		o.config["strict_load"] = strict
	}
}

// WithLegacyIDs switches ID allocation to len(notes)+1, the scheme of
// existing notes_data collections. It can reissue an ID still in use after a delete.
func WithLegacyIDs() Option {
	return func(o *options) {
		o.config["id_policy"] = core.IDLegacy
	}
}

// WithLock guards the storage directory with a lock file for the
// lifetime of the store (fs adapter only).
func WithLock(enabled bool) Option {
	return func(o *options) {
		o.config["lock"] = enabled
	}
}

// WithLockTimeout bounds the wait for the lock file. Zero means default (2s).
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) {
		o.config["lock_timeout"] = d
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.config["clock"] = now
	}
}

// WithWatcherErrorHandler registers a callback to handle errors occurring during the Watch loop.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}
