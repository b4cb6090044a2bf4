package core

import "context"

// Repository defines the contract for persisting the note collection.
// Adhering to this interface allows the core to be independent of the
// underlying storage mechanism (JSON file, SQLite).
//
// The collection is always loaded and saved whole.
type Repository interface {
	// Initialize ensures the underlying storage is ready (e.g., create directories, take locks).
	Initialize(ctx context.Context) error

	// Load reads the full collection. A store that does not exist yet
	// yields an empty Snapshot and no error.
	Load(ctx context.Context) (Snapshot, error)

	// Save replaces the persisted collection with s.
	Save(ctx context.Context, s Snapshot) error
}

// Watchable defines an interface for repositories that can report
// changes made to the backing store by other processes.
type Watchable interface {
	// Watch emits an Event for every external change until ctx is done.
	Watch(ctx context.Context) (<-chan Event, error)
}
