// Package notes is the Composition Root for the notes library.
//
// It connects the note collection (pkg/core) with the storage adapters
// (pkg/adapters/fs, pkg/adapters/sqlite) using the Hexagonal
// Architecture pattern.
//
// The whole collection lives in memory and every mutation rewrites the
// backing store: a pretty-printed JSON file by default, or a SQLite
// database. Notes carry a numeric ID, a title, a body, free-form tags,
// creation and modification timestamps, and an archived flag.
//
// Usage:
//
//	store, err := notes.Open("./notes_data",
//		notes.WithLock(true),
//		notes.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	n, err := store.Create(ctx, "Shopping", "milk, eggs", "errands")
//	found := store.Search(ctx, "MILK")
//	out, err := store.Export(ctx, notes.FormatTXT)
package notes
