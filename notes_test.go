package notes_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notes"
)

func open(t *testing.T, dir string, opts ...notes.Option) *notes.Store {
	t.Helper()
	store, err := notes.Open(dir, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEndToEnd(t *testing.T) {
	for _, adapter := range []string{"fs", "sqlite"} {
		t.Run(adapter, func(t *testing.T) {
			ctx := context.Background()
			store := open(t, t.TempDir(), notes.WithAdapter(adapter))

			n1, err := store.Create(ctx, "笔记1", "内容1", "标签1")
			require.NoError(t, err)
			n2, err := store.Create(ctx, "笔记2", "内容2", "标签2")
			require.NoError(t, err)
			n3, err := store.Create(ctx, "笔记3", "内容3", "标签3")
			require.NoError(t, err)

			assert.Len(t, store.List(ctx, false), 3)

			_, err = store.Archive(ctx, n3.ID)
			require.NoError(t, err)
			assert.Len(t, store.List(ctx, false), 2)
			assert.Len(t, store.List(ctx, true), 3)

			ok, err := store.Delete(ctx, n1.ID)
			require.NoError(t, err)
			assert.True(t, ok)

			all := store.List(ctx, true)
			require.Len(t, all, 2)
			assert.Equal(t, n2.Title, all[0].Title)

			out, err := store.Export(ctx, notes.FormatTXT)
			require.NoError(t, err)
			assert.Contains(t, out, "笔记2")
			assert.Contains(t, out, "内容2")
		})
	}
}

func TestPersistenceSurvivesReopen(t *testing.T) {
	for _, adapter := range []string{"fs", "sqlite"} {
		t.Run(adapter, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()

			first, err := notes.Open(dir, notes.WithAdapter(adapter))
			require.NoError(t, err)
			created, err := first.Create(ctx, "Python学习", "学习Python编程", "编程", "学习")
			require.NoError(t, err)
			updated, err := first.Update(ctx, created.ID, notes.Tags("编程"))
			require.NoError(t, err)
			require.NoError(t, first.Close())

			second := open(t, dir, notes.WithAdapter(adapter))
			list := second.List(ctx, true)
			require.Len(t, list, 1)
			assert.Equal(t, updated, list[0])
		})
	}
}

func TestOpen_DefaultLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	store := open(t, dir)

	_, err := store.Create(context.Background(), "t", "c")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "notes.json"))
	assert.NoError(t, err)
}

func TestOpen_ReadOnly(t *testing.T) {
	dir := t.TempDir()
	writer := open(t, dir)
	_, err := writer.Create(context.Background(), "t", "c")
	require.NoError(t, err)

	reader := open(t, dir, notes.WithReadOnly(true))
	assert.Len(t, reader.List(context.Background(), true), 1)

	_, err = reader.Create(context.Background(), "x", "y")
	assert.True(t, errors.Is(err, notes.ErrReadOnly))
}

func TestOpen_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte("not json"), 0644))

	store := open(t, dir)
	assert.Empty(t, store.List(context.Background(), true))
	assert.True(t, errors.Is(store.LoadErr(), notes.ErrCorrupt))

	_, err := notes.Open(dir, notes.WithStrictLoad(true))
	assert.True(t, errors.Is(err, notes.ErrCorrupt))
}

func TestWatch_ReloadsOnExternalWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	watcher := open(t, dir)
	writer := open(t, dir)

	events, err := watcher.Watch(ctx)
	require.NoError(t, err)

	_, err = writer.Create(context.Background(), "from elsewhere", "")
	require.NoError(t, err)

	select {
	case <-events:
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for change event")
	}

	list := watcher.List(context.Background(), true)
	require.Len(t, list, 1)
	assert.Equal(t, "from elsewhere", list[0].Title)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, notes.Version)
}

func TestWatch_ConcurrentCreatesKeepDistinctIDs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	store := open(t, dir)

	events, err := store.Watch(ctx)
	require.NoError(t, err)
	go func() {
		for range events {
		}
	}()

	const total = 200
	seen := make(map[int]bool, total)
	for i := range total {
		n, err := store.Create(context.Background(), fmt.Sprintf("note %d", i), "")
		require.NoError(t, err)
		require.False(t, seen[n.ID], "id %d issued twice", n.ID)
		seen[n.ID] = true
	}

	assert.Len(t, store.List(context.Background(), true), total)

	cancel()
	reopened := open(t, dir, notes.WithReadOnly(true))
	assert.Len(t, reopened.List(context.Background(), true), total)
}

func TestFailedSaveLeavesDiskAndMemoryInAgreement(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := open(t, dir)

	kept, err := store.Create(ctx, "kept", "")
	require.NoError(t, err)

	systemDir := filepath.Join(dir, ".notes")
	require.NoError(t, os.RemoveAll(systemDir))
	require.NoError(t, os.WriteFile(systemDir, []byte("in the way"), 0644))

	_, err = store.Create(ctx, "lost", "")
	require.Error(t, err)
	assert.Len(t, store.List(ctx, true), 1)

	require.NoError(t, os.Remove(systemDir))
	reopened := open(t, dir, notes.WithReadOnly(true))
	list := reopened.List(ctx, true)
	require.Len(t, list, 1)
	assert.Equal(t, kept.ID, list[0].ID)
}
