package fs

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notes/pkg/core"
)

func TestWatch_ReportsDataFileChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	watched := newTestRepo(t, Config{Path: dir, Debounce: 20 * time.Millisecond})
	writer := newTestRepo(t, Config{Path: dir})

	events, err := watched.Watch(ctx)
	require.NoError(t, err)

	before := time.Now()
	require.NoError(t, writer.Save(ctx, core.Snapshot{Notes: sampleNotes()}))

	select {
	case e := <-events:
		assert.Equal(t, core.EventModify, e.Type)
		assert.Equal(t, DefaultFileName, filepath.Base(e.Path))
		assert.False(t, e.Timestamp.Before(before.Truncate(time.Microsecond)), "timestamp %v predates the save", e.Timestamp)
		assert.Equal(t, time.UTC, e.Timestamp.Location())
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for modify event")
	}

	require.NoError(t, os.Remove(filepath.Join(dir, DefaultFileName)))

	select {
	case e := <-events:
		assert.Equal(t, core.EventDelete, e.Type)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for delete event")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	repo := newTestRepo(t, Config{Path: dir, Debounce: 20 * time.Millisecond})

	events, err := repo.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))

	select {
	case e := <-events:
		t.Fatalf("unexpected event %v", e)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	repo := newTestRepo(t, Config{})

	events, err := repo.Watch(ctx)
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		return repo.State().(RepositoryState).WatcherActive
	}, time.Second, 10*time.Millisecond)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok, "channel should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed after cancel")
	}
	assert.Eventually(t, func() bool {
		return !repo.State().(RepositoryState).WatcherActive
	}, time.Second, 10*time.Millisecond)
}

func TestDebouncer_CoalescesBursts(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)
	var fired atomic.Int32
	var last atomic.Value

	for _, p := range []string{"a", "b", "c"} {
		d.add(core.Event{Type: core.EventModify, Path: p}, func(e core.Event) {
			fired.Add(1)
			last.Store(e.Path)
		})
	}

	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	d.stopAndWait()
	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, "c", last.Load())
}
