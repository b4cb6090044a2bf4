package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/notes/pkg/core"
)

// Watch observes the data file and emits an event per change, debounced
// so that one save yields one event. The directory is watched rather
// than the file because every save replaces the file by rename.
func (r *Repository) Watch(ctx context.Context) (<-chan core.Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(r.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", r.Path, err)
	}

	events := make(chan core.Event)
	d := newDebouncer(r.config.Debounce)
	r.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer r.setWatcherActive(false)
		defer close(events)
		defer watcher.Close()
		// Runs first: no timer may fire into a closed channel.
		defer d.stopAndWait()

		return r.watchLoop(ctx, watcher, d, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		r.handleWatcherError(fmt.Errorf("watcher stopped: %w", err))
	}))

	return events, nil
}

func (r *Repository) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, d *debouncer, events chan<- core.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}

			eType := r.mapEventType(event)
			if eType == "" {
				continue
			}
			r.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())

			d.add(core.Event{
				Type:      eType,
				Path:      event.Name,
				Timestamp: time.Now().UTC(),
			}, func(e core.Event) {
				select {
				case events <- e:
				case <-ctx.Done():
				}
			})

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			r.handleWatcherError(wErr)
		}
	}
}

// mapEventType keeps events on the data file only; temp files and the
// corrupt backup are ignored.
func (r *Repository) mapEventType(event fsnotify.Event) core.EventType {
	if filepath.Base(event.Name) != r.config.FileName {
		return ""
	}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		return core.EventModify
	}
	return ""
}

func (r *Repository) handleWatcherError(err error) {
	r.config.Logger.Error("fsnotify error", "error", err)
	if r.config.ErrorHandler != nil {
		r.config.ErrorHandler(err)
	}
}

// debouncer coalesces bursts of events into the last one.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending core.Event
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay}
}

func (d *debouncer) add(e core.Event, fire func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending = e
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}

	d.wg.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		e, stopped := d.pending, d.stopped
		d.mu.Unlock()

		if !stopped {
			fire(e)
		}
	})
}

// stopAndWait drops pending events and waits for in-flight callbacks.
func (d *debouncer) stopAndWait() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.mu.Unlock()

	d.wg.Wait()
}
