// Package lifecycle exposes note change feeds as lifecycle sources.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/notes/pkg/core"
)

// Watcher is anything producing a note change feed, such as *core.Store.
type Watcher interface {
	Watch(ctx context.Context) (<-chan core.Event, error)
}

type notesSource struct {
	watcher Watcher
	out     chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits note change events.
// Events() is closed once the context given to Start is done.
func NewSource(w Watcher) lifecycle.Source {
	return &notesSource{
		watcher: w,
		out:     make(chan lifecycle.Event),
	}
}

func (s *notesSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start subscribes to the watcher and forwards each event
// (core.Event implements lifecycle.Event through String()).
func (s *notesSource) Start(ctx context.Context) error {
	events, err := s.watcher.Watch(ctx)
	if err != nil {
		close(s.out)
		return fmt.Errorf("failed to start notes source: %w", err)
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
