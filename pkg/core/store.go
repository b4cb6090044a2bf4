package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
)

// IDPolicy selects how Create allocates note IDs.
type IDPolicy string

const (
	// IDMonotonic never reissues an ID, even after deletion.
	IDMonotonic IDPolicy = "monotonic"
	// IDLegacy assigns len(collection)+1. After a deletion this can
	// hand out an ID that is still in use.
	IDLegacy IDPolicy = "legacy"
)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger used by the store.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDPolicy selects the ID allocation policy. Defaults to IDMonotonic.
func WithIDPolicy(p IDPolicy) StoreOption {
	return func(s *Store) {
		s.policy = p
	}
}

// WithStoreReadOnly rejects every mutation with ErrReadOnly.
func WithStoreReadOnly(readOnly bool) StoreOption {
	return func(s *Store) {
		s.readOnly = readOnly
	}
}

// WithStrictLoad makes NewStore fail when the persisted collection
// cannot be read, instead of starting empty.
func WithStrictLoad(strict bool) StoreOption {
	return func(s *Store) {
		s.strict = strict
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is the note collection. It holds every note in memory and
// persists the whole collection through its Repository on each mutation.
//
// A Store is safe for concurrent use within one process. It assumes a
// single writer process per backing store; adapters may enforce that
// with a lock.
type Store struct {
	mu       sync.RWMutex
	repo     Repository
	logger   *slog.Logger
	policy   IDPolicy
	readOnly bool
	strict   bool
	now      func() time.Time

	notes    []Note
	lastID   int
	loadErr  error
	lastLoad time.Time
}

// NewStore initializes repo and loads the collection from it.
func NewStore(ctx context.Context, repo Repository, opts ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, errors.New("repository cannot be nil")
	}

	s := &Store{
		repo:   repo,
		logger: slog.New(slog.DiscardHandler),
		policy: IDMonotonic,
		now:    func() time.Time { return time.Now().UTC().Round(0) },
		notes:  []Note{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := repo.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize repository: %w", err)
	}
	if err := s.Reload(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory collection with the persisted one.
//
// A missing store loads as empty. Any other load failure is logged,
// kept in LoadErr and, on the first load, leaves the store empty;
// later reloads keep the current collection. In strict mode the error
// is returned instead.
//
// The load runs under the write lock so no mutation can commit between
// reading the snapshot and swapping it in. The ID high-water mark never
// goes down.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.repo.Load(ctx)
	s.lastLoad = time.Now()
	if err != nil {
		if s.strict {
			return fmt.Errorf("failed to load notes: %w", err)
		}
		s.logger.Warn("failed to load notes", "error", err, "kept", len(s.notes))
		s.loadErr = err
		return nil
	}

	notes := snap.Notes
	if notes == nil {
		notes = []Note{}
	}
	for i := range notes {
		if notes[i].Tags == nil {
			notes[i].Tags = []string{}
		}
	}

	s.notes = notes
	s.lastID = max(s.lastID, snap.LastID, maxID(notes))
	s.loadErr = nil
	s.logger.Debug("notes loaded", "count", len(notes), "last_id", s.lastID)
	return nil
}

// LoadErr reports why the last load fell back, or nil.
// Malformed data matches ErrCorrupt.
func (s *Store) LoadErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Create adds a new note and persists the collection.
func (s *Store) Create(ctx context.Context, title, content string, tags ...string) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly {
		return Note{}, ErrReadOnly
	}

	id := s.nextID()
	now := s.now()
	n := Note{
		ID:         id,
		Title:      title,
		Content:    content,
		Tags:       cloneTags(tags),
		CreatedAt:  now,
		UpdatedAt:  now,
		IsArchived: false,
	}

	next := append(slices.Clone(s.notes), n)
	if err := s.commit(ctx, next, max(s.lastID, id)); err != nil {
		return Note{}, err
	}

	s.logger.Debug("note created", "id", id, "title", title)
	return n.Clone(), nil
}

// Get returns the first note with the given ID.
func (s *Store) Get(ctx context.Context, id int) (Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.notes[i].Clone(), nil
	}
	return Note{}, fmt.Errorf("note %d: %w", id, ErrNotFound)
}

// List returns the notes in storage order. Archived notes are only
// included when includeArchived is true.
func (s *Store) List(ctx context.Context, includeArchived bool) []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Note, 0, len(s.notes))
	for _, n := range s.notes {
		if n.IsArchived && !includeArchived {
			continue
		}
		out = append(out, n.Clone())
	}
	return out
}

// ListByTag returns the notes having at least one tag that matches the
// glob pattern (doublestar syntax, e.g. "proj*" or "{work,home}").
func (s *Store) ListByTag(ctx context.Context, pattern string, includeArchived bool) ([]Note, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid tag pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Note{}
	for _, n := range s.notes {
		if n.IsArchived && !includeArchived {
			continue
		}
		for _, tag := range n.Tags {
			if ok, _ := doublestar.Match(pattern, tag); ok {
				out = append(out, n.Clone())
				break
			}
		}
	}
	return out, nil
}

// Change overwrites one field of a note during Update.
type Change func(*Note)

// Title sets the note title.
func Title(title string) Change {
	return func(n *Note) { n.Title = title }
}

// Content sets the note body.
func Content(content string) Change {
	return func(n *Note) { n.Content = content }
}

// Tags replaces the tag list. Tags() with no arguments clears it.
func Tags(tags ...string) Change {
	return func(n *Note) { n.Tags = cloneTags(tags) }
}

// Update applies changes to the first note with the given ID, refreshes
// its UpdatedAt and persists the collection. Fields without a Change
// keep their value.
func (s *Store) Update(ctx context.Context, id int, changes ...Change) (Note, error) {
	return s.modify(ctx, id, "note updated", func(n *Note) {
		for _, change := range changes {
			change(n)
		}
	})
}

// Archive marks the note as archived. There is no way back.
func (s *Store) Archive(ctx context.Context, id int) (Note, error) {
	return s.modify(ctx, id, "note archived", func(n *Note) {
		n.IsArchived = true
	})
}

// Delete removes every note with the given ID and persists the
// collection. It reports true once the collection is saved, whether or
// not a note matched.
func (s *Store) Delete(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly {
		return false, ErrReadOnly
	}

	next := make([]Note, 0, len(s.notes))
	for _, n := range s.notes {
		if n.ID != id {
			next = append(next, n)
		}
	}
	if err := s.commit(ctx, next, s.lastID); err != nil {
		return false, err
	}

	s.logger.Debug("note deleted", "id", id, "removed", len(s.notes)-len(next))
	return true, nil
}

// Search returns every note, archived ones included, whose title,
// content or any tag contains keyword, ignoring case.
func (s *Store) Search(ctx context.Context, keyword string) []Note {
	needle := strings.ToLower(keyword)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Note{}
	for _, n := range s.notes {
		if matches(n, needle) {
			out = append(out, n.Clone())
		}
	}
	return out
}

func matches(n Note, needle string) bool {
	if strings.Contains(strings.ToLower(n.Title), needle) ||
		strings.Contains(strings.ToLower(n.Content), needle) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// Watch reloads the store whenever the backing store changes outside
// this process and forwards each change. The channel is closed when
// ctx is done.
func (s *Store) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}

	events, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan Event)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				if err := s.Reload(ctx); err != nil {
					s.logger.Warn("reload after change failed", "error", err)
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("watch bridge failed", "error", err)
	}))

	return out, nil
}

// Close releases resources held by the repository, such as a lock file.
func (s *Store) Close() error {
	if c, ok := s.repo.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Store) modify(ctx context.Context, id int, msg string, apply func(*Note)) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly {
		return Note{}, ErrReadOnly
	}

	i := s.indexOf(id)
	if i < 0 {
		return Note{}, fmt.Errorf("note %d: %w", id, ErrNotFound)
	}

	next := slices.Clone(s.notes)
	n := next[i].Clone()
	apply(&n)
	n.touch(s.now())
	next[i] = n

	if err := s.commit(ctx, next, s.lastID); err != nil {
		return Note{}, err
	}

	s.logger.Debug(msg, "id", id)
	return n.Clone(), nil
}

// commit persists next and swaps it in. On failure the in-memory
// collection is left untouched.
func (s *Store) commit(ctx context.Context, next []Note, lastID int) error {
	if err := s.repo.Save(ctx, Snapshot{Notes: next, LastID: lastID}); err != nil {
		return fmt.Errorf("failed to save notes: %w", err)
	}
	s.notes = next
	s.lastID = lastID
	return nil
}

func (s *Store) nextID() int {
	if s.policy == IDLegacy {
		return len(s.notes) + 1
	}
	return max(s.lastID, maxID(s.notes)) + 1
}

func (s *Store) indexOf(id int) int {
	return slices.IndexFunc(s.notes, func(n Note) bool { return n.ID == id })
}

func maxID(notes []Note) int {
	m := 0
	for _, n := range notes {
		m = max(m, n.ID)
	}
	return m
}

func cloneTags(tags []string) []string {
	return append(make([]string, 0, len(tags)), tags...)
}
