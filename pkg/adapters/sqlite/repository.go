// Package sqlite stores the note collection in a SQLite database.
//
// The core still loads and saves the whole collection; the database
// only replaces the JSON file as the container.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/aretw0/introspection"
	_ "modernc.org/sqlite"

	"github.com/aretw0/notes/pkg/core"
)

// DefaultFileName is the database file inside the storage directory.
const DefaultFileName = "notes.db"

const schema = `
CREATE TABLE IF NOT EXISTS notes (
	position INTEGER PRIMARY KEY,
	id INTEGER NOT NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	is_archived INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_notes_id ON notes(id);
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Config holds the configuration for the SQLite repository.
type Config struct {
	Path     string // storage directory
	FileName string // e.g. "notes.db"
	ReadOnly bool
	Logger   *slog.Logger
}

// Repository implements core.Repository on top of database/sql.
type Repository struct {
	config Config

	mu sync.RWMutex
	db *sql.DB
}

// NewRepository creates a SQLite-backed repository. The database is
// opened by Initialize.
func NewRepository(config Config) *Repository {
	if config.FileName == "" {
		config.FileName = DefaultFileName
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{config: config}
}

// FilePath returns the location of the database file.
func (r *Repository) FilePath() string {
	return filepath.Join(r.config.Path, r.config.FileName)
}

// Initialize opens the database and creates the schema. In read-only
// mode a missing database is not created.
func (r *Repository) Initialize(ctx context.Context) error {
	path := r.FilePath()

	dsn := path
	if r.config.ReadOnly {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil
		}
		dsn = "file:" + path + "?mode=ro"
	} else if err := os.MkdirAll(r.config.Path, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if !r.config.ReadOnly {
		if _, err := db.ExecContext(ctx, schema); err != nil {
			db.Close()
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	r.mu.Lock()
	r.db = db
	r.mu.Unlock()

	r.config.Logger.Debug("database opened", "path", path, "read_only", r.config.ReadOnly)
	return nil
}

// Load reads every row in position order.
func (r *Repository) Load(ctx context.Context) (core.Snapshot, error) {
	db := r.handle()
	if db == nil {
		return core.Snapshot{Notes: []core.Note{}}, nil
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, title, content, tags, created_at, updated_at, is_archived
		FROM notes
		ORDER BY position`)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	notes := []core.Note{}
	for rows.Next() {
		var (
			n                core.Note
			tags             string
			created, updated string
			archived         int
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &tags, &created, &updated, &archived); err != nil {
			return core.Snapshot{}, fmt.Errorf("failed to scan note: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &n.Tags); err != nil {
			return core.Snapshot{}, fmt.Errorf("%w: note %d: tags: %v", core.ErrCorrupt, n.ID, err)
		}
		if n.Tags == nil {
			n.Tags = []string{}
		}
		if n.CreatedAt, err = core.ParseTimestamp(created); err != nil {
			return core.Snapshot{}, fmt.Errorf("%w: note %d: %v", core.ErrCorrupt, n.ID, err)
		}
		if n.UpdatedAt, err = core.ParseTimestamp(updated); err != nil {
			return core.Snapshot{}, fmt.Errorf("%w: note %d: %v", core.ErrCorrupt, n.ID, err)
		}
		n.IsArchived = archived != 0
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to read notes: %w", err)
	}

	lastID, err := r.lastID(ctx, db)
	if err != nil {
		return core.Snapshot{}, err
	}

	return core.Snapshot{Notes: notes, LastID: lastID}, nil
}

func (r *Repository) lastID(ctx context.Context, db *sql.DB) (int, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'last_id'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read last id: %w", err)
	}

	id, err := strconv.Atoi(value)
	if err != nil {
		r.config.Logger.Debug("ignoring invalid last id", "value", value)
		return 0, nil
	}
	return id, nil
}

// Save replaces the whole collection in a single transaction.
func (r *Repository) Save(ctx context.Context, s core.Snapshot) (err error) {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	db := r.handle()
	if db == nil {
		return errors.New("database is not initialized")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM notes`); err != nil {
		return fmt.Errorf("failed to clear notes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO notes (position, id, title, content, tags, created_at, updated_at, is_archived)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, n := range s.Notes {
		tags := n.Tags
		if tags == nil {
			tags = []string{}
		}
		encoded, merr := json.Marshal(tags)
		if merr != nil {
			return fmt.Errorf("failed to encode tags of note %d: %w", n.ID, merr)
		}
		archived := 0
		if n.IsArchived {
			archived = 1
		}
		if _, err = stmt.ExecContext(ctx, i, n.ID, n.Title, n.Content, string(encoded),
			core.FormatTimestamp(n.CreatedAt), core.FormatTimestamp(n.UpdatedAt), archived); err != nil {
			return fmt.Errorf("failed to insert note %d: %w", n.ID, err)
		}
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES ('last_id', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, strconv.Itoa(s.LastID)); err != nil {
		return fmt.Errorf("failed to save last id: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	r.config.Logger.Debug("notes saved", "path", r.FilePath(), "count", len(s.Notes))
	return nil
}

// Close closes the database.
func (r *Repository) Close() error {
	r.mu.Lock()
	db := r.db
	r.db = nil
	r.mu.Unlock()

	if db == nil {
		return nil
	}
	return db.Close()
}

func (r *Repository) handle() *sql.DB {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.db
}

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	File     string `json:"file"`
	ReadOnly bool   `json:"read_only"`
	Open     bool   `json:"open"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	return RepositoryState{
		File:     r.FilePath(),
		ReadOnly: r.config.ReadOnly,
		Open:     r.handle() != nil,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "sqlite"
}

var _ core.Repository = (*Repository)(nil)
var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
