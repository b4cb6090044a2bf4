package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/notes/pkg/core"
)

const (
	// DefaultFileName is the data file inside the storage directory.
	DefaultFileName = "notes.json"
	// DefaultSystemDir holds the sidecar state and the lock file.
	DefaultSystemDir = ".notes"
	// DefaultLockTimeout bounds how long Initialize waits for the lock.
	DefaultLockTimeout = 2 * time.Second
	// CorruptSuffix is appended to a data file that failed to parse.
	CorruptSuffix = ".corrupt"
)

// Repository implements core.Repository with a single JSON file.
type Repository struct {
	Path   string
	config Config
	state  *stateFile
	lock   *fileLock

	mu            sync.RWMutex
	watcherActive bool
	lastSave      *time.Time
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path         string // storage directory
	FileName     string // e.g. "notes.json"
	SystemDir    string // e.g. ".notes"
	MustExist    bool
	ReadOnly     bool
	Lock         bool
	LockTimeout  time.Duration
	Debounce     time.Duration
	Logger       *slog.Logger
	ErrorHandler func(error) // receives watcher errors
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.FileName == "" {
		config.FileName = DefaultFileName
	}
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.LockTimeout <= 0 {
		config.LockTimeout = DefaultLockTimeout
	}
	if config.Debounce <= 0 {
		config.Debounce = 50 * time.Millisecond
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	return &Repository{
		Path:   config.Path,
		config: config,
		state:  newStateFile(filepath.Join(config.Path, config.SystemDir, "state.json")),
	}
}

// FilePath returns the location of the data file.
func (r *Repository) FilePath() string {
	return filepath.Join(r.Path, r.config.FileName)
}

func (r *Repository) lockPath() string {
	return filepath.Join(r.Path, r.config.SystemDir, "notes.lock")
}

// Initialize creates the storage directory and, if configured, takes
// the lock file. Read-only repositories touch nothing.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.config.ReadOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			if r.config.ReadOnly && !r.config.MustExist {
				return nil
			}
			return fmt.Errorf("storage path does not exist: %s", r.Path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat storage path: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("storage path is not a directory: %s", r.Path)
		}
	} else {
		if err := os.MkdirAll(r.Path, 0755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	if r.config.Lock && !r.config.ReadOnly {
		if err := os.MkdirAll(filepath.Dir(r.lockPath()), 0755); err != nil {
			return fmt.Errorf("failed to create system directory: %w", err)
		}
		lock, err := acquireLock(ctx, r.lockPath(), r.config.LockTimeout)
		if err != nil {
			return err
		}
		r.mu.Lock()
		r.lock = lock
		r.mu.Unlock()
		r.config.Logger.Debug("lock acquired", "path", lock.path)
	}

	return nil
}

// Load reads the data file. A missing file is an empty collection.
// A file that does not parse is copied aside with CorruptSuffix and
// reported as core.ErrCorrupt.
func (r *Repository) Load(ctx context.Context) (core.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return core.Snapshot{}, err
	}

	lastID, err := r.state.Load()
	if err != nil {
		r.config.Logger.Debug("ignoring sidecar state", "path", r.state.Path, "error", err)
		lastID = 0
	}

	path := r.FilePath()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return core.Snapshot{Notes: []core.Note{}, LastID: lastID}, nil
	}
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var notes []core.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		r.backupCorrupt(path, data)
		return core.Snapshot{}, fmt.Errorf("%w: %s: %v", core.ErrCorrupt, path, err)
	}
	if notes == nil {
		notes = []core.Note{}
	}

	return core.Snapshot{Notes: notes, LastID: lastID}, nil
}

func (r *Repository) backupCorrupt(path string, data []byte) {
	if r.config.ReadOnly {
		return
	}
	backup := path + CorruptSuffix
	if err := writeFileAtomic(backup, data, 0644); err != nil {
		r.config.Logger.Error("failed to back up corrupt notes file", "path", backup, "error", err)
		return
	}
	r.config.Logger.Warn("corrupt notes file backed up", "path", backup)
}

// Save records the last issued ID in the sidecar, then rewrites the
// data file with the whole collection. The sidecar goes first: the ID
// only grows, so a failure after it leaves the data file untouched.
func (r *Repository) Save(ctx context.Context, s core.Snapshot) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := core.EncodeJSON(s.Notes)
	if err != nil {
		return fmt.Errorf("failed to encode notes: %w", err)
	}

	if err := r.state.Save(s.LastID); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	path := r.FilePath()
	r.config.Logger.Debug("writing notes to disk", "path", path, "count", len(s.Notes))
	if err := writeFileAtomic(path, data, 0644); err != nil {
		return err
	}

	r.mu.Lock()
	now := time.Now()
	r.lastSave = &now
	r.mu.Unlock()
	return nil
}

// Close releases the lock file, if held.
func (r *Repository) Close() error {
	r.mu.Lock()
	lock := r.lock
	r.lock = nil
	r.mu.Unlock()

	if lock == nil {
		return nil
	}
	return lock.Release()
}

var _ core.Repository = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
