package platform

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/notes/pkg/adapters/fs"
	"github.com/aretw0/notes/pkg/adapters/sqlite"
	"github.com/aretw0/notes/pkg/core"
)

// DefaultDir is used when no storage directory is given.
const DefaultDir = "notes_data"

// New opens the store rooted at dir.
//
//	store, err := notes.Open("./notes_data", notes.WithLock(true))
func New(ctx context.Context, dir string, opts ...Option) (*core.Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if dir == "" {
		dir = DefaultDir
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	repo := o.repository
	if repo == nil {
		var err error
		if repo, err = newRepository(dir, o, logger); err != nil {
			return nil, err
		}
	}

	readOnly, _ := o.config["read_only"].(bool)
	strict, _ := o.config["strict_load"].(bool)
	policy, ok := o.config["id_policy"].(core.IDPolicy)
	if !ok {
		policy = core.IDMonotonic
	}
	clock, _ := o.config["clock"].(func() time.Time)

	return core.NewStore(ctx, repo,
		core.WithStoreLogger(logger.With("dir", dir)),
		core.WithStoreReadOnly(readOnly),
		core.WithStrictLoad(strict),
		core.WithIDPolicy(policy),
		core.WithClock(clock),
	)
}

// newRepository builds the adapter selected by name.
func newRepository(dir string, o *options, logger *slog.Logger) (core.Repository, error) {
	fileName, _ := o.config["file_name"].(string)
	readOnly, _ := o.config["read_only"].(bool)

	switch o.adapter {
	case "", "fs":
		systemDir, _ := o.config["system_dir"].(string)
		mustExist, _ := o.config["must_exist"].(bool)
		lock, _ := o.config["lock"].(bool)
		lockTimeout, _ := o.config["lock_timeout"].(time.Duration)
		errorHandler, _ := o.config["watcher_error_handler"].(func(error))

		return fs.NewRepository(fs.Config{
			Path:         dir,
			FileName:     fileName,
			SystemDir:    systemDir,
			MustExist:    mustExist,
			ReadOnly:     readOnly,
			Lock:         lock,
			LockTimeout:  lockTimeout,
			Logger:       logger,
			ErrorHandler: errorHandler,
		}), nil
	case "sqlite":
		return sqlite.NewRepository(sqlite.Config{
			Path:     dir,
			FileName: fileName,
			ReadOnly: readOnly,
			Logger:   logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}
