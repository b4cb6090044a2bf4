package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/notes"
)

// app carries the state shared by every command of one invocation.
type app struct {
	v      *viper.Viper
	logger *slog.Logger
}

// newRootCmd represents the base command when called without any subcommands
func newRootCmd() *cobra.Command {
	a := &app{
		v:      viper.New(),
		logger: slog.New(slog.DiscardHandler),
	}

	rootCmd := &cobra.Command{
		Use:   "notes",
		Short: "A small note keeper backed by a JSON file",
		Long: `notes keeps titled notes with tags in a single JSON file (or a SQLite database).
Every change rewrites the whole collection atomically.

Settings are read from flags, NOTES_* environment variables and an optional notes.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("dir", notes.DefaultDir, "Storage directory")
	flags.String("adapter", "fs", "Storage adapter (fs, sqlite)")
	flags.Bool("legacy-ids", false, "Assign IDs as count+1 like older tools did")
	flags.Bool("lock", true, "Guard the storage directory with a lock file")
	flags.Duration("lock-timeout", 2*time.Second, "How long to wait for the lock file")
	flags.Bool("read-only", false, "Never write to the storage directory")
	flags.String("config", "", "Config file (default ./notes.yaml)")
	flags.BoolP("verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		newCreateCmd(a),
		newGetCmd(a),
		newListCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newArchiveCmd(a),
		newSearchCmd(a),
		newExportCmd(a),
		newWatchCmd(a),
		newStatusCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute builds the command tree and runs it.
// This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fatal("Error", err)
	}
}

// setup resolves configuration (flag > env > config file > default)
// and installs the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	a.v.SetEnvPrefix("NOTES")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
	} else {
		a.v.SetConfigName("notes")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	level := slog.LevelInfo
	if a.v.GetBool("verbose") {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
	slog.SetDefault(a.logger)

	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("config loaded", "file", used)
	}
	return nil
}

// open builds the store from the resolved configuration.
func (a *app) open(cmd *cobra.Command) (*notes.Store, error) {
	opts := []notes.Option{
		notes.WithLogger(a.logger),
		notes.WithAdapter(a.v.GetString("adapter")),
		notes.WithReadOnly(a.v.GetBool("read-only")),
		notes.WithLock(a.v.GetBool("lock")),
		notes.WithLockTimeout(a.v.GetDuration("lock-timeout")),
	}
	if a.v.GetBool("legacy-ids") {
		opts = append(opts, notes.WithLegacyIDs())
	}

	store, err := notes.OpenContext(cmd.Context(), a.v.GetString("dir"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open notes: %w", err)
	}
	if err := store.LoadErr(); err != nil {
		a.logger.Warn("starting with an empty collection", "error", err)
	}
	return store, nil
}

// withStore opens the store, runs fn and closes the store again.
func (a *app) withStore(cmd *cobra.Command, fn func(*notes.Store) error) error {
	store, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.logger.Warn("failed to close store", "error", err)
		}
	}()
	return fn(store)
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid note id %q", arg)
	}
	return id, nil
}
