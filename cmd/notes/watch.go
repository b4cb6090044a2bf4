package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/notes"
	notessource "github.com/aretw0/notes/pkg/adapters/lifecycle"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print changes made to the notes by other processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Watching never writes, so other processes must be able to take the lock.
			a.v.Set("lock", false)

			return a.withStore(cmd, func(store *notes.Store) error {
				return watch(ctx, cmd, store)
			})
		},
	}
}

func watch(ctx context.Context, cmd *cobra.Command, store *notes.Store) error {
	src := notessource.NewSource(store)
	if err := src.Start(ctx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %d notes. Press Ctrl+C to stop.\n", len(store.List(ctx, true)))
	for e := range src.Events() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d notes)\n", e, len(store.List(ctx, true)))
	}
	return nil
}
