package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notes"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the store state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Reading state never needs the lock.
			a.v.Set("lock", false)

			return a.withStore(cmd, func(store *notes.Store) error {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(store.State()); err != nil {
					return fmt.Errorf("failed to encode state: %w", err)
				}
				return nil
			})
		},
	}
}
