package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notes"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a note",
		Long:  `Delete permanently removes every note with the given ID. Deleting a missing ID is not an error.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return a.withStore(cmd, func(store *notes.Store) error {
				if _, err := store.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to delete note: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Note deleted: %d\n", id)
				return nil
			})
		},
	}
}
