package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notes"
)

func newArchiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "archive [id]",
		Short: "Archive a note",
		Long:  `Archive hides a note from list. Archived notes still show up in search and export.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return a.withStore(cmd, func(store *notes.Store) error {
				n, err := store.Archive(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("failed to archive note: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Note archived: %d\n", n.ID)
				return nil
			})
		},
	}
}
