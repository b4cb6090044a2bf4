package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/notes"
)

func newSearchCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search [keyword]",
		Short: "Find notes by keyword",
		Long:  `Search matches the keyword against title, content and tags, ignoring case. Archived notes are included.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(store *notes.Store) error {
				found := store.Search(cmd.Context(), args[0])
				if asJSON {
					return printJSON(cmd.OutOrStdout(), found)
				}
				printSummary(cmd.OutOrStdout(), found)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}
