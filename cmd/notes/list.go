package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/notes"
)

func newListCmd(a *app) *cobra.Command {
	var (
		all       bool
		asJSON    bool
		filterTag string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		Long:  `List notes in storage order. Archived notes are hidden unless --all is given.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(store *notes.Store) error {
				ctx := cmd.Context()

				var list []notes.Note
				if filterTag != "" {
					var err error
					if list, err = store.ListByTag(ctx, filterTag, all); err != nil {
						return err
					}
				} else {
					list = store.List(ctx, all)
				}

				if asJSON {
					return printJSON(cmd.OutOrStdout(), list)
				}
				printSummary(cmd.OutOrStdout(), list)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include archived notes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().StringVar(&filterTag, "tag", "", "Filter notes by tag glob (e.g. \"proj*\")")
	return cmd
}
