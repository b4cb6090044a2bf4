package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notes"
)

func newCreateCmd(a *app) *cobra.Command {
	var (
		content string
		tags    []string
	)

	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a note",
		Long:  `Create a note with the given title. Repeat --tag to attach several tags.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(store *notes.Store) error {
				n, err := store.Create(cmd.Context(), args[0], content, tags...)
				if err != nil {
					return fmt.Errorf("failed to create note: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Note created: %d\n", n.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&content, "content", "c", "", "Note content")
	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "Tag (repeatable)")
	return cmd
}
