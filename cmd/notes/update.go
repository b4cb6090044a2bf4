package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notes"
)

func newUpdateCmd(a *app) *cobra.Command {
	var (
		title     string
		content   string
		tags      []string
		clearTags bool
	)

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Change fields of a note",
		Long:  `Change the fields given as flags. Fields without a flag keep their value.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("tag") && clearTags {
				return errors.New("--tag and --clear-tags are mutually exclusive")
			}

			var changes []notes.Change
			if flags.Changed("title") {
				changes = append(changes, notes.Title(title))
			}
			if flags.Changed("content") {
				changes = append(changes, notes.Content(content))
			}
			if flags.Changed("tag") {
				changes = append(changes, notes.Tags(tags...))
			}
			if clearTags {
				changes = append(changes, notes.Tags())
			}

			return a.withStore(cmd, func(store *notes.Store) error {
				n, err := store.Update(cmd.Context(), id, changes...)
				if err != nil {
					return fmt.Errorf("failed to update note: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Note updated: %d\n", n.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "New content")
	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "Replace tags (repeatable)")
	cmd.Flags().BoolVar(&clearTags, "clear-tags", false, "Remove every tag")
	return cmd
}
