package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/notes"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every note",
		Long:  `Export renders the whole collection, archived notes included, as json, txt or yaml.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case notes.FormatJSON, notes.FormatTXT, notes.FormatYAML:
			default:
				return fmt.Errorf("unsupported format %q (want json, txt or yaml)", format)
			}

			return a.withStore(cmd, func(store *notes.Store) error {
				out, err := store.Export(cmd.Context(), format)
				if err != nil {
					return err
				}

				if output == "" {
					fmt.Fprintln(cmd.OutOrStdout(), out)
					return nil
				}
				if err := os.WriteFile(output, []byte(out+"\n"), 0644); err != nil {
					return fmt.Errorf("failed to write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", notes.FormatJSON, "Output format (json, txt, yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}
