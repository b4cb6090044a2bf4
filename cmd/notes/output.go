package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/notes"
	"github.com/aretw0/notes/pkg/core"
)

// printNote writes a note in the detailed form used by get.
func printNote(w io.Writer, n notes.Note) {
	fmt.Fprintf(w, "ID:       %d\n", n.ID)
	fmt.Fprintf(w, "Title:    %s\n", n.Title)
	fmt.Fprintf(w, "Tags:     %s\n", strings.Join(n.Tags, ", "))
	fmt.Fprintf(w, "Created:  %s\n", core.FormatTimestamp(n.CreatedAt))
	fmt.Fprintf(w, "Updated:  %s\n", core.FormatTimestamp(n.UpdatedAt))
	fmt.Fprintf(w, "Archived: %t\n", n.IsArchived)
	fmt.Fprintf(w, "\n%s\n", n.Content)
}

// printSummary writes one line per note.
func printSummary(w io.Writer, list []notes.Note) {
	for _, n := range list {
		line := fmt.Sprintf("%d\t%s", n.ID, n.Title)
		if len(n.Tags) > 0 {
			line += fmt.Sprintf("\t[%s]", strings.Join(n.Tags, ", "))
		}
		if n.IsArchived {
			line += "\t(archived)"
		}
		fmt.Fprintln(w, line)
	}
}

func printJSON(w io.Writer, list []notes.Note) error {
	data, err := core.EncodeJSON(list)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = w.Write(data)
	return err
}
