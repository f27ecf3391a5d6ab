package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cardupdater/handlers"
	"cardupdater/notes"
)

func newNotesCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Import and inspect stored notes",
	}
	cmd.AddCommand(
		newNotesImportCmd(opts),
		newNotesListCmd(opts),
		newNotesShowCmd(opts),
	)
	return cmd
}

func newNotesImportCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import notes from a JSON or YAML file",
		Long: `Import notes from a JSON or YAML list. Each entry has an id and an ordered
mapping of field names to values. Existing notes with the same id are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := notes.ParseFile(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.notes.SaveAll(a.ctx(), parsed); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Imported %d notes.\n", len(parsed))
			return nil
		},
	}
}

func newNotesListCmd(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			defer a.close()

			list, err := a.notes.List(a.ctx(), limit)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(a.out, "No notes stored.")
				return nil
			}

			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			for _, n := range list {
				fmt.Fprintf(tw, "%d\t%s\n", n.ID, handlers.TruncateText(fieldSummary(n), 80))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum notes to list (0 for all)")
	return cmd
}

func newNotesShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show every field of one note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			defer a.close()

			note, err := a.notes.Get(a.ctx(), id)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Note %d\n", note.ID)
			for _, f := range note.Fields {
				fmt.Fprintf(a.out, "  %s: %s\n", f.Name, f.Value)
			}
			return nil
		},
	}
}

// fieldSummary renders "Front=猫 | Back=cat" on one line.
func fieldSummary(n *notes.Note) string {
	parts := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		parts[i] = f.Name + "=" + strings.Join(strings.Fields(f.Value), " ")
	}
	return strings.Join(parts, " | ")
}

func parseNoteID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", s)
	}
	return id, nil
}
