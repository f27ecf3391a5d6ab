package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"cardupdater/core"
	"cardupdater/handlers"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var (
		limit         int
		noteID        int64
		correlationID string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded API calls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			defer a.close()

			var calls []core.CallRecord
			switch {
			case correlationID != "":
				calls, err = a.history.CallsByCorrelationID(a.ctx(), correlationID)
			case noteID > 0:
				calls, err = a.history.CallsForNote(a.ctx(), noteID, limit)
			default:
				calls, err = a.history.RecentCalls(a.ctx(), limit)
			}
			if err != nil {
				return err
			}
			if len(calls) == 0 {
				fmt.Fprintln(a.out, "No calls recorded.")
				return nil
			}

			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tNOTE\tBUTTON\tMODE\tSTATUS\tDURATION\tERROR")
			for _, c := range calls {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
					c.CreatedAt.Local().Format(time.DateTime),
					c.NoteID,
					c.Button,
					c.Mode,
					c.Status,
					c.Duration.Round(time.Millisecond),
					handlers.TruncateText(c.ErrorMessage, 60),
				)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "maximum calls to show")
	cmd.Flags().Int64Var(&noteID, "note", 0, "only calls for this note id")
	cmd.Flags().StringVar(&correlationID, "correlation", "", "only the call with this correlation id")
	cmd.AddCommand(newHistoryPruneCmd(opts))
	return cmd
}

func newHistoryPruneCmd(opts *globalOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete history older than a number of days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.database.PruneHistory(a.ctx(), days)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %d calls older than %d days.\n", result.HistoryDeleted, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "retention in days")
	return cmd
}
