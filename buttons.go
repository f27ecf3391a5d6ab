package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

const msgNoButtons = "No buttons configured"

func newButtonsCmd(opts *globalOptions) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "buttons",
		Short: "List configured buttons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(cfg.Buttons) == 0 {
				fmt.Fprintln(out, msgNoButtons)
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for i, b := range cfg.Buttons {
				label := b.BulkLabel(i)
				tip := label
				if strings.TrimSpace(b.Tooltip) != "" {
					tip = b.Tip()
				}
				fmt.Fprintf(tw, "%s\t%s\n", label, tip)
				if verbose {
					version := b.EffectiveVersion()
					if version == "" {
						version = "latest"
					}
					fmt.Fprintf(tw, "  prompt\t%s (%s)\n", b.TrimmedPromptID(), version)
					if model := b.TrimmedModel(); model != "" {
						fmt.Fprintf(tw, "  model\t%s\n", model)
					}
					fmt.Fprintf(tw, "  fields\t%s\n", strings.Join(b.FieldMap.NoteFields(), ", "))
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show prompt, model and target fields")
	return cmd
}
