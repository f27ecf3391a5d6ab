package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cardupdater/core"
	"cardupdater/handlers"
)

var errBulkFailures = errors.New("some notes could not be updated")

func newBulkCmd(opts *globalOptions) *cobra.Command {
	var (
		buttonName string
		noteIDs    []int64
		all        bool
		rpm        float64
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Update many notes with one button",
		Long: `Update the selected notes in order with one button. Ctrl+C stops the run
after the note in flight; a second Ctrl+C exits immediately.`,
		Example: `  cardupdater bulk --button Define --notes 1,2,3
  cardupdater bulk --button Define --all --rpm 30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			defer a.close()

			if cmd.Flags().Changed("rpm") {
				if rpm < 0 {
					return core.ErrInvalidSetting("--rpm", "must not be negative")
				}
				a.cfg.RequestsPerMinute = rpm
			}
			if jsonOut {
				a.reporter = handlers.NewConsoleReporter(cmd.ErrOrStderr())
			}

			button, err := a.cfg.FindButton(buttonName)
			if err != nil {
				return err
			}

			ids := noteIDs
			if all {
				if ids, err = a.notes.IDs(a.ctx()); err != nil {
					return err
				}
			}

			r, err := a.newRunner()
			if err != nil {
				return err
			}
			result, err := r.RunBulk(a.ctx(), button, ids)

			if jsonOut {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(result); encErr != nil {
					return fmt.Errorf("encode result: %w", encErr)
				}
			}

			switch {
			case err != nil:
				return reported(err)
			case result.Cancelled:
				a.logger.Info("Bulk run stopped early",
					zap.Int("processed", result.Processed()),
					zap.Bool("interrupted", a.shutdown.Interrupted()))
				return reported(context.Canceled)
			case result.Failed > 0:
				return reported(errBulkFailures)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&buttonName, "button", "b", "", "button name")
	cmd.Flags().Int64SliceVar(&noteIDs, "notes", nil, "comma-separated note ids, processed in the given order")
	cmd.Flags().BoolVar(&all, "all", false, "process every stored note in id order")
	cmd.Flags().Float64Var(&rpm, "rpm", 0, "requests per minute (overrides requests_per_minute; 0 disables pacing)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the result counts as JSON")
	_ = cmd.MarkFlagRequired("button")
	cmd.MarkFlagsMutuallyExclusive("notes", "all")
	cmd.MarkFlagsOneRequired("notes", "all")
	return cmd
}
