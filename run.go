package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cardupdater/notes"
	"cardupdater/runner"
)

func newRunCmd(opts *globalOptions) *cobra.Command {
	var (
		buttonName string
		noteID     int64
	)

	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Update one note with a button",
		Example: `  cardupdater run --button Define --note 1`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			defer a.close()

			button, err := a.cfg.FindButton(buttonName)
			if err != nil {
				return err
			}

			// An unknown id behaves like an empty editor.
			note, err := a.notes.Get(a.ctx(), noteID)
			if err != nil && !errors.Is(err, notes.ErrNotFound) {
				return err
			}

			r, err := a.newRunner()
			if err != nil {
				return err
			}
			state, err := r.Run(a.ctx(), button, runner.StaticNote{Note: note})
			a.logger.Debug("Single update finished",
				zap.Int64("note_id", noteID),
				zap.Stringer("state", state))
			return reported(err)
		},
	}
	cmd.Flags().StringVarP(&buttonName, "button", "b", "", "button name")
	cmd.Flags().Int64VarP(&noteID, "note", "n", 0, "note id")
	_ = cmd.MarkFlagRequired("button")
	_ = cmd.MarkFlagRequired("note")
	return cmd
}
