package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"cardupdater/core"
	"cardupdater/core/validation"
	"cardupdater/db"
	"cardupdater/handlers"
)

func newCheckCmd(opts *globalOptions) *cobra.Command {
	var (
		offline  bool
		failFast bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate configuration, database and API access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(opts)
			if err != nil {
				return err
			}

			suite := validation.NewValidationSuite(cfg, path).
				WithOutput(cmd.OutOrStdout()).
				WithTimeout(cfg.RequestTimeout).
				WithFailFast(failFast).
				WithDatabaseCheck(func(ctx context.Context) (string, error) {
					return checkDatabase(ctx, cfg.DatabasePath)
				})
			if !offline {
				suite.WithAPICheck(func(ctx context.Context) (string, error) {
					return checkAPI(ctx, cfg)
				})
			}

			result := suite.Validate(cmd.Context())
			if result.Success {
				return nil
			}
			if err := result.GetFirstError(); err != nil {
				return reported(err)
			}
			return reported(errors.New(result.Summary()))
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the API access check")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first failed check")
	return cmd
}

// checkDatabase opens (and if needed creates) the note database.
func checkDatabase(ctx context.Context, path string) (string, error) {
	database, err := db.Open(path)
	if err != nil {
		return "", err
	}
	defer database.Close()

	notes, err := db.NewNoteRepository(database).Count(ctx)
	if err != nil {
		return "", err
	}
	calls, err := db.NewHistoryRepository(database).CountCalls(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s: %d notes, %d calls recorded", path, notes, calls), nil
}

// checkAPI lists models with the configured key and verifies that every
// button's model override is served.
func checkAPI(ctx context.Context, cfg *core.Config) (string, error) {
	client := handlers.CreateClient(cfg, cfg.GetHTTPClient())
	check, err := handlers.ValidateAPIKey(ctx, client, cfg.Buttons)
	if err != nil {
		return "", err
	}

	msg := fmt.Sprintf("%d models visible", check.ModelCount)
	var missing []string
	for model, ok := range check.HasModel {
		if !ok {
			missing = append(missing, model)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return msg, fmt.Errorf("model not available: %s", strings.Join(missing, ", "))
	}
	return msg, nil
}
