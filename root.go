package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. Each call returns a fresh tree so
// flags do not leak between invocations.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "cardupdater",
		Short: "Fill flashcard note fields from stored OpenAI prompts",
		Long: `cardupdater sends a note's fields to a stored OpenAI prompt and writes the
JSON result back into the note, one note at a time or in bulk.

Buttons are configured in a JSON or YAML file. Each button names a stored
prompt, an optional prompt template expanded with {{Field}} placeholders, and
a field_map routing result keys into note fields.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $CARDUPDATER_CONFIG or "+defaultConfigPath+")")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "note database (default $CARDUPDATER_DB or cardupdater.db)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "debug logging and HTTP error bodies in warnings")

	root.AddCommand(
		newButtonsCmd(opts),
		newRunCmd(opts),
		newBulkCmd(opts),
		newNotesCmd(opts),
		newHistoryCmd(opts),
		newCheckCmd(opts),
		newVersionCmd(),
	)
	return root
}
