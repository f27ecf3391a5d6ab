package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cardupdater/core"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of cardupdater",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cardupdater %s\n", core.GetVersionInfo())
		},
	}
}
