package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"cardupdater/core"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: cannot read .env file: %v\n", err)
	}

	err := newRootCmd().ExecuteContext(context.Background())
	if err != nil && !isReported(err) {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(core.ExitCodeFor(err))
}
