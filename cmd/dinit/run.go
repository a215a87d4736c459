package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/streamingfast/dinit"
)

// runE runs the full entrypoint sequence, then hands off to args.
func runE(cmd *cobra.Command, args []string) error {
	dinit.SetupLogging()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exitCode, err := dinit.RunEntrypoint(cfg, args)
	if err != nil {
		return err
	}

	// Only the supervise handoff comes back here: propagate the child's
	// exit code as our own, like an exec would have.
	os.Exit(exitCode)
	return nil
}
