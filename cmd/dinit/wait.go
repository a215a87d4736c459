package main

import (
	"github.com/spf13/cobra"
	"github.com/streamingfast/dinit"
)

// waitE blocks until the daemon readiness probe succeeds.
func waitE(cmd *cobra.Command, args []string) error {
	dinit.SetupLogging()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	probe := cfg.ProbeCommand
	if len(args) > 0 {
		probe = args
	}

	waiter := &dinit.Waiter{
		Prober: &dinit.CommandProber{Command: probe},
		Policy: cfg.RetryPolicy(),
		Out:    cmd.OutOrStdout(),
	}

	if err := waiter.Wait(); err != nil {
		return err
	}

	cmd.Println("Daemon is ready")
	return nil
}
