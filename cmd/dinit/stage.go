package main

import (
	"github.com/spf13/cobra"
	"github.com/streamingfast/dinit"
)

// stageE stages the helper tool onto the executable search path.
func stageE(cmd *cobra.Command, args []string) error {
	dinit.SetupLogging()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	if err := dinit.StageHelper(cfg.HelperPath, cfg.LinkPath, cfg.LinkOverwrite); err != nil {
		return err
	}

	cmd.Printf("Staged %s -> %s\n", cfg.LinkPath, cfg.HelperPath)
	return nil
}
