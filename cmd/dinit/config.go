package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/streamingfast/dinit"
	"gopkg.in/yaml.v3"
)

// configE prints the resolved configuration in YAML form.
func configE(cmd *cobra.Command, args []string) error {
	dinit.SetupLogging()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	cmd.Print(string(out))
	return nil
}
