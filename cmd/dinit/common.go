package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/streamingfast/dinit"
)

// runFlags declares the full flag set of the run (and default) command.
func runFlags(flags *pflag.FlagSet) {
	flags.StringP("config", "c", "", "Config file (default: /etc/dinit.yaml)")
	waitOverrideFlags(flags)
	stageOverrideFlags(flags)
	flags.String("daemon-log", "", "File receiving the daemon's merged output (default: inherit streams)")
	flags.String("env-file", "", "Dotenv file loaded into the environment before handoff")
	flags.Bool("supervise", false, "Supervise the command as a child instead of exec'ing it")
}

// waitFlags declares the flag set of the wait command.
func waitFlags(flags *pflag.FlagSet) {
	flags.StringP("config", "c", "", "Config file (default: /etc/dinit.yaml)")
	waitOverrideFlags(flags)
}

// stageFlags declares the flag set of the stage command.
func stageFlags(flags *pflag.FlagSet) {
	flags.StringP("config", "c", "", "Config file (default: /etc/dinit.yaml)")
	stageOverrideFlags(flags)
}

func waitOverrideFlags(flags *pflag.FlagSet) {
	flags.Duration("interval", 0, "Delay between two probe attempts (default: 1s)")
	flags.Int("max-attempts", 0, "Give up after this many failed probes (0 = retry forever)")
	flags.Duration("max-wait", 0, "Give up after this much time waiting (0 = wait forever)")
}

func stageOverrideFlags(flags *pflag.FlagSet) {
	flags.String("helper", "", "Helper file to stage (default: from config)")
	flags.String("link", "", "Alias symlink to create (default: from config)")
	flags.Bool("link-overwrite", false, "Replace the alias link if it already exists")
}

// resolveConfig loads the config file named by --config (or the default
// location) and overlays any override flag the command defines and the user
// changed. Flags a command does not declare are simply skipped.
func resolveConfig(cmd *cobra.Command) (*dinit.Config, error) {
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	cfg, err := dinit.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if flags.Changed("interval") {
		v, _ := flags.GetDuration("interval")
		cfg.PollInterval = dinit.Duration(v)
	}
	if flags.Changed("max-attempts") {
		v, _ := flags.GetInt("max-attempts")
		cfg.MaxAttempts = v
	}
	if flags.Changed("max-wait") {
		v, _ := flags.GetDuration("max-wait")
		cfg.MaxWait = dinit.Duration(v)
	}
	if flags.Changed("helper") {
		cfg.HelperPath, _ = flags.GetString("helper")
	}
	if flags.Changed("link") {
		cfg.LinkPath, _ = flags.GetString("link")
	}
	if flags.Changed("link-overwrite") {
		cfg.LinkOverwrite, _ = flags.GetBool("link-overwrite")
	}
	if flags.Changed("daemon-log") {
		cfg.DaemonLogFile, _ = flags.GetString("daemon-log")
	}
	if flags.Changed("env-file") {
		cfg.EnvFile, _ = flags.GetString("env-file")
	}
	if flags.Changed("supervise") {
		if supervise, _ := flags.GetBool("supervise"); supervise {
			cfg.Handoff = dinit.HandoffSupervise
		} else {
			cfg.Handoff = dinit.HandoffExec
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
