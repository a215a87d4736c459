package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	. "github.com/streamingfast/cli"
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

// Version is set via ldflags at build time
var version = "dev"

var zlog, _ = logging.PackageLogger("dinit", "github.com/streamingfast/dinit/cmd/main")

func init() {
	logging.InstantiateLoggers(logging.WithDefaultLevel(zap.DPanicLevel))
}

func main() {
	Run(
		"dinit <command>",
		"Container entrypoint sequencer: boots a daemon, waits for readiness, stages tooling, execs the command",

		ConfigureVersion(version),
		ConfigureViper("DINIT"),

		// Default command (no subcommand = run)
		Execute(runE),

		Command(runE,
			"run -- <command...>",
			"Run the full entrypoint sequence, then hand off to the given command",
			Description(`
				Runs the container boot sequence:
				- Optionally patches the daemon's JSON configuration file
				- Starts the daemon in the background with merged output streams
				- Polls the readiness probe until it succeeds
				- Stages the helper tool onto the executable search path
				- Optionally loads an environment file
				- Replaces itself with the given command (or supervises it with
				  --supervise, forwarding all signals)

				All arguments after -- are forwarded verbatim as the final command.
			`),
			Flags(runFlags),
		),

		Command(waitE,
			"wait [probe-command...]",
			"Wait until the daemon readiness probe succeeds",
			Description(`
				Polls the configured readiness probe at the configured interval
				until it exits zero. A probe command given as arguments overrides
				the configured one.

				With the default policy this waits forever; bound it with
				--max-attempts or --max-wait.
			`),
			Flags(waitFlags),
		),

		Command(stageE,
			"stage",
			"Stage the helper tool onto the executable search path",
			Description(`
				Marks the configured helper file executable and creates the alias
				symlink on the executable search path. Fails if the helper file
				is missing, or if the link already exists and --link-overwrite
				was not given.
			`),
			Flags(stageFlags),
		),

		Command(configE,
			"config",
			"Print the resolved entrypoint configuration",
			Flags(func(flags *pflag.FlagSet) {
				flags.StringP("config", "c", "", "Config file (default: /etc/dinit.yaml)")
			}),
		),

		OnCommandError(func(err error) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			zlog.Debug("command error", zap.Error(err))
			os.Exit(1)
		}),
	)
}
