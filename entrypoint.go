package dinit

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"
)

// entrypointLogFile is the path for entrypoint debug logging
const entrypointLogFile = "/tmp/dinit-entrypoint.log"

// MarkerFile is written right before handoff so processes inside the
// container can verify the boot sequence completed.
const MarkerFile = "/tmp/dinit-ran"

// elog is the entrypoint file logger (initialized by initEntrypointLog)
var elog *slog.Logger

// initEntrypointLog initializes the file logger for entrypoint debugging.
// Logs are appended to /tmp/dinit-entrypoint.log
func initEntrypointLog() func() {
	f, err := os.OpenFile(entrypointLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		// Can't log to file, use a no-op logger
		elog = slog.New(slog.NewTextHandler(io.Discard, nil))
		return func() {}
	}

	// Write separator for new run
	fmt.Fprintf(f, "\n========== dinit entrypoint new run at %s ==========\n", time.Now().Format(time.RFC3339))

	elog = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	return func() { f.Close() }
}

// logEnvironment logs relevant environment variables for debugging
func logEnvironment() {
	env := os.Environ()
	sort.Strings(env)

	interesting := []string{
		"HOME", "USER", "PWD", "SHELL", "PATH",
		"DOCKER_HOST", "DINIT_CONFIG",
	}

	elog.Info("environment snapshot")
	for _, key := range interesting {
		if val := os.Getenv(key); val != "" {
			elog.Debug("env", "key", key, "value", val)
		}
	}

	elog.Debug("full environment", "count", len(env))
	for _, e := range env {
		elog.Debug("env.full", "entry", e)
	}
}

// RunEntrypoint executes the container boot sequence: patch and start the
// daemon, wait for it to answer the readiness probe, stage the helper tool,
// load the optional environment file, then hand control to args.
//
// In exec mode the call never returns on success (the process image is
// replaced). In supervise mode it returns the child's exit code once the
// supervised command terminates. Any failure before handoff aborts the
// sequence; only the readiness wait retries.
func RunEntrypoint(cfg *Config, args []string) (exitCode int, err error) {
	// Initialize file logger (note: log file won't be closed when we exec)
	_ = initEntrypointLog()

	elog.Info("=== entrypoint starting ===", "args", args, "handoff", string(cfg.Handoff))
	logEnvironment()

	zlog.Info("running dinit entrypoint")

	if len(args) == 0 {
		// Fail before spawning anything rather than after the daemon is up
		elog.Error("no command supplied")
		return 0, ErrNoCommand
	}

	if err := ApplyDaemonConfigPatch(cfg); err != nil {
		elog.Error("daemon config patch failed", "error", err)
		return 0, err
	}

	pid, err := StartDaemon(cfg)
	if err != nil {
		elog.Error("daemon start failed", "error", err)
		return 0, err
	}
	elog.Info("daemon started", "pid", pid, "command", cfg.DaemonCommand)

	waiter := &Waiter{
		Prober: &CommandProber{Command: cfg.ProbeCommand},
		Policy: cfg.RetryPolicy(),
	}
	if err := waiter.Wait(); err != nil {
		elog.Error("readiness wait failed", "error", err)
		return 0, err
	}
	elog.Info("daemon ready")

	if err := StageHelper(cfg.HelperPath, cfg.LinkPath, cfg.LinkOverwrite); err != nil {
		elog.Error("helper staging failed", "error", err)
		return 0, err
	}
	elog.Info("helper staged", "helper", cfg.HelperPath, "link", cfg.LinkPath)

	if cfg.EnvFile != "" {
		names, err := LoadEnvFile(cfg.EnvFile)
		if err != nil {
			elog.Error("env file load failed", "error", err)
			return 0, err
		}
		elog.Info("environment file loaded", "path", cfg.EnvFile, "names", names)
	}

	writeMarkerFile()

	elog.Info("=== setup complete, handing off ===", "argv", args)

	return Handoff(cfg.Handoff, args)
}

// writeMarkerFile records that the boot sequence completed. Best effort, a
// read-only /tmp must not block the handoff.
func writeMarkerFile() {
	content := fmt.Sprintf("dinit entrypoint completed at %s\n", time.Now().Format(time.RFC3339))
	if err := os.WriteFile(MarkerFile, []byte(content), 0644); err != nil {
		zlog.Debug("failed to write marker file", zap.Error(err))
	}
}
