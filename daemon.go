package dinit

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/kaptinlin/jsonmerge"
	"go.uber.org/zap"
)

// StartDaemon launches the configured daemon command as a detached background
// child. The daemon's stdout and stderr are merged into the configured log
// file, or into the entrypoint's own streams when no log file is set. The
// daemon is never waited on: it keeps running on its own until the container
// stops, and is intentionally left unreaped across the final exec.
//
// A daemon binary that cannot be launched at all surfaces as an immediate
// error. A daemon that launches but never becomes ready manifests as an
// unbounded readiness wait under the default retry policy.
func StartDaemon(cfg *Config) (pid int, err error) {
	cmd := exec.Command(cfg.DaemonCommand[0], cfg.DaemonCommand[1:]...)

	if cfg.DaemonLogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DaemonLogFile), 0755); err != nil {
			return 0, fmt.Errorf("failed to create daemon log directory: %w", err)
		}
		sink, err := os.OpenFile(cfg.DaemonLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return 0, fmt.Errorf("failed to open daemon log file: %w", err)
		}
		// The descriptor is inherited by the daemon; closing our copy after
		// Start does not affect the child.
		defer sink.Close()
		cmd.Stdout = sink
		cmd.Stderr = sink
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start daemon %q: %w", cfg.DaemonCommand[0], err)
	}

	pid = cmd.Process.Pid

	// Release the handle, the daemon outlives this process and is never joined.
	if err := cmd.Process.Release(); err != nil {
		zlog.Warn("failed to release daemon process handle", zap.Error(err))
	}

	zlog.Info("daemon started",
		zap.Strings("command", cfg.DaemonCommand),
		zap.Int("pid", pid),
		zap.String("log_file", cfg.DaemonLogFile))

	return pid, nil
}

// ApplyDaemonConfigPatch merges the configured JSON patch into the daemon's
// configuration file before the daemon starts. A missing file is treated as
// an empty document. No-op when no patch is configured.
func ApplyDaemonConfigPatch(cfg *Config) error {
	if len(cfg.DaemonConfigPatch) == 0 {
		return nil
	}

	current := map[string]interface{}{}
	data, err := os.ReadFile(cfg.DaemonConfigFile)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read daemon config %s: %w", cfg.DaemonConfigFile, err)
		}
	} else if len(data) > 0 {
		if err := json.Unmarshal(data, &current); err != nil {
			return fmt.Errorf("failed to parse daemon config %s: %w", cfg.DaemonConfigFile, err)
		}
	}

	result, err := jsonmerge.Merge(current, cfg.DaemonConfigPatch)
	if err != nil {
		return fmt.Errorf("failed to merge daemon config patch: %w", err)
	}

	merged, err := json.MarshalIndent(result.Doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal merged daemon config: %w", err)
	}
	merged = append(merged, '\n')

	if err := os.MkdirAll(filepath.Dir(cfg.DaemonConfigFile), 0755); err != nil {
		return fmt.Errorf("failed to create daemon config directory: %w", err)
	}
	if err := os.WriteFile(cfg.DaemonConfigFile, merged, 0644); err != nil {
		return fmt.Errorf("failed to write daemon config %s: %w", cfg.DaemonConfigFile, err)
	}

	zlog.Info("applied daemon config patch",
		zap.String("path", cfg.DaemonConfigFile),
		zap.Int("keys", len(cfg.DaemonConfigPatch)))

	return nil
}
