package dinit

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// HandoffMode selects how control is transferred to the container command
type HandoffMode string

const (
	// HandoffExec replaces the entrypoint process image with the command via
	// exec, preserving PID 1 so the command receives container lifecycle
	// signals directly.
	HandoffExec HandoffMode = "exec"

	// HandoffSupervise spawns the command as a child with inherited streams,
	// forwards every signal to it, and exits with the child's exit code.
	// This reproduces the PID 1 signal semantics where a true exec is not
	// wanted (or for platforms without one).
	HandoffSupervise HandoffMode = "supervise"
)

// ValidHandoffModes contains all valid handoff mode values
var ValidHandoffModes = []HandoffMode{HandoffExec, HandoffSupervise}

// ErrNoCommand is returned when the entrypoint is invoked without a command
// vector to hand off to.
var ErrNoCommand = errors.New("no command specified")

// ValidateHandoffMode checks if a handoff mode name is valid
func ValidateHandoffMode(name string) error {
	switch HandoffMode(name) {
	case HandoffExec, HandoffSupervise:
		return nil
	case "":
		return nil // Empty means use default
	default:
		return fmt.Errorf("invalid handoff mode %q, valid values: %v", name, ValidHandoffModes)
	}
}

// Handoff transfers control to the given command vector according to mode.
// In exec mode it only returns on failure. In supervise mode it returns the
// child's exit code once the child terminates.
func Handoff(mode HandoffMode, argv []string) (exitCode int, err error) {
	if mode == "" {
		mode = HandoffExec
	}

	switch mode {
	case HandoffExec:
		return 0, ExecCommand(argv)
	case HandoffSupervise:
		return Supervise(argv)
	default:
		return 0, fmt.Errorf("unknown handoff mode: %s", mode)
	}
}

// ExecCommand replaces the current process image with the given command using
// syscall.Exec. The command name is resolved against the executable search
// path, which by this point includes the freshly staged helper alias. On
// success this function never returns.
func ExecCommand(argv []string) error {
	if len(argv) == 0 {
		return ErrNoCommand
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("command %q not found: %w", argv[0], err)
	}

	zlog.Info("executing command",
		zap.String("path", path),
		zap.Strings("argv", argv))

	return syscall.Exec(path, argv, os.Environ())
}

// Supervise runs the command as a child process with inherited standard
// streams, forwarding every received signal to it, and returns the child's
// exit code once it terminates. A command that cannot be started at all (not
// found, not executable) is an error, not an exit code.
func Supervise(argv []string) (exitCode int, err error) {
	if len(argv) == 0 {
		return 0, ErrNoCommand
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start command %q: %w", argv[0], err)
	}

	zlog.Info("supervising command",
		zap.Strings("argv", argv),
		zap.Int("pid", cmd.Process.Pid))

	sigs := make(chan os.Signal, 32)
	signal.Notify(sigs)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case sig := <-sigs:
				// SIGCHLD is about the child itself, forwarding it back
				// would be meaningless noise
				if sig == syscall.SIGCHLD {
					continue
				}
				if err := cmd.Process.Signal(sig); err != nil {
					zlog.Debug("failed to forward signal",
						zap.String("signal", sig.String()),
						zap.Error(err))
				}
			case <-done:
				return
			}
		}
	}()

	waitErr := cmd.Wait()
	signal.Stop(sigs)
	close(done)

	if waitErr == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, fmt.Errorf("command failed: %w", waitErr)
}
