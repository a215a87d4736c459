package dinit

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Prober checks whether the daemon answers its status command. A nil return
// means the daemon is ready.
type Prober interface {
	Probe() error
}

// CommandProber probes the daemon by running a status command, discarding its
// output. Any non-zero exit (or failure to launch the command at all) counts
// as "not ready yet".
type CommandProber struct {
	// Command is the probe argv, e.g. ["docker", "stats", "--no-stream"]
	Command []string
}

// Probe runs the status command once. Output streams are left unconnected so
// the probe stays silent on the entrypoint's own streams.
func (p *CommandProber) Probe() error {
	if len(p.Command) == 0 {
		return fmt.Errorf("no probe command configured")
	}

	cmd := exec.Command(p.Command[0], p.Command[1:]...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("probe %q: %w", strings.Join(p.Command, " "), err)
	}
	return nil
}

// RetryPolicy bounds the readiness wait. The zero bounds reproduce the
// original entrypoint behavior: retry forever at a fixed interval.
type RetryPolicy struct {
	// Interval is the fixed delay between two probe attempts
	Interval time.Duration

	// MaxAttempts stops the wait after this many failed probes, 0 means unbounded
	MaxAttempts int

	// MaxWait stops the wait once this much time has elapsed, 0 means unbounded
	MaxWait time.Duration
}

// Waiter blocks until the daemon readiness probe succeeds or the retry policy
// is exhausted.
type Waiter struct {
	Prober Prober
	Policy RetryPolicy

	// Out receives the human-readable waiting messages, one per failed
	// probe. Defaults to os.Stdout.
	Out io.Writer

	// sleep is replaced in tests to avoid real delays
	sleep func(time.Duration)
}

// Wait probes the daemon at the policy's interval until a probe succeeds.
// The probe is always invoked at least once. With a bounded policy it returns
// an error wrapping the last probe failure once the bound is reached; with
// the default unbounded policy it never returns a readiness error.
func (w *Waiter) Wait() error {
	out := w.Out
	if out == nil {
		out = os.Stdout
	}
	sleep := w.sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	interval := w.Policy.Interval
	if interval <= 0 {
		interval = 1 * time.Second
	}

	start := time.Now()
	for attempt := 1; ; attempt++ {
		err := w.Prober.Probe()
		if err == nil {
			zlog.Info("daemon is ready", zap.Int("attempts", attempt))
			return nil
		}

		fmt.Fprintln(out, "Waiting for daemon to be ready...")
		zlog.Debug("daemon not ready yet",
			zap.Int("attempt", attempt),
			zap.Error(err))

		if w.Policy.MaxAttempts > 0 && attempt >= w.Policy.MaxAttempts {
			return fmt.Errorf("daemon not ready after %d attempts: %w", attempt, err)
		}
		if w.Policy.MaxWait > 0 && time.Since(start)+interval > w.Policy.MaxWait {
			return fmt.Errorf("daemon not ready after %s: %w", time.Since(start).Round(time.Millisecond), err)
		}

		sleep(interval)
	}
}
