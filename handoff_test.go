package dinit

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHandoffMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		wantErr bool
	}{
		{name: "exec", mode: "exec"},
		{name: "supervise", mode: "supervise"},
		{name: "empty means default", mode: ""},
		{name: "unknown", mode: "fork", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHandoffMode(tt.mode)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid handoff mode")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestExecCommandErrors(t *testing.T) {
	t.Run("empty argv", func(t *testing.T) {
		err := ExecCommand(nil)
		require.ErrorIs(t, err, ErrNoCommand)
	})

	t.Run("command not found", func(t *testing.T) {
		err := ExecCommand([]string{"dinit-no-such-command"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestSupervise(t *testing.T) {
	t.Run("clean exit", func(t *testing.T) {
		code, err := Supervise([]string{"true"})
		require.NoError(t, err)
		assert.Equal(t, 0, code)
	})

	t.Run("exit code propagated", func(t *testing.T) {
		code, err := Supervise([]string{"sh", "-c", "exit 7"})
		require.NoError(t, err)
		assert.Equal(t, 7, code)
	})

	t.Run("empty argv", func(t *testing.T) {
		_, err := Supervise(nil)
		require.ErrorIs(t, err, ErrNoCommand)
	})

	t.Run("command not found", func(t *testing.T) {
		_, err := Supervise([]string{"dinit-no-such-command"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to start command")
	})
}

func TestSuperviseForwardsSignals(t *testing.T) {
	// The child traps TERM and exits 42; sending TERM to ourselves must
	// reach the child through the forwarding loop and come back as its exit
	// code, the way a PID 1 shim behaves.
	go func() {
		time.Sleep(300 * time.Millisecond)
		syscall.Kill(os.Getpid(), syscall.SIGTERM)
	}()

	code, err := Supervise([]string{"sh", "-c", "trap 'exit 42' TERM; while true; do sleep 0.05; done"})
	require.NoError(t, err)
	assert.Equal(t, 42, code)
}

func TestHandoffDispatch(t *testing.T) {
	t.Run("supervise mode", func(t *testing.T) {
		code, err := Handoff(HandoffSupervise, []string{"sh", "-c", "exit 5"})
		require.NoError(t, err)
		assert.Equal(t, 5, code)
	})

	t.Run("empty mode defaults to exec", func(t *testing.T) {
		// Exec with an empty argv fails before any process replacement
		_, err := Handoff("", nil)
		require.ErrorIs(t, err, ErrNoCommand)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := Handoff("fork", []string{"true"})
		require.Error(t, err)
	})
}
