package dinit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartDaemonWritesLogFile(t *testing.T) {
	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "logs", "daemon.log")

	cfg := DefaultConfig()
	cfg.DaemonCommand = []string{"sh", "-c", "echo daemon-output; echo daemon-errors >&2"}
	cfg.DaemonLogFile = logFile

	pid, err := StartDaemon(cfg)
	require.NoError(t, err)
	assert.Greater(t, pid, 0)

	// The daemon runs detached, poll briefly for its output to land
	deadline := time.Now().Add(3 * time.Second)
	var content string
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(logFile)
		if err == nil {
			content = string(data)
			if strings.Contains(content, "daemon-output") && strings.Contains(content, "daemon-errors") {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
	}

	// stdout and stderr are merged into the same sink
	assert.Contains(t, content, "daemon-output")
	assert.Contains(t, content, "daemon-errors")
}

func TestStartDaemonMissingBinary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DaemonCommand = []string{"dinit-no-such-daemon"}

	_, err := StartDaemon(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start daemon")
}

func readDaemonConfig(t *testing.T, path string) map[string]interface{} {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestApplyDaemonConfigPatch(t *testing.T) {
	t.Run("no patch is a no-op", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DaemonConfigFile = filepath.Join(t.TempDir(), "daemon.json")

		require.NoError(t, ApplyDaemonConfigPatch(cfg))
		_, err := os.Stat(cfg.DaemonConfigFile)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("creates missing file", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DaemonConfigFile = filepath.Join(t.TempDir(), "etc", "docker", "daemon.json")
		cfg.DaemonConfigPatch = map[string]interface{}{
			"log-level": "warn",
		}

		require.NoError(t, ApplyDaemonConfigPatch(cfg))

		doc := readDaemonConfig(t, cfg.DaemonConfigFile)
		assert.Equal(t, "warn", doc["log-level"])
	})

	t.Run("merges into existing file", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DaemonConfigFile = filepath.Join(t.TempDir(), "daemon.json")
		existing := `{"log-level": "info", "storage-driver": "overlay2", "debug": true}`
		require.NoError(t, os.WriteFile(cfg.DaemonConfigFile, []byte(existing), 0644))

		cfg.DaemonConfigPatch = map[string]interface{}{
			"log-level": "warn", // override
			"mtu":       1400.0, // add
			"debug":     nil,    // remove, per merge patch semantics
		}

		require.NoError(t, ApplyDaemonConfigPatch(cfg))

		doc := readDaemonConfig(t, cfg.DaemonConfigFile)
		assert.Equal(t, "warn", doc["log-level"])
		assert.Equal(t, "overlay2", doc["storage-driver"])
		assert.Equal(t, 1400.0, doc["mtu"])
		assert.NotContains(t, doc, "debug")
	})

	t.Run("rejects malformed existing file", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DaemonConfigFile = filepath.Join(t.TempDir(), "daemon.json")
		require.NoError(t, os.WriteFile(cfg.DaemonConfigFile, []byte("{not json"), 0644))

		cfg.DaemonConfigPatch = map[string]interface{}{"log-level": "warn"}

		err := ApplyDaemonConfigPatch(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse daemon config")
	})
}
