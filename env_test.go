package dinit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile(t *testing.T) {
	tempDir := t.TempDir()

	envPath := filepath.Join(tempDir, "dinit.env")
	content := `
# comment lines are ignored
DINIT_TEST_PLAIN=hello
DINIT_TEST_QUOTED="with spaces"
`
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0644))

	defer os.Unsetenv("DINIT_TEST_PLAIN")
	defer os.Unsetenv("DINIT_TEST_QUOTED")

	names, err := LoadEnvFile(envPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"DINIT_TEST_PLAIN", "DINIT_TEST_QUOTED"}, names)
	assert.Equal(t, "hello", os.Getenv("DINIT_TEST_PLAIN"))
	assert.Equal(t, "with spaces", os.Getenv("DINIT_TEST_QUOTED"))
}

func TestLoadEnvFileMissing(t *testing.T) {
	_, err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read env file")
}
