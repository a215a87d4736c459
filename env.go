package dinit

import (
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// LoadEnvFile reads a dotenv-style file and sets every entry in the current
// process environment so the exec'd (or supervised) command inherits it.
// Returns the names that were set, sorted, mostly for logging and tests.
func LoadEnvFile(path string) ([]string, error) {
	envs, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	names := make([]string, 0, len(envs))
	for key, value := range envs {
		if err := os.Setenv(key, value); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", key, err)
		}
		names = append(names, key)
	}
	sort.Strings(names)

	zlog.Info("loaded environment file",
		zap.String("path", path),
		zap.Strings("names", names))

	return names, nil
}
