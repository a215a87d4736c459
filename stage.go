package dinit

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// StageHelper makes the helper file executable, then symlinks it under its
// alias name on the executable search path.
//
// The helper must already exist: a missing file aborts the sequence before
// handoff. Link creation is not idempotent unless overwrite is set, so
// re-running the entrypoint against leftovers from a prior run fails at this
// step; that matches the historical behavior and keeps stale links visible
// instead of silently replaced.
func StageHelper(helperPath, linkPath string, overwrite bool) error {
	if err := os.Chmod(helperPath, 0755); err != nil {
		return fmt.Errorf("failed to make helper executable: %w", err)
	}

	if overwrite {
		if err := os.Remove(linkPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove existing link %s: %w", linkPath, err)
		}
	}

	if err := os.Symlink(helperPath, linkPath); err != nil {
		return fmt.Errorf("failed to link helper: %w", err)
	}

	zlog.Info("staged helper tool",
		zap.String("helper", helperPath),
		zap.String("link", linkPath))

	return nil
}
