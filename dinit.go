// Package dinit is a container entrypoint sequencer: it boots a background
// daemon, waits for it to answer a readiness probe, stages helper tooling onto
// the executable search path, then replaces itself with the container command.
package dinit

import (
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

var zlog, _ = logging.PackageLogger("dinit", "github.com/streamingfast/dinit")

// SetupLogging (re)configures the shared loggers for command execution.
// Verbosity is driven by the DLOG environment variable, the default keeps the
// entrypoint quiet so daemon and command output stay readable.
func SetupLogging() {
	logging.InstantiateLoggers(logging.WithDefaultLevel(zap.WarnLevel))
}
