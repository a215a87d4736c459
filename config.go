package dinit

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is where the entrypoint looks for its configuration when
// no --config flag is given. Absent file means pure defaults.
const DefaultConfigFile = "/etc/dinit.yaml"

// Duration wraps time.Duration so config values can be written as "1s", "500ms", etc.
type Duration time.Duration

// UnmarshalYAML parses a duration from either a Go duration string or a bare
// number of seconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var asString string
	if err := node.Decode(&asString); err == nil {
		parsed, err := time.ParseDuration(asString)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", asString, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var asSeconds float64
	if err := node.Decode(&asSeconds); err != nil {
		return fmt.Errorf("invalid duration value")
	}
	*d = Duration(time.Duration(asSeconds * float64(time.Second)))
	return nil
}

// MarshalYAML renders the duration in Go string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config holds every knob of the entrypoint sequence, so behavior can be
// adjusted (and tested) without rebuilding the image.
type Config struct {
	// DaemonCommand is the argv of the background daemon to launch
	DaemonCommand []string `yaml:"daemon_command"`

	// DaemonLogFile receives the daemon's merged stdout+stderr. Empty means
	// the daemon inherits the entrypoint's own streams.
	DaemonLogFile string `yaml:"daemon_log_file"`

	// DaemonConfigFile is the daemon's JSON configuration file location
	DaemonConfigFile string `yaml:"daemon_config_file"`

	// DaemonConfigPatch is a JSON merge patch (RFC 7386) applied to
	// DaemonConfigFile before the daemon starts. Empty means no touch.
	DaemonConfigPatch map[string]interface{} `yaml:"daemon_config_patch,omitempty"`

	// ProbeCommand is the argv of the readiness probe. The daemon is
	// considered ready once this command exits zero.
	ProbeCommand []string `yaml:"probe_command"`

	// PollInterval is the fixed delay between two probe attempts
	PollInterval Duration `yaml:"poll_interval"`

	// MaxAttempts bounds the number of probe attempts, 0 means unbounded
	MaxAttempts int `yaml:"max_attempts"`

	// MaxWait bounds the total time spent waiting, 0 means unbounded
	MaxWait Duration `yaml:"max_wait"`

	// HelperPath is the helper file to stage onto the search path
	HelperPath string `yaml:"helper_path"`

	// LinkPath is the alias symlink created for the helper
	LinkPath string `yaml:"link_path"`

	// LinkOverwrite replaces an existing link instead of failing on it
	LinkOverwrite bool `yaml:"link_overwrite"`

	// EnvFile is an optional dotenv-style file loaded into the process
	// environment right before handoff. Empty means skip.
	EnvFile string `yaml:"env_file"`

	// Handoff selects how control is transferred to the container command,
	// see ValidHandoffModes.
	Handoff HandoffMode `yaml:"handoff"`
}

// DefaultConfig returns the stock docker-in-docker boot configuration: start
// dockerd, probe it with a one-shot stats listing every second forever, stage
// the code navigator as "nav", then exec.
func DefaultConfig() *Config {
	return &Config{
		DaemonCommand:    []string{"dockerd"},
		DaemonConfigFile: "/etc/docker/daemon.json",
		ProbeCommand:     []string{"docker", "stats", "--no-stream"},
		PollInterval:     Duration(1 * time.Second),
		HelperPath:       "/opt/tools/code_navigator.py",
		LinkPath:         "/usr/local/bin/nav",
		Handoff:          HandoffExec,
	}
}

// LoadConfig loads the entrypoint configuration from the given YAML file,
// overlaying it on the defaults. An empty path means DefaultConfigFile; a
// missing file at the default location yields pure defaults, while a missing
// file at an explicitly requested location is an error.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			zlog.Debug("no config file, using defaults", zap.String("path", path))
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	zlog.Debug("loaded config file", zap.String("path", path))
	return config, nil
}

// Validate checks the configuration for values the sequence cannot run with.
func (c *Config) Validate() error {
	if len(c.DaemonCommand) == 0 {
		return fmt.Errorf("daemon_command must not be empty")
	}
	if len(c.ProbeCommand) == 0 {
		return fmt.Errorf("probe_command must not be empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", time.Duration(c.PollInterval))
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must not be negative, got %d", c.MaxAttempts)
	}
	if c.MaxWait < 0 {
		return fmt.Errorf("max_wait must not be negative, got %s", time.Duration(c.MaxWait))
	}
	if c.HelperPath == "" {
		return fmt.Errorf("helper_path must not be empty")
	}
	if c.LinkPath == "" {
		return fmt.Errorf("link_path must not be empty")
	}
	if len(c.DaemonConfigPatch) > 0 && c.DaemonConfigFile == "" {
		return fmt.Errorf("daemon_config_patch requires daemon_config_file")
	}
	if err := ValidateHandoffMode(string(c.Handoff)); err != nil {
		return err
	}
	return nil
}

// RetryPolicy returns the readiness wait policy configured for this entrypoint.
func (c *Config) RetryPolicy() RetryPolicy {
	return RetryPolicy{
		Interval:    time.Duration(c.PollInterval),
		MaxAttempts: c.MaxAttempts,
		MaxWait:     time.Duration(c.MaxWait),
	}
}
