package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/opd-ai/wmbridge/events"
	"github.com/opd-ai/wmbridge/interfaces"
	"github.com/opd-ai/wmbridge/limits"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in the backend setting.
const (
	BackendWhatsmeow = "whatsmeow"
	BackendSimulated = "simulated"
)

// Send timeout bounds in milliseconds.
const (
	DefaultSendTimeoutMs = 30000
	MinSendTimeoutMs     = 100
	MaxSendTimeoutMs     = 600000
)

// EnvConfigPath names the environment variable holding the YAML file path.
const EnvConfigPath = "WMBRIDGE_CONFIG"

// Config is the root bridge configuration. It is loaded from YAML and can be
// overridden by WMBRIDGE_* environment variables.
type Config struct {
	Backend       string        `yaml:"backend"`
	QueueCapacity int           `yaml:"queue_capacity"`
	Codec         string        `yaml:"codec"`
	SendTimeoutMs int           `yaml:"send_timeout_ms"`
	Store         StoreConfig   `yaml:"store"`
	Logging       LoggingConfig `yaml:"logging"`
}

// StoreConfig contains session store settings.
type StoreConfig struct {
	Dialect     string `yaml:"dialect"`
	ForeignKeys bool   `yaml:"foreign_keys"`
}

// LoggingConfig contains logrus settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Backend:       BackendWhatsmeow,
		QueueCapacity: limits.DefaultQueueCapacity,
		Codec:         "json",
		SendTimeoutMs: DefaultSendTimeoutMs,
		Store: StoreConfig{
			Dialect:     "sqlite3",
			ForeignKeys: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads the file named by WMBRIDGE_CONFIG when set; otherwise it
// starts from the defaults. Environment overrides apply either way.
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return Load(path)
	}

	cfg := Default()
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides updates cfg from WMBRIDGE_* variables. Values that fail
// to parse or fall out of range are logged and ignored.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WMBRIDGE_BACKEND"); v != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("WMBRIDGE_CODEC"); v != "" {
		cfg.Codec = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("WMBRIDGE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("WMBRIDGE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v, ok := envInt("WMBRIDGE_QUEUE_CAPACITY", cfg.QueueCapacity, limits.MinQueueCapacity, limits.MaxQueueCapacity); ok {
		cfg.QueueCapacity = v
	}
	if v, ok := envInt("WMBRIDGE_SEND_TIMEOUT_MS", cfg.SendTimeoutMs, MinSendTimeoutMs, MaxSendTimeoutMs); ok {
		cfg.SendTimeoutMs = v
	}
}

// envInt parses an integer environment variable within [lo, hi].
func envInt(name string, current, lo, hi int) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}

	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "applyEnvOverrides",
			"env_var":     name,
			"value":       raw,
			"error":       err.Error(),
			"using_value": current,
		}).Warn("Failed to parse environment variable, using default")
		return 0, false
	}
	if v < lo || v > hi {
		logrus.WithFields(logrus.Fields{
			"function":    "applyEnvOverrides",
			"env_var":     name,
			"value":       v,
			"min":         lo,
			"max":         hi,
			"using_value": current,
		}).Warn("Environment variable out of bounds, using default")
		return 0, false
	}
	return v, true
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	switch c.Backend {
	case BackendWhatsmeow, BackendSimulated:
	default:
		errs = append(errs, fmt.Sprintf("backend must be %q or %q, got %q", BackendWhatsmeow, BackendSimulated, c.Backend))
	}

	if err := limits.ValidateQueueCapacity(c.QueueCapacity); err != nil {
		errs = append(errs, "queue_capacity: "+err.Error())
	}

	if _, err := events.CodecByName(c.Codec); err != nil {
		errs = append(errs, "codec: "+err.Error())
	}

	if c.SendTimeoutMs < MinSendTimeoutMs || c.SendTimeoutMs > MaxSendTimeoutMs {
		errs = append(errs, fmt.Sprintf("send_timeout_ms must be between %d and %d", MinSendTimeoutMs, MaxSendTimeoutMs))
	}

	if c.Backend == BackendWhatsmeow && c.Store.Dialect == "" {
		errs = append(errs, "store.dialect is required for the whatsmeow backend")
	}

	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, "logging.level: "+err.Error())
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("logging.format must be text or json, got %q", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// SendTimeout returns the send timeout as a duration.
func (c *Config) SendTimeout() time.Duration {
	return time.Duration(c.SendTimeoutMs) * time.Millisecond
}

// UseSimulation reports whether sessions should be simulated.
func (c *Config) UseSimulation() bool {
	return c.Backend == BackendSimulated
}

// SessionTemplate returns the session settings shared by every client.
func (c *Config) SessionTemplate() *interfaces.SessionConfig {
	return &interfaces.SessionConfig{
		StoreDialect:  c.Store.Dialect,
		ForeignKeys:   c.Store.ForeignKeys,
		UseSimulation: c.UseSimulation(),
	}
}

// ApplyLogging configures the standard logrus logger from c.Logging.
func (c *Config) ApplyLogging() error {
	return ApplyLogging(logrus.StandardLogger(), c.Logging)
}

// ApplyLogging configures logger with the given level and format.
func ApplyLogging(logger *logrus.Logger, cfg LoggingConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return nil
}
