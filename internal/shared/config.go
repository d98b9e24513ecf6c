package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Delivery policies for draining the inbox queue.
const (
	DeliveryAtMostOnce   = "at-most-once"
	DeliveryAcknowledged = "acknowledged"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Container ContainerConfig `toml:"container"`
	Inbox     InboxConfig     `toml:"inbox"`
	Watch     WatchConfig     `toml:"watch"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ContainerConfig locates the shared directory used for the index snapshot and inbox queue.
type ContainerConfig struct {
	Root string `toml:"root"`
}

// InboxConfig controls how the host drains the inbox queue.
type InboxConfig struct {
	Delivery string `toml:"delivery"`
}

// WatchConfig controls the inbox watcher.
type WatchConfig struct {
	Interval  string  `toml:"interval"`
	RateLimit float64 `toml:"rate_limit"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LogConfig sets the logger level.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that have a fixed set of choices.
func (c *Config) Validate() error {
	switch c.Inbox.Delivery {
	case DeliveryAtMostOnce, DeliveryAcknowledged:
	default:
		return fmt.Errorf("%w: inbox.delivery must be %q or %q, got %q",
			ErrInvalidConfig, DeliveryAtMostOnce, DeliveryAcknowledged, c.Inbox.Delivery)
	}

	if _, err := c.Watch.RetryInterval(); err != nil {
		return err
	}
	return nil
}

// RetryInterval parses how often a throttled queue change is retried, falling back to two seconds when unset.
func (w WatchConfig) RetryInterval() (time.Duration, error) {
	if w.Interval == "" {
		return 2 * time.Second, nil
	}
	d, err := time.ParseDuration(w.Interval)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: watch.interval %q", ErrInvalidConfig, w.Interval)
	}
	return d, nil
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ResolveConfig loads the file at path when it exists and otherwise returns the defaults.
func ResolveConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}
	return LoadConfig(path)
}
