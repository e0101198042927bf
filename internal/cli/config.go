// Package cli holds configuration loading shared by the fusionlink
// commands.
package cli

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML accepts "10s" style values
// as well as raw nanosecond integers.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("invalid duration %q: %w", s, perr)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	*d = Duration(n)
	return nil
}

// Std returns the standard library duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// RedisConfig selects the redis-backed transaction journal. An empty
// Addr means the in-memory journal.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Config is the fusionlink.yaml configuration surface: the loopback
// bind plus the client timeout and the journal backend.
type Config struct {
	Host    string      `yaml:"host"`
	Port    int         `yaml:"port"`
	Timeout Duration    `yaml:"timeout"`
	Redis   RedisConfig `yaml:"redis"`
}

// DefaultConfig mirrors the defaults of the server and client.
func DefaultConfig() Config {
	return Config{
		Host:    "localhost",
		Port:    3600,
		Timeout: Duration(10 * time.Second),
	}
}

// LoadConfig reads a YAML config file, returning defaults when the
// file does not exist so a config file is never required.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 3600
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = Duration(10 * time.Second)
	}
	return cfg, nil
}
