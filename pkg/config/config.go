// Package config holds FileClaw's process configuration. The Config struct
// is built once at startup — defaults, then an optional YAML file, then
// FILECLAW_* environment variables — and passed to the components that need
// it. It is never mutated after Load returns.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the full FileClaw configuration.
type Config struct {
	// ServerName and ServerVersion form the serverInfo reported on initialize.
	ServerName    string `yaml:"server_name" env:"FILECLAW_SERVER_NAME"`
	ServerVersion string `yaml:"server_version" env:"FILECLAW_SERVER_VERSION"`

	// ProtocolVersion is the MCP spec revision advertised to clients.
	ProtocolVersion string `yaml:"protocol_version" env:"FILECLAW_PROTOCOL_VERSION"`

	// LogLevel controls stderr diagnostics: debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"FILECLAW_LOG_LEVEL"`

	// MetricsAddr enables the Prometheus exposition listener when non-empty
	// (e.g. "127.0.0.1:9090"). Metrics never touch the protocol channel.
	MetricsAddr string `yaml:"metrics_addr" env:"FILECLAW_METRICS_ADDR"`

	Audit AuditConfig `yaml:"audit"`
}

// AuditConfig selects where tool invocations are recorded.
type AuditConfig struct {
	// Backend is one of: off, memory, file, sqlite, postgres.
	Backend     string `yaml:"backend" env:"FILECLAW_AUDIT_BACKEND"`
	DataDir     string `yaml:"data_dir" env:"FILECLAW_AUDIT_DATA_DIR"`
	SQLitePath  string `yaml:"sqlite_path" env:"FILECLAW_AUDIT_SQLITE_PATH"`
	PostgresDSN string `yaml:"postgres_dsn" env:"FILECLAW_AUDIT_POSTGRES_DSN"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ServerName:      "fileclaw",
		ServerVersion:   "1.0.0",
		ProtocolVersion: "2024-11-05",
		LogLevel:        "info",
		Audit: AuditConfig{
			Backend: "off",
			DataDir: defaultDataDir(),
		},
	}
}

// DefaultConfigPath returns ~/.fileclaw/config.yaml.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".fileclaw", "config.yaml")
}

func defaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".fileclaw")
}

// Load builds the configuration from defaults, the YAML file at path (if it
// exists), and the environment, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// No config file is fine — env and defaults apply.
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (expected debug, info, warn or error)", c.LogLevel)
	}

	switch c.Audit.Backend {
	case "off", "memory", "file", "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid audit backend %q (supported: off, memory, file, sqlite, postgres)", c.Audit.Backend)
	}

	if c.ServerName == "" {
		return fmt.Errorf("server_name must not be empty")
	}
	return nil
}
