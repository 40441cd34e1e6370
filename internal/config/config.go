// Package config holds the server configuration: built-in defaults, an
// optional YAML file, and environment overrides. Flag binding happens in the
// command; precedence is defaults < file < flags < environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/axonhq/axon/internal/logger"
)

// Transport names accepted by --transport.
const (
	TransportStream = "stream"
	TransportHTTP   = "http"
)

// InMemoryURL selects the non-durable in-memory store.
const InMemoryURL = ":memory:"

// Config is the full server configuration.
type Config struct {
	Transport   string        `yaml:"transport"`
	DatabaseURL string        `yaml:"database_url"`
	Listen      string        `yaml:"listen"`
	Log         logger.Config `yaml:"log"`

	// ReaderConns bounds the read-only SQLite connection pool.
	ReaderConns int `yaml:"reader_conns"`
	// OpTimeoutSeconds bounds a single engine operation (store transaction).
	OpTimeoutSeconds int `yaml:"op_timeout_seconds"`
	// ShutdownGraceSeconds bounds the drain of in-flight requests on shutdown.
	ShutdownGraceSeconds int `yaml:"shutdown_grace_seconds"`
}

// HomeDir returns the default data directory (~/.axon).
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".axon")
}

// DefaultDatabasePath returns the default SQLite database location.
func DefaultDatabasePath() string {
	return filepath.Join(HomeDir(), "axon.db")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Transport:            TransportStream,
		DatabaseURL:          DefaultDatabasePath(),
		Listen:               "127.0.0.1:8700",
		Log:                  logger.Config{Level: "info", Format: "console"},
		ReaderConns:          8,
		OpTimeoutSeconds:     30,
		ShutdownGraceSeconds: 15,
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. Environment variables win
// over everything else, including flags.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks the configuration, collecting every problem into one error.
func (c *Config) Validate() error {
	var problems []string
	if c.Transport != TransportStream && c.Transport != TransportHTTP {
		problems = append(problems, fmt.Sprintf("transport must be %q or %q, got %q", TransportStream, TransportHTTP, c.Transport))
	}
	if c.DatabaseURL == "" {
		problems = append(problems, "database_url must not be empty")
	}
	if c.Transport == TransportHTTP && c.Listen == "" {
		problems = append(problems, "listen must be set for the http transport")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log level must be debug, info, warn, or error, got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("log format must be console or json, got %q", c.Log.Format))
	}
	if c.ReaderConns < 5 || c.ReaderConns > 20 {
		problems = append(problems, fmt.Sprintf("reader_conns must be between 5 and 20, got %d", c.ReaderConns))
	}
	if c.OpTimeoutSeconds < 1 {
		problems = append(problems, fmt.Sprintf("op_timeout_seconds must be at least 1, got %d", c.OpTimeoutSeconds))
	}
	if c.ShutdownGraceSeconds < 0 {
		problems = append(problems, fmt.Sprintf("shutdown_grace_seconds must not be negative, got %d", c.ShutdownGraceSeconds))
	}
	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}

// InMemory reports whether the database URL selects the in-memory store.
func (c *Config) InMemory() bool {
	return c.DatabaseURL == InMemoryURL
}

// DatabasePath resolves the database URL to a filesystem path, stripping an
// optional file: scheme. Call only when InMemory is false.
func (c *Config) DatabasePath() string {
	return strings.TrimPrefix(c.DatabaseURL, "file:")
}

// OpTimeout returns the per-operation deadline.
func (c *Config) OpTimeout() time.Duration {
	return time.Duration(c.OpTimeoutSeconds) * time.Second
}

// ShutdownGrace returns the drain window applied on shutdown.
func (c *Config) ShutdownGrace() time.Duration {
	return time.Duration(c.ShutdownGraceSeconds) * time.Second
}
