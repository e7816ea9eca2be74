// Package config loads Gatehouse configuration from an optional TOML file
// and GATEHOUSE_-prefixed environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	toml "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is the prefix for environment variables used to configure gatehouse
	EnvPrefix = "GATEHOUSE_"

	// PortEnvVar overrides the listen port and takes precedence over
	// everything else.
	PortEnvVar = "GATEPORT"

	// DefaultPort is the default listen port of the RPC surface
	DefaultPort = 6174

	// DefaultBackend is the storage backend used when none is configured
	DefaultBackend = "file:/tmp/gatehouse"
)

// Config holds all configuration for gatehouse
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	// Port is the listen port of the management and decision API
	Port int `koanf:"port"`

	// Backend is the storage backend tag: "nil", "file:<path>", or
	// "etcd:<url>".
	Backend string `koanf:"backend"`

	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `koanf:"level"`  // "debug", "info", "warn", "error"
	Format string `koanf:"format"` // "json" (default) or "text"
}

// MetricsConfig holds Prometheus metrics server configuration
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
	Port    int  `koanf:"port"`
}

// BackendType identifies a storage backend implementation.
type BackendType string

const (
	BackendNil  BackendType = "nil"
	BackendFile BackendType = "file"
	BackendEtcd BackendType = "etcd"
)

// Backend is the parsed form of the backend tag.
type Backend struct {
	Type BackendType

	// Path is the base directory for the file backend.
	Path string

	// Endpoint is the etcd URL for the etcd backend.
	Endpoint string
}

// LoadConfig loads configuration from file, environment variables, and defaults
// Priority: GATEPORT > environment variables > config file > defaults
func LoadConfig(configPath string) (*Config, error) {
	cfg := defaultConfig()

	k := koanf.New(".")

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Load environment variables with prefix
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)

		switch s {
		case "backend":
			return "server.backend"
		case "port":
			return "server.port"
		default:
			// Step 1: Convert double underscore "__" into a temporary placeholder
			s = strings.ReplaceAll(s, "__", "%UNDERSCORE%")
			// Step 2: Convert single "_" into "."
			s = strings.ReplaceAll(s, "_", ".")
			// Step 3: Convert placeholder back into literal "_"
			s = strings.ReplaceAll(s, "%UNDERSCORE%", "_")
			return s
		}
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			TagName:          "koanf",
			WeaklyTypedInput: true,
			Result:           cfg,
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// GATEPORT wins over every other source
	if raw := os.Getenv(PortEnvVar); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", PortEnvVar, raw, err)
		}
		cfg.Server.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config struct with default configuration values
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			Backend:         DefaultBackend,
			ShutdownTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9091,
		},
	}
}

// ParseBackend parses the backend tag into its typed form.
func (c *Config) ParseBackend() (Backend, error) {
	tag := c.Server.Backend
	if tag == "nil" {
		return Backend{Type: BackendNil}, nil
	}
	if path, ok := strings.CutPrefix(tag, "file:"); ok {
		if path == "" {
			return Backend{}, fmt.Errorf("server.backend file tag requires a path, got: %s", tag)
		}
		return Backend{Type: BackendFile, Path: path}, nil
	}
	if endpoint, ok := strings.CutPrefix(tag, "etcd:"); ok {
		u, err := url.Parse(endpoint)
		if err != nil || u.Host == "" {
			return Backend{}, fmt.Errorf("server.backend etcd tag requires a URL, got: %s", tag)
		}
		return Backend{Type: BackendEtcd, Endpoint: endpoint}, nil
	}
	return Backend{}, fmt.Errorf("server.backend must be one of: nil, file:<path>, etcd:<url>, got: %s", tag)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", c.Server.Port)
	}

	if _, err := c.ParseBackend(); err != nil {
		return err
	}

	validLevels := []string{"debug", "info", "warn", "warning", "error"}
	isValidLevel := false
	for _, level := range validLevels {
		if strings.ToLower(c.Logging.Level) == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, got: %s", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be either 'json' or 'text', got: %s", c.Logging.Format)
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be between 1 and 65535, got: %d", c.Metrics.Port)
		}
		if c.Metrics.Port == c.Server.Port {
			return fmt.Errorf("metrics.port cannot be same as server.port")
		}
	}

	return nil
}
