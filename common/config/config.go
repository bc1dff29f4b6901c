// Package config loads service and CLI configuration with viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ConfigDirEnv names the directory holding config.yaml.
const ConfigDirEnv = "OCSF_MAPPER_CONFIG_DIR"

// DefaultConfigDir is used when ConfigDirEnv is unset.
const DefaultConfigDir = "/etc/ocsf-mapper"

// Config is the schema service configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Schema  SchemaConfig  `mapstructure:"schema" yaml:"schema"`
	Redis   RedisConfig   `mapstructure:"redis" yaml:"redis"`
	NATS    NATSConfig    `mapstructure:"nats" yaml:"nats"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	CORS    CORSConfig    `mapstructure:"cors" yaml:"cors"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Addr is the listen address for Port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// SchemaConfig says where schema exports come from.
type SchemaConfig struct {
	// Source is "file" or "http".
	Source         string        `mapstructure:"source" yaml:"source"`
	Dir            string        `mapstructure:"dir" yaml:"dir"`
	BaseURL        string        `mapstructure:"base_url" yaml:"base_url"`
	DefaultVersion string        `mapstructure:"default_version" yaml:"default_version"`
	Preload        []string      `mapstructure:"preload" yaml:"preload"`
	Strict         bool          `mapstructure:"strict" yaml:"strict"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout" yaml:"fetch_timeout"`
}

// RedisConfig configures the shared schema cache.
type RedisConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	URL     string        `mapstructure:"url" yaml:"url"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// NATSConfig configures the job responder.
type NATSConfig struct {
	Enabled       bool          `mapstructure:"enabled" yaml:"enabled"`
	URL           string        `mapstructure:"url" yaml:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects" yaml:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait" yaml:"reconnect_wait"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// Load reads configuration from path, or from $OCSF_MAPPER_CONFIG_DIR/config.yaml
// when path is empty. A missing file is not an error. Environment variables
// override file values, with dots in keys replaced by underscores
// (SERVER_PORT, SCHEMA_DIR, REDIS_URL).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		dir := os.Getenv(ConfigDirEnv)
		if dir == "" {
			dir = DefaultConfigDir
		}
		path = filepath.Join(dir, "config.yaml")
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Schema.Source {
	case "file":
		if c.Schema.Dir == "" {
			errs = append(errs, errors.New("schema.dir is required for the file source"))
		}
	case "http":
		if c.Schema.BaseURL == "" {
			errs = append(errs, errors.New("schema.base_url is required for the http source"))
		}
	default:
		errs = append(errs, fmt.Errorf("schema.source must be file or http, got %q", c.Schema.Source))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	if c.Redis.Enabled && c.Redis.URL == "" {
		errs = append(errs, errors.New("redis.url is required when redis is enabled"))
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, errors.New("nats.url is required when nats is enabled"))
	}
	return errors.Join(errs...)
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("schema.source", "file")
	v.SetDefault("schema.dir", "/var/lib/ocsf-mapper/schemas")
	v.SetDefault("schema.base_url", "https://schema.ocsf.io")
	v.SetDefault("schema.default_version", "1.1.0")
	v.SetDefault("schema.preload", []string{})
	v.SetDefault("schema.strict", false)
	v.SetDefault("schema.fetch_timeout", "30s")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.ttl", "24h")

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.max_reconnects", -1)
	v.SetDefault("nats.reconnect_wait", "2s")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("cors.allowed_origins", []string{})
}
