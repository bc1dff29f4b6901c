package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// CLIConfig holds ocsfctl settings.
type CLIConfig struct {
	// ServerURL points at a running schema service. When empty, commands
	// load schemas themselves, from SchemaURL if set and SchemaDir otherwise.
	ServerURL      string `yaml:"server_url" mapstructure:"server_url"`
	SchemaDir      string `yaml:"schema_dir" mapstructure:"schema_dir"`
	SchemaURL      string `yaml:"schema_url" mapstructure:"schema_url"`
	DefaultVersion string `yaml:"default_version" mapstructure:"default_version"`
	Output         string `yaml:"output" mapstructure:"output"`

	path string
}

// DefaultCLI returns a CLIConfig with default values.
func DefaultCLI() *CLIConfig {
	return &CLIConfig{
		SchemaDir:      "./schemas",
		DefaultVersion: "1.1.0",
		Output:         "table",
	}
}

// LoadCLI reads $OCSF_MAPPER_CONFIG_DIR/cli.yaml, defaulting the directory to
// ~/.ocsf-mapper. OCSFCTL_* environment variables override file values.
func LoadCLI() (*CLIConfig, error) {
	v := viper.New()

	v.SetDefault("schema_dir", "./schemas")
	v.SetDefault("default_version", "1.1.0")
	v.SetDefault("output", "table")

	configDir := os.Getenv(ConfigDirEnv)
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine home directory: %w", err)
		}
		configDir = filepath.Join(home, ".ocsf-mapper")
	}

	configPath := filepath.Join(configDir, "cli.yaml")
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("OCSFCTL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// The file may not exist yet.
	_ = v.ReadInConfig()

	cfg := DefaultCLI()
	cfg.path = configPath
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Path is where Save writes.
func (c *CLIConfig) Path() string {
	return c.path
}

// Save writes the CLI config to disk.
func (c *CLIConfig) Save() error {
	if c.path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		c.path = filepath.Join(home, ".ocsf-mapper", "cli.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o600)
}
