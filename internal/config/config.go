package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mazurov/sslvpn-credstore/internal/storage"
)

const (
	// EnvPrefix is the prefix for all configuration environment variables
	EnvPrefix = "SSLVPN"

	// ConfigFileEnvVar names a config file when --config is not given
	ConfigFileEnvVar = "SSLVPN_CONFIG_FILE"
)

// Config holds all configuration for the CLI
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StorageConfig holds storage configuration (URI-based)
type StorageConfig struct {
	URI   string `mapstructure:"uri"`   // Storage URI (e.g., file://~/.config/sslvpn/credentials.yaml)
	Token string `mapstructure:"token"` // Opaque token for storage authentication
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // json | text
}

// DefaultStorageURI returns the per-user credentials file location
func DefaultStorageURI() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./sslvpn-credentials.yaml"
	}
	return filepath.Join(dir, "sslvpn", "credentials.yaml")
}

// NewViper creates a new viper instance with defaults and environment binding
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("storage.uri", DefaultStorageURI())
	v.SetDefault("storage.token", "")
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")

	// Bind environment variables with SSLVPN_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads configFile (if any) into v and unmarshals the result.
// CLI flags must already be bound to v.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile == "" {
		configFile = os.Getenv(ConfigFileEnvVar)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := storage.ParseStorageURI(c.Storage.URI); err != nil {
		return fmt.Errorf("invalid storage URI: %w", err)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be debug, info, warn, or error")
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be json or text")
	}

	return nil
}

// GetParsedStorageURI returns the parsed storage URI
func (c *Config) GetParsedStorageURI() (*storage.StorageURI, error) {
	return storage.ParseStorageURI(c.Storage.URI)
}

// MaskToken returns a masked version of the storage token for logging
func (c *Config) MaskToken() string {
	if c.Storage.Token == "" {
		return ""
	}
	return "***"
}
