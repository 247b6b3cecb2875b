package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Settings SettingsConfig `yaml:"settings"`
	Logging  LoggingConfig  `yaml:"logging"`
	Uploader UploaderConfig `yaml:"uploader"`
}

// ServerConfig holds the metrics/health HTTP listener settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig holds archive storage settings.
type StorageConfig struct {
	Type      string          `yaml:"type"` // "memory" or "sqlite"
	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path"` // Database file path, use ":memory:" for in-memory
}

// RetentionConfig caps how much the archive may hold. Zero means unlimited.
type RetentionConfig struct {
	MaxMessages          int `yaml:"max_messages"`
	MaxDeletedPerChannel int `yaml:"max_deleted_per_channel"`
}

// SettingsConfig locates the policy settings file shared with the client's
// settings panel.
type SettingsConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// UploaderConfig holds optional S3 snapshot upload settings.
type UploaderConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	MaxRetries      int    `yaml:"max_retries"`
}

// Load reads configuration from file and environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			// Expand environment variables in YAML
			expandedData := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	cfg.overrideFromEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// overrideFromEnv overrides config values from environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("SQLITE_DATABASE_PATH"); v != "" {
		c.Storage.SQLite.Path = v
	}
	if v := os.Getenv("RETENTION_MAX_MESSAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Storage.Retention.MaxMessages = n
		}
	}
	if v := os.Getenv("RETENTION_MAX_DELETED_PER_CHANNEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Storage.Retention.MaxDeletedPerChannel = n
		}
	}

	if v := os.Getenv("SETTINGS_PATH"); v != "" {
		c.Settings.Path = v
	}

	if v := os.Getenv("UPLOADER_ENABLED"); v != "" {
		c.Uploader.Enabled = strings.ToLower(v) == "true"
	}
	if v := os.Getenv("UPLOADER_BUCKET"); v != "" {
		c.Uploader.Bucket = v
	}
	if v := os.Getenv("UPLOADER_REGION"); v != "" {
		c.Uploader.Region = v
	}
	if v := os.Getenv("UPLOADER_PREFIX"); v != "" {
		c.Uploader.Prefix = v
	}
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" && c.Uploader.AccessKeyID == "" {
		c.Uploader.AccessKeyID = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" && c.Uploader.SecretAccessKey == "" {
		c.Uploader.SecretAccessKey = v
	}
}

// applyDefaults sets default values for unset config options.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 9120
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "memory"
	}
	if c.Storage.SQLite.Path == "" {
		c.Storage.SQLite.Path = "./data/chatvault.db"
	}
	if c.Storage.Retention.MaxDeletedPerChannel == 0 {
		c.Storage.Retention.MaxDeletedPerChannel = 1000
	}

	if c.Settings.Path == "" {
		c.Settings.Path = "./config/settings.yaml"
	}

	if c.Uploader.MaxRetries == 0 {
		c.Uploader.MaxRetries = 3
	}
}

// validate checks that required configuration is present.
func (c *Config) validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	validStorageTypes := map[string]bool{"memory": true, "sqlite": true}
	if !validStorageTypes[strings.ToLower(c.Storage.Type)] {
		return fmt.Errorf("invalid storage type: %s (must be memory or sqlite)", c.Storage.Type)
	}
	if strings.ToLower(c.Storage.Type) == "sqlite" && c.Storage.SQLite.Path == "" {
		return fmt.Errorf("storage.sqlite.path is required when storage type is sqlite")
	}

	if c.Storage.Retention.MaxMessages < 0 || c.Storage.Retention.MaxDeletedPerChannel < 0 {
		return fmt.Errorf("retention caps must not be negative")
	}

	if c.Uploader.Enabled {
		if c.Uploader.Bucket == "" {
			return fmt.Errorf("uploader.bucket is required when uploader is enabled")
		}
		if c.Uploader.Region == "" {
			return fmt.Errorf("uploader.region is required when uploader is enabled")
		}
	}

	return nil
}

// IsUploaderEnabled returns true if S3 snapshot uploads are enabled.
func (c *Config) IsUploaderEnabled() bool {
	return c.Uploader.Enabled
}
