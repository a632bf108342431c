// Package config provides configuration management for the schoolyard web
// application. It handles loading, validating, and saving application
// settings. The package supports YAML configuration files and provides
// sensible defaults while allowing for customization through configuration
// files.
package config

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/glorpus-work/schoolyard/pkg/errors"
	"github.com/glorpus-work/schoolyard/pkg/fsutil"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	MediaService MediaServiceConfig `yaml:"media_service"`
	Downloads    DownloadsConfig    `yaml:"downloads"`
	Hooks        HooksConfig        `yaml:"hooks,omitempty"`
	Settings     Settings           `yaml:"settings"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// DatabaseConfig holds the postgres connection settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// MediaServiceConfig holds the connection settings for the external media
// service that stores lesson files.
type MediaServiceConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key,omitempty"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DownloadsConfig controls the digital-download fulfillment pipeline.
type DownloadsConfig struct {
	// TempRoot is the scratch area for assembling archives. Defaults to a
	// schoolyard directory under the system temp dir.
	TempRoot string `yaml:"temp_root,omitempty"`

	// FetchTimeout bounds a single lesson media download.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// AllowRepeatDownloads disables the consumed-link check, restoring the
	// permissive "single-use by convention" behavior. Links are still
	// deleted once expired.
	AllowRepeatDownloads bool `yaml:"allow_repeat_downloads"`
}

// HooksConfig points at the directory holding site automation scripts.
type HooksConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	LogLevel string `yaml:"log_level"` // error, warn, info, debug
}

// Default configuration values.
const (
	// DefaultAddr is the default HTTP listen address.
	DefaultAddr = ":8080"

	// DefaultMediaTimeout is the default timeout for media service requests.
	DefaultMediaTimeout = 30 * time.Second

	// DefaultFetchTimeout is the default timeout for a single lesson media download.
	DefaultFetchTimeout = 5 * time.Minute

	// DefaultReadTimeout/DefaultWriteTimeout/DefaultIdleTimeout bound HTTP connections.
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 10 * time.Minute
	DefaultIdleTimeout  = 2 * time.Minute

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         DefaultAddr,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
		},
		MediaService: MediaServiceConfig{
			Timeout: DefaultMediaTimeout,
		},
		Downloads: DownloadsConfig{
			TempRoot:     filepath.Join(os.TempDir(), "schoolyard"),
			FetchTimeout: DefaultFetchTimeout,
		},
		Settings: Settings{
			LogLevel: "info",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the
// default configuration.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return &config, nil
}

// SaveConfig saves configuration to a file.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := fsutil.EnsureFileDir(absPath); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	// Atomically replace the config file
	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(err, "failed to replace config file")
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if c.Server.Addr == "" {
		return errors.Wrap(errors.ErrConfigValidation, "server addr cannot be empty")
	}
	if c.MediaService.Endpoint != "" {
		parsed, err := url.Parse(c.MediaService.Endpoint)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return errors.Wrapf(errors.ErrConfigValidation, "invalid media service endpoint: %s", c.MediaService.Endpoint)
		}
	}
	if c.Downloads.FetchTimeout < 0 {
		return errors.Wrap(errors.ErrConfigValidation, "fetch timeout cannot be negative")
	}
	return nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = defaults.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = defaults.Server.WriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = defaults.Server.IdleTimeout
	}
	if c.MediaService.Timeout == 0 {
		c.MediaService.Timeout = defaults.MediaService.Timeout
	}
	if c.Downloads.TempRoot == "" {
		c.Downloads.TempRoot = defaults.Downloads.TempRoot
	}
	if c.Downloads.FetchTimeout == 0 {
		c.Downloads.FetchTimeout = defaults.Downloads.FetchTimeout
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
}

// GetDefaultConfigPath returns the default location of the config file.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to determine user config dir")
	}
	return filepath.Join(configDir, "schoolyard", "config.yaml"), nil
}
