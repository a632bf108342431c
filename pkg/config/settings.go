package config

import (
	"strconv"
	"time"

	"github.com/glorpus-work/schoolyard/pkg/errors"
)

// Configuration keys accepted by SetValue and GetValue.
const (
	KeyServerAddr           = "server.addr"
	KeyServerReadTimeout    = "server.read_timeout"
	KeyServerWriteTimeout   = "server.write_timeout"
	KeyServerIdleTimeout    = "server.idle_timeout"
	KeyDatabaseDSN          = "database.dsn"
	KeyMediaEndpoint        = "media_service.endpoint"
	KeyMediaAPIKey          = "media_service.api_key"
	KeyMediaTimeout         = "media_service.timeout"
	KeyDownloadsTempRoot    = "downloads.temp_root"
	KeyDownloadsFetchTO     = "downloads.fetch_timeout"
	KeyDownloadsAllowRepeat = "downloads.allow_repeat_downloads"
	KeyHooksDir             = "hooks.dir"
	KeyLogLevel             = "settings.log_level"
)

// ToMap returns all configuration values keyed by their setting name.
func (c *Config) ToMap() map[string]string {
	return map[string]string{
		KeyServerAddr:           c.Server.Addr,
		KeyServerReadTimeout:    c.Server.ReadTimeout.String(),
		KeyServerWriteTimeout:   c.Server.WriteTimeout.String(),
		KeyServerIdleTimeout:    c.Server.IdleTimeout.String(),
		KeyDatabaseDSN:          c.Database.DSN,
		KeyMediaEndpoint:        c.MediaService.Endpoint,
		KeyMediaAPIKey:          c.MediaService.APIKey,
		KeyMediaTimeout:         c.MediaService.Timeout.String(),
		KeyDownloadsTempRoot:    c.Downloads.TempRoot,
		KeyDownloadsFetchTO:     c.Downloads.FetchTimeout.String(),
		KeyDownloadsAllowRepeat: strconv.FormatBool(c.Downloads.AllowRepeatDownloads),
		KeyHooksDir:             c.Hooks.Dir,
		KeyLogLevel:             c.Settings.LogLevel,
	}
}

// GetValue returns the value of a single configuration key.
func (c *Config) GetValue(key string) (string, error) {
	values := c.ToMap()
	value, ok := values[key]
	if !ok {
		return "", errors.Wrapf(errors.ErrConfigValidation, "unknown configuration key: %s", key)
	}
	return value, nil
}

// SetValue sets a single configuration key from its string representation.
func (c *Config) SetValue(key, value string) error {
	switch key {
	case KeyServerAddr:
		c.Server.Addr = value
	case KeyServerReadTimeout:
		return setDuration(&c.Server.ReadTimeout, value)
	case KeyServerWriteTimeout:
		return setDuration(&c.Server.WriteTimeout, value)
	case KeyServerIdleTimeout:
		return setDuration(&c.Server.IdleTimeout, value)
	case KeyDatabaseDSN:
		c.Database.DSN = value
	case KeyMediaEndpoint:
		c.MediaService.Endpoint = value
	case KeyMediaAPIKey:
		c.MediaService.APIKey = value
	case KeyMediaTimeout:
		return setDuration(&c.MediaService.Timeout, value)
	case KeyDownloadsTempRoot:
		c.Downloads.TempRoot = value
	case KeyDownloadsFetchTO:
		return setDuration(&c.Downloads.FetchTimeout, value)
	case KeyDownloadsAllowRepeat:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(errors.ErrConfigValidation, "invalid boolean: %s", value)
		}
		c.Downloads.AllowRepeatDownloads = parsed
	case KeyHooksDir:
		c.Hooks.Dir = value
	case KeyLogLevel:
		c.Settings.LogLevel = value
	default:
		return errors.Wrapf(errors.ErrConfigValidation, "unknown configuration key: %s", key)
	}
	return c.Validate()
}

func setDuration(dst *time.Duration, value string) error {
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return errors.Wrapf(errors.ErrConfigValidation, "invalid duration: %s", value)
	}
	*dst = parsed
	return nil
}
