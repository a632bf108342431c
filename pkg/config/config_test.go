package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/schoolyard/pkg/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultMediaTimeout, cfg.MediaService.Timeout)
	assert.Equal(t, DefaultFetchTimeout, cfg.Downloads.FetchTimeout)
	assert.False(t, cfg.Downloads.AllowRepeatDownloads)
	assert.NotEmpty(t, cfg.Downloads.TempRoot)
	assert.Equal(t, "info", cfg.Settings.LogLevel)
}

func TestLoadConfigFromReader(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "full config",
			yaml: `
server:
  addr: ":9090"
database:
  dsn: "host=localhost user=app dbname=schoolyard"
media_service:
  endpoint: "https://media.example.com"
  api_key: "secret"
downloads:
  temp_root: "/var/tmp/schoolyard"
  fetch_timeout: 1m
  allow_repeat_downloads: true
settings:
  log_level: debug
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ":9090", cfg.Server.Addr)
				assert.Equal(t, "host=localhost user=app dbname=schoolyard", cfg.Database.DSN)
				assert.Equal(t, "https://media.example.com", cfg.MediaService.Endpoint)
				assert.Equal(t, "secret", cfg.MediaService.APIKey)
				assert.Equal(t, "/var/tmp/schoolyard", cfg.Downloads.TempRoot)
				assert.Equal(t, time.Minute, cfg.Downloads.FetchTimeout)
				assert.True(t, cfg.Downloads.AllowRepeatDownloads)
				assert.Equal(t, "debug", cfg.Settings.LogLevel)
			},
		},
		{
			name: "defaults fill the gaps",
			yaml: `
database:
  dsn: "host=db"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultAddr, cfg.Server.Addr)
				assert.Equal(t, DefaultFetchTimeout, cfg.Downloads.FetchTimeout)
				assert.Equal(t, "info", cfg.Settings.LogLevel)
			},
		},
		{
			name:    "invalid yaml",
			yaml:    "server: [not a mapping",
			wantErr: errors.ErrConfigParse,
		},
		{
			name: "invalid media endpoint",
			yaml: `
media_service:
  endpoint: "not a url"
`,
			wantErr: errors.ErrConfigValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfigFromReader(strings.NewReader(tt.yaml))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Addr, cfg.Server.Addr)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorIs(t, err, errors.ErrEmptyConfigPath)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = ":7070"
	cfg.Database.DSN = "host=db user=app"
	cfg.Downloads.AllowRepeatDownloads = true
	require.NoError(t, cfg.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", loaded.Server.Addr)
	assert.Equal(t, "host=db user=app", loaded.Database.DSN)
	assert.True(t, loaded.Downloads.AllowRepeatDownloads)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Addr = ""
	assert.ErrorIs(t, cfg.Validate(), errors.ErrConfigValidation)

	cfg = DefaultConfig()
	cfg.Downloads.FetchTimeout = -time.Second
	assert.ErrorIs(t, cfg.Validate(), errors.ErrConfigValidation)

	assert.NoError(t, DefaultConfig().Validate())
}
