// Package cli implements the schoolyard command line interface.
package cli

import (
	"fmt"

	"github.com/glorpus-work/schoolyard/pkg/config"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
)

// TabWidth used for tabular CLI output.
const TabWidth = 2

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	return cfg, nil
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}
	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		return ""
	}
	return defaultPath
}
