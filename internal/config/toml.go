// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Unset values stay nil so flags and
// defaults can tell them apart from explicit zeros.
type FileConfig struct {
	LogLevel  *string           `toml:"log-level"`
	Dataset   DatasetConfig     `toml:"dataset"`
	Columns   map[string]string `toml:"columns"`
	Dashboard DashboardConfig   `toml:"dashboard"`
	Serve     ServeConfig       `toml:"serve"`
}

// DatasetConfig maps dataset loading settings.
type DatasetConfig struct {
	Path       *string  `toml:"path"`
	Sheet      *string  `toml:"sheet"`
	DB         *string  `toml:"db"`
	Required   []string `toml:"required"`
	OnInvalid  *string  `toml:"on-invalid"`
	OnNegative *string  `toml:"on-negative"`
	FoldCase   *bool    `toml:"fold-case"`
}

// DashboardConfig maps dashboard display settings.
type DashboardConfig struct {
	Diets      []string `toml:"diets"`
	Bins       *int     `toml:"bins"`
	PlotHeight *int     `toml:"plot-height"`
}

// ServeConfig maps HTTP server settings.
type ServeConfig struct {
	Port *int `toml:"port"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
