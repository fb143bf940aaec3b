// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gma

// Package config loads CLI defaults from gma.yaml and GMA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"
	"github.com/woozymasta/gma"
)

// ErrInvalidConfig means a configuration value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds CLI defaults.
type Config struct {
	Author        string `mapstructure:"author"`
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	AuthorID      uint64 `mapstructure:"author_id"`
	Workers       int    `mapstructure:"workers"`
	Version       uint8  `mapstructure:"version"`
	Compression   bool   `mapstructure:"compression"`
	SkipWhitelist bool   `mapstructure:"skip_whitelist"`
	KeepCase      bool   `mapstructure:"keep_case"`
	Verify        bool   `mapstructure:"verify"`
	NoProgress    bool   `mapstructure:"no_progress"`
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Load reads configuration from cfgFile, or from gma.yaml in the working
// directory and home directory when cfgFile is empty. A missing default
// config file is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("author", gma.DefaultAuthor)
	v.SetDefault("author_id", 0)
	v.SetDefault("version", gma.DefaultVersion)
	v.SetDefault("compression", false)
	v.SetDefault("skip_whitelist", false)
	v.SetDefault("keep_case", false)
	v.SetDefault("verify", false)
	v.SetDefault("workers", 0)
	v.SetDefault("no_progress", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetEnvPrefix("GMA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName("gma")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
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

// Validate checks enumerated and ranged values.
func (c *Config) Validate() error {
	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("%w: log_level %q (want one of %s)", ErrInvalidConfig, c.LogLevel, strings.Join(logLevels, ", "))
	}
	if !slices.Contains(logFormats, c.LogFormat) {
		return fmt.Errorf("%w: log_format %q (want one of %s)", ErrInvalidConfig, c.LogFormat, strings.Join(logFormats, ", "))
	}
	if c.Version < gma.MinVersion || c.Version > gma.MaxVersion {
		return fmt.Errorf("%w: version %d (want %d..%d)", ErrInvalidConfig, c.Version, gma.MinVersion, gma.MaxVersion)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d is negative", ErrInvalidConfig, c.Workers)
	}

	return nil
}
