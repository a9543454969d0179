// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package main

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/gatewarden/gatewarden/internal/guard"
)

// serveConfig holds configuration for the serve command. Values come
// from defaults, then the YAML config file, then command-line flags.
type serveConfig struct {
	DatabaseURL string `koanf:"database_url"`
	RedisAddr   string `koanf:"redis_addr"`
	MetricsAddr string `koanf:"metrics_addr"`
	LogFormat   string `koanf:"log_format"`
	LogLevel    string `koanf:"log_level"`
	AutoMigrate bool   `koanf:"auto_migrate"`

	Guard guard.Config `koanf:"guard"`
}

func defaultServeConfig() *serveConfig {
	return &serveConfig{
		MetricsAddr: "127.0.0.1:9100",
		LogFormat:   "json",
		LogLevel:    "info",
		Guard:       guard.DefaultConfig(),
	}
}

// Validate checks that the configuration is usable.
func (cfg *serveConfig) Validate() error {
	if cfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url is required")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log_format must be 'json' or 'text', got %q", cfg.LogFormat)
	}
	if err := cfg.Guard.Validate(); err != nil {
		return err
	}
	return nil
}

// loadServeConfig layers the YAML file (if given) and the flag set over
// built-in defaults. Flag names use dashes; they are mapped onto the
// underscore config keys.
func loadServeConfig(path string, flags *pflag.FlagSet) (*serveConfig, error) {
	cfg := defaultServeConfig()

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}
	if flags != nil {
		provider := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			return strings.ReplaceAll(key, "-", "_"), value
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
		}
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_PARSE_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
