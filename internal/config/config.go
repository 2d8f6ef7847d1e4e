// Package config loads wmtrace settings from an optional YAML file and
// WMTRACE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables before they are mapped
// onto config keys. WMTRACE_STORE_PATH becomes store.path.
const EnvPrefix = "WMTRACE_"

// DefaultFile is read when no explicit config path is given.
const DefaultFile = "wmtrace.yaml"

type Config struct {
	Output OutputConfig `koanf:"output"`
	Trace  TraceConfig  `koanf:"trace"`
	Store  StoreConfig  `koanf:"store"`
	Log    LogConfig    `koanf:"log"`
	Golden GoldenConfig `koanf:"golden"`
}

type OutputConfig struct {
	Format string `koanf:"format"`
}

type TraceConfig struct {
	Format string `koanf:"format"`
}

type StoreConfig struct {
	Path string `koanf:"path"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type GoldenConfig struct {
	Dir string `koanf:"dir"`
}

var defaults = map[string]any{
	"output.format": "text",
	"trace.format":  "auto",
	"store.path":    "",
	"log.level":     "info",
	"golden.dir":    "testdata/golden",
}

// Load reads path (DefaultFile when empty), overlays the environment and
// fills in defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	for key, val := range defaults {
		if !k.Exists(key) {
			if err := k.Set(key, val); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the CLI cannot act on.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("output.format must be text or json, got %q", c.Output.Format)
	}
	switch c.Trace.Format {
	case "auto", "yaml", "proto":
	default:
		return fmt.Errorf("trace.format must be auto, yaml or proto, got %q", c.Trace.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}
