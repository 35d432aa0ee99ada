// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

// Package config loads realm configuration from YAML files and command-line
// flags, validating files against a generated JSON Schema before binding.
package config

import (
	"log/slog"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/alphapenguin/connrealm/internal/realm"
)

// File is the on-disk configuration shape.
type File struct {
	Realm   RealmSettings   `koanf:"realm" json:"realm" yaml:"realm"`
	Log     LogSettings     `koanf:"log" json:"log,omitempty" yaml:"log"`
	Metrics MetricsSettings `koanf:"metrics" json:"metrics,omitempty" yaml:"metrics"`
}

// RealmSettings mirrors realm.Config.
type RealmSettings struct {
	ResourceName      string `koanf:"resource_name" json:"resource_name,omitempty" yaml:"resource_name,omitempty" jsonschema:"description=Registry name of the connection factory (factory mode); takes precedence over direct mode"`
	DriverName        string `koanf:"driver_name" json:"driver_name,omitempty" yaml:"driver_name,omitempty" jsonschema:"description=Registered driver name (direct mode)"`
	ConnectionAddress string `koanf:"connection_address" json:"connection_address,omitempty" yaml:"connection_address,omitempty" jsonschema:"description=Connection target for direct mode; must not embed credentials"`
	RoleQuery         string `koanf:"role_query" json:"role_query,omitempty" yaml:"role_query,omitempty" jsonschema:"description=Optional single-parameter query returning role names in its first column"`
	UseLocalScope     bool   `koanf:"use_local_scope" json:"use_local_scope,omitempty" yaml:"use_local_scope,omitempty" jsonschema:"description=Resolve resource_name in the caller-local registry scope"`
}

// LogSettings configures structured logging.
type LogSettings struct {
	Format string `koanf:"format" json:"format,omitempty" yaml:"format,omitempty" jsonschema:"enum=json,enum=text"`
	Level  string `koanf:"level" json:"level,omitempty" yaml:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// MetricsSettings configures the optional observability server.
type MetricsSettings struct {
	Addr string `koanf:"addr" json:"addr,omitempty" yaml:"addr,omitempty" jsonschema:"description=Listen address for /metrics and health probes; empty disables"`
}

// Default returns the configuration used when no file or flags are given.
func Default() File {
	return File{
		Log: LogSettings{
			Format: "json",
			Level:  "info",
		},
	}
}

// flagKeys maps CLI flag names onto config keys. Flags not listed here are
// CLI-only and never reach the config map.
var flagKeys = map[string]string{
	"resource-name":      "realm.resource_name",
	"driver-name":        "realm.driver_name",
	"connection-address": "realm.connection_address",
	"role-query":         "realm.role_query",
	"local-scope":        "realm.use_local_scope",
	"log-format":         "log.format",
	"log-level":          "log.level",
	"metrics-addr":       "metrics.addr",
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (validated against the schema first), then explicit flag overrides.
// Both path and flags may be empty/nil.
func Load(path string, flags *pflag.FlagSet) (File, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		raw, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
		if err != nil {
			return File{}, oops.With("path", path).Wrap(err)
		}
		if err := ValidateSchema(raw); err != nil {
			return File{}, oops.With("path", path).Wrap(err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return File{}, oops.With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			mapped, ok := flagKeys[key]
			if !ok {
				return "", nil
			}
			return mapped, value
		})
		if err := k.Load(provider, nil); err != nil {
			return File{}, oops.With("operation", "load flags").Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return File{}, oops.With("operation", "unmarshal config").Wrap(err)
	}
	return cfg, nil
}

// RealmConfig converts the file settings into a realm.Config.
func (f File) RealmConfig() realm.Config {
	return realm.Config{
		ResourceName:      f.Realm.ResourceName,
		DriverName:        f.Realm.DriverName,
		ConnectionAddress: f.Realm.ConnectionAddress,
		RoleQuery:         f.Realm.RoleQuery,
		UseLocalScope:     f.Realm.UseLocalScope,
	}
}

// Validate checks both the ambient settings and the realm mode invariants.
func (f File) Validate() error {
	if f.Log.Format != "" && f.Log.Format != "json" && f.Log.Format != "text" {
		return oops.With("format", f.Log.Format).
			Errorf("log format must be 'json' or 'text'")
	}
	if _, err := f.LogLevel(); err != nil {
		return err
	}
	if err := f.RealmConfig().Validate(); err != nil {
		return err //nolint:wrapcheck // realm validation errors already carry codes
	}
	return nil
}

// LogLevel parses the configured level name.
func (f File) LogLevel() (slog.Level, error) {
	switch f.Log.Level {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, oops.With("level", f.Log.Level).
			Errorf("log level must be one of debug, info, warn, error")
	}
}
