// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for StateScope
// daemons.
//
// Configuration comes from a single YAML file named by either the
// STATESCOPE_CONFIG environment variable or a --config flag. There is
// no automatic discovery and environment variables never override
// file values; the one expansion performed is ${VAR} / ${VAR:-default}
// substitution inside path-valued fields, for portability across
// machines.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/statescope/statescope/wire"
)

// Config is the full configuration for a StateScope daemon.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Domain is the src tag stamped on every outbound record. It
	// identifies the producing system to stream consumers.
	Domain string `yaml:"domain"`

	// ServiceName is the hello record's banner text.
	ServiceName string `yaml:"service_name"`

	// Stream configures the TCP stream server.
	Stream StreamConfig `yaml:"stream"`

	// Control configures the control socket.
	Control ControlConfig `yaml:"control"`

	// Simulation configures the synthetic machine behind the mock
	// daemon. Ignored by embedders that bring a real provider.
	Simulation SimulationConfig `yaml:"simulation"`
}

// StreamConfig configures the TCP stream server.
type StreamConfig struct {
	// Address is the host:port the stream server binds.
	Address string `yaml:"address"`

	// Interval is the broadcast scheduler interval.
	Interval Duration `yaml:"interval"`

	// Tier is the verbosity tier for scheduled updates: minimal,
	// standard, or full.
	Tier string `yaml:"tier"`

	// Enabled controls whether scheduled broadcasts run at startup.
	// Event-driven broadcasts and the control surface work either way.
	Enabled bool `yaml:"enabled"`
}

// ControlConfig configures the unix control socket.
type ControlConfig struct {
	// Socket is the control socket path. Supports ${VAR} expansion.
	Socket string `yaml:"socket"`
}

// SimulationConfig configures the mock daemon's synthetic machine.
type SimulationConfig struct {
	// Seed initializes the simulated machine state.
	Seed int64 `yaml:"seed"`

	// CyclesPerUpdate is how many simulated cycles elapse between
	// consecutive incremental updates.
	CyclesPerUpdate uint64 `yaml:"cycles_per_update"`
}

// Default returns the default configuration: loopback stream server on
// the traditional debug port, a control socket under the system temp
// directory, 100ms standard-tier broadcasts.
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		Domain:      "sim",
		ServiceName: "StateScope Debug Stream",
		Stream: StreamConfig{
			Address:  "127.0.0.1:65505",
			Interval: Duration(100 * time.Millisecond),
			Tier:     wire.TierStandard.String(),
			Enabled:  true,
		},
		Control: ControlConfig{
			Socket: "${TMPDIR:-/tmp}/statescope-control.sock",
		},
		Simulation: SimulationConfig{
			Seed:            1,
			CyclesPerUpdate: 1017,
		},
	}
}

// Load loads configuration from the path in STATESCOPE_CONFIG. Fails
// if the variable is unset; use LoadFile when the caller has a --config
// flag.
func Load() (*Config, error) {
	path := os.Getenv("STATESCOPE_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("STATESCOPE_CONFIG environment variable not set; " +
			"set it to your statescope.yaml path, or pass --config")
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path, merged over Default().
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.ExpandVariables()
	return cfg, nil
}

// ExpandVariables expands ${VAR} patterns in path-valued fields. Load
// and LoadFile run it automatically; call it directly when starting
// from Default(), whose control socket path uses ${TMPDIR:-/tmp}.
func (c *Config) ExpandVariables() {
	c.Control.Socket = expandVars(c.Control.Socket)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Domain == "" {
		errs = append(errs, fmt.Errorf("domain is required"))
	}
	if c.ServiceName == "" {
		errs = append(errs, fmt.Errorf("service_name is required"))
	}

	if c.Stream.Address == "" {
		errs = append(errs, fmt.Errorf("stream.address is required"))
	} else if _, _, err := net.SplitHostPort(c.Stream.Address); err != nil {
		errs = append(errs, fmt.Errorf("stream.address: %w", err))
	}
	if c.Stream.Interval <= 0 {
		errs = append(errs, fmt.Errorf("stream.interval must be positive, got %v", time.Duration(c.Stream.Interval)))
	}
	if _, err := wire.ParseTier(c.Stream.Tier); err != nil {
		errs = append(errs, fmt.Errorf("stream.tier: %w", err))
	}

	if c.Control.Socket == "" {
		errs = append(errs, fmt.Errorf("control.socket is required"))
	}

	if c.Simulation.CyclesPerUpdate == 0 {
		errs = append(errs, fmt.Errorf("simulation.cycles_per_update must be positive"))
	}

	return errors.Join(errs...)
}

// Level returns the slog level for LogLevel. Call Validate first; an
// unknown level falls back to info here rather than failing.
func (c *Config) Level() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log_level must be debug, info, warn, or error, got %q", s)
	}
}

// Duration is a time.Duration that YAML-decodes from strings like
// "100ms" or "2s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
