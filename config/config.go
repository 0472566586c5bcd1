// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/freeroam/input"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen" toml:"screen"`
	Physics     PhysicsConfig     `yaml:"physics" toml:"physics"`
	Player      PlayerConfig      `yaml:"player" toml:"player"`
	Keybindings map[string]string `yaml:"keybindings" toml:"keybindings"`
	Telemetry   TelemetryConfig   `yaml:"telemetry" toml:"telemetry"`
	Logging     LoggingConfig     `yaml:"logging" toml:"logging"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-" toml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width" toml:"width"`
	Height    int `yaml:"height" toml:"height"`
	TargetFPS int `yaml:"target_fps" toml:"target_fps"`
}

// PhysicsConfig holds fixed-step parameters.
type PhysicsConfig struct {
	FixedHz          float64 `yaml:"fixed_hz" toml:"fixed_hz"`                       // Fixed steps per second
	MaxStepsPerFrame int     `yaml:"max_steps_per_frame" toml:"max_steps_per_frame"` // 0 = uncapped
}

// PlayerConfig holds spawn parameters for the controllable entity.
type PlayerConfig struct {
	Spawn [3]float64 `yaml:"spawn" toml:"spawn"` // World-space x, y, z
	Speed float64    `yaml:"speed" toml:"speed"` // Units per second
	Yaw   float64    `yaml:"yaw" toml:"yaw"`     // Initial rotation about +Y, radians
}

// TelemetryConfig holds perf logging parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window" toml:"stats_window"` // Frames between perf log lines
	PerfWindow  int `yaml:"perf_window" toml:"perf_window"`   // Frames averaged per perf sample
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"` // debug, info, warn, error
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	FixedStep   time.Duration
	FrameDelta  time.Duration
	SpawnVec    r3.Vec
	Keybindings input.Keybindings
	LogLevel    slog.Level
}

var global *Config

// Init loads path into the process-wide config.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML or TOML file, merging with embedded
// defaults. Files ending in .toml are decoded as TOML. If path is empty,
// only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if strings.EqualFold(filepath.Ext(path), ".toml") {
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate reports the first setting that cannot drive a run.
func (c *Config) Validate() error {
	if !(c.Physics.FixedHz > 0) {
		return fmt.Errorf("%w: physics.fixed_hz must be positive, got %v", ErrInvalid, c.Physics.FixedHz)
	}
	if c.Physics.MaxStepsPerFrame < 0 {
		return fmt.Errorf("%w: physics.max_steps_per_frame must not be negative", ErrInvalid)
	}
	if !(c.Player.Speed >= 0) {
		return fmt.Errorf("%w: player.speed must be non-negative, got %v", ErrInvalid, c.Player.Speed)
	}
	if c.Screen.TargetFPS < 0 {
		return fmt.Errorf("%w: screen.target_fps must not be negative", ErrInvalid)
	}
	if _, err := input.ParseKeybindings(c.Keybindings); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Refresh re-validates c and recomputes derived values after fields were
// changed in code.
func (c *Config) Refresh() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// computeDerived calculates values derived from loaded config.
// Validate must have succeeded.
func (c *Config) computeDerived() {
	c.Derived.FixedStep = time.Duration(float64(time.Second) / c.Physics.FixedHz)
	if c.Screen.TargetFPS > 0 {
		c.Derived.FrameDelta = time.Second / time.Duration(c.Screen.TargetFPS)
	} else {
		c.Derived.FrameDelta = c.Derived.FixedStep
	}
	c.Derived.SpawnVec = r3.Vec{X: c.Player.Spawn[0], Y: c.Player.Spawn[1], Z: c.Player.Spawn[2]}
	c.Derived.Keybindings, _ = input.ParseKeybindings(c.Keybindings)
	c.Derived.LogLevel, _ = parseLevel(c.Logging.Level)
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging.level: %w", err)
	}
	return lvl, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
