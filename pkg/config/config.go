// Package config provides configuration types and defaults for toponame.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/chazu/toponame/pkg/engine"
	"github.com/chazu/toponame/pkg/geom"
	"github.com/chazu/toponame/pkg/topo"
)

// DefaultFile is the config file looked up in the working directory when no
// path is given.
const DefaultFile = ".toponame.yaml"

// EnvPrefix prefixes environment overrides: TOPONAME_TOLERANCE_POINT etc.
const EnvPrefix = "TOPONAME"

// Config holds all configuration options for toponame.
type Config struct {
	Tolerance ToleranceConfig `mapstructure:"tolerance"`
	Extrude   ExtrudeConfig   `mapstructure:"extrude"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Mesh      MeshConfig      `mapstructure:"mesh"`
	Log       LogConfig       `mapstructure:"log"`
	Trace     TraceConfig     `mapstructure:"trace"`
}

// ToleranceConfig holds the geometric comparison tolerances.
type ToleranceConfig struct {
	Point      float64 `mapstructure:"point"`
	FaceCenter float64 `mapstructure:"face_center"`
}

// ExtrudeConfig holds defaults for extrusions requested by sketch sources.
type ExtrudeConfig struct {
	Height float64 `mapstructure:"height"` // used when (extrude ...) has no :height
}

// EngineConfig holds sketch evaluation limits.
type EngineConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// MeshConfig controls region preview meshing.
type MeshConfig struct {
	Cells  int     `mapstructure:"cells"`  // marching cubes resolution
	Height float64 `mapstructure:"height"` // slab height of preview regions
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug", "info", "warn" or "error"
	Format string `mapstructure:"format"` // "text" or "json"
}

// TraceConfig controls span export.
type TraceConfig struct {
	// Enabled installs an sdk tracer provider with the stdout exporter.
	// When false the global no-op provider is used.
	Enabled bool `mapstructure:"enabled"`
}

// Defaults returns a Config with the package default values.
func Defaults() Config {
	return Config{
		Tolerance: ToleranceConfig{
			Point:      geom.DefaultPointTolerance,
			FaceCenter: geom.DefaultFaceCenterTolerance,
		},
		Extrude: ExtrudeConfig{Height: engine.DefaultHeight},
		Engine:  EngineConfig{Timeout: engine.EvalTimeout},
		Mesh:    MeshConfig{Cells: 100, Height: 1},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// SetDefaults registers every key with its default so environment
// overrides apply to keys absent from the config file.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("tolerance.point", d.Tolerance.Point)
	v.SetDefault("tolerance.face_center", d.Tolerance.FaceCenter)
	v.SetDefault("extrude.height", d.Extrude.Height)
	v.SetDefault("engine.timeout", d.Engine.Timeout)
	v.SetDefault("mesh.cells", d.Mesh.Cells)
	v.SetDefault("mesh.height", d.Mesh.Height)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("trace.enabled", d.Trace.Enabled)
}

// Load reads configuration into v and decodes it. Lookup order: path when
// non-empty, else DefaultFile in the working directory, else defaults only.
// Environment variables override file values. A missing explicit path is an
// error; a missing DefaultFile is not.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch {
	case path != "":
		v.SetConfigFile(path)
	default:
		if _, err := os.Stat(DefaultFile); err == nil {
			v.SetConfigFile(DefaultFile)
		}
	}
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Tolerance.Point <= 0 {
		errs = append(errs, fmt.Errorf("tolerance.point must be positive, got %v", c.Tolerance.Point))
	}
	if c.Tolerance.FaceCenter <= 0 {
		errs = append(errs, fmt.Errorf("tolerance.face_center must be positive, got %v", c.Tolerance.FaceCenter))
	}
	if c.Tolerance.Point > 0 && c.Tolerance.FaceCenter > 0 && c.Tolerance.FaceCenter < c.Tolerance.Point {
		errs = append(errs, fmt.Errorf("tolerance.face_center (%v) must not be tighter than tolerance.point (%v)",
			c.Tolerance.FaceCenter, c.Tolerance.Point))
	}
	if c.Extrude.Height == 0 {
		errs = append(errs, errors.New("extrude.height must not be zero"))
	}
	if c.Engine.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("engine.timeout must be positive, got %s", c.Engine.Timeout))
	}
	if c.Mesh.Cells <= 0 {
		errs = append(errs, fmt.Errorf("mesh.cells must be positive, got %d", c.Mesh.Cells))
	}
	if c.Mesh.Height <= 0 {
		errs = append(errs, fmt.Errorf("mesh.height must be positive, got %v", c.Mesh.Height))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be \"debug\", \"info\", \"warn\", or \"error\", got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be \"text\" or \"json\", got %q", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Tolerances returns the reconstruction tolerances.
func (c Config) Tolerances() topo.Tolerances {
	return topo.Tolerances{Point: c.Tolerance.Point, FaceCenter: c.Tolerance.FaceCenter}
}

// EngineOptions returns the sketch engine options.
func (c Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithTimeout(c.Engine.Timeout),
		engine.WithTolerance(c.Tolerance.Point),
		engine.WithDefaultHeight(c.Extrude.Height),
	}
}
