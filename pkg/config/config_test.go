package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/chazu/toponame/pkg/geom"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults_Valid(t *testing.T) {
	d := Defaults()
	require.NoError(t, d.Validate())
	require.Equal(t, geom.DefaultPointTolerance, d.Tolerance.Point)
	require.Equal(t, geom.DefaultFaceCenterTolerance, d.Tolerance.FaceCenter)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
}

func TestLoad_WorkingDirectoryFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, `
tolerance:
  point: 0.01
  face_center: 0.05
engine:
  timeout: 2s
log:
  format: json
`)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	require.Equal(t, 0.01, cfg.Tolerance.Point)
	require.Equal(t, 0.05, cfg.Tolerance.FaceCenter)
	require.Equal(t, 2*time.Second, cfg.Engine.Timeout)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, "info", cfg.Log.Level, "unset keys keep defaults")
}

func TestLoad_ExplicitPath(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, t.TempDir(), "extrude:\n  height: 4.5\n")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	require.Equal(t, 4.5, cfg.Extrude.Height)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "nope.yaml")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, "tolerance:\n  point: 0.01\n  face_center: 0.05\n")
	t.Setenv("TOPONAME_TOLERANCE_POINT", "0.002")
	t.Setenv("TOPONAME_TRACE_ENABLED", "true")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	require.Equal(t, 0.002, cfg.Tolerance.Point)
	require.True(t, cfg.Trace.Enabled)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, "tolerance:\n  point: 0.1\n  face_center: 0.01\n")

	_, err := Load(viper.New(), "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "face_center")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero point tolerance", func(c *Config) { c.Tolerance.Point = 0 }, "tolerance.point must be positive"},
		{"negative face center", func(c *Config) { c.Tolerance.FaceCenter = -1 }, "tolerance.face_center must be positive"},
		{"face center tighter than point", func(c *Config) { c.Tolerance.FaceCenter = c.Tolerance.Point / 2 }, "must not be tighter"},
		{"zero height", func(c *Config) { c.Extrude.Height = 0 }, "extrude.height"},
		{"zero timeout", func(c *Config) { c.Engine.Timeout = 0 }, "engine.timeout"},
		{"zero mesh cells", func(c *Config) { c.Mesh.Cells = 0 }, "mesh.cells"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Defaults()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_NegativeHeightAllowed(t *testing.T) {
	c := Defaults()
	c.Extrude.Height = -3
	require.NoError(t, c.Validate(), "negative heights extrude against the normal")
}

func TestTolerancesAndEngineOptions(t *testing.T) {
	c := Defaults()
	c.Tolerance.Point = 0.2
	c.Tolerance.FaceCenter = 0.4
	tol := c.Tolerances()
	require.Equal(t, 0.2, tol.Point)
	require.Equal(t, 0.4, tol.FaceCenter)
	require.Len(t, c.EngineOptions(), 3)
}
