package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/ldtkloader/project"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "ldtk.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvAssetRoot, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, project.DefaultFeatures(), cfg.ProjectFeatures())
}

func TestLoadFile(t *testing.T) {
	t.Setenv(EnvAssetRoot, "")
	p := writeConfig(t, `
asset_root: game/assets
features:
  external_levels: false
log:
  level: debug
watch: true
`)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "game/assets", cfg.AssetRoot)
	assert.True(t, cfg.Watch)
	assert.Equal(t, project.Features{InternalLevels: true}, cfg.ProjectFeatures())
	assert.Equal(t, LogConfig{Level: "debug", Format: "text"}, cfg.Log)
}

func TestLoadEnv(t *testing.T) {
	p := writeConfig(t, "asset_root: from_file\n")
	t.Setenv(EnvConfigPath, p)
	t.Setenv(EnvAssetRoot, "from_env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.AssetRoot)
}

func TestLoadErrors(t *testing.T) {
	t.Setenv(EnvAssetRoot, "")
	cases := []struct {
		name string
		path string
	}{
		{"missing_file", filepath.Join(t.TempDir(), "missing.yaml")},
		{"bad_yaml", writeConfig(t, "features: [1, 2\n")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg, err := Load(c.path)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "config:")
		})
	}
}

func TestNewLogger(t *testing.T) {
	cases := []struct {
		name      string
		log       LogConfig
		wantDebug bool
		wantJSON  bool
	}{
		{"default", LogConfig{}, false, false},
		{"debug_text", LogConfig{Level: "debug", Format: "text"}, true, false},
		{"warn_json", LogConfig{Level: "WARN", Format: "json"}, false, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := Default()
			cfg.Log = c.log
			logger := cfg.NewLogger(&buf)

			logger.Debug("debug record")
			logger.Error("error record", "asset", "levels/world.ldtk")

			out := buf.String()
			assert.Equal(t, c.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug record")))
			assert.Contains(t, out, "error record")
			if c.wantJSON {
				var rec map[string]any
				require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
				assert.Equal(t, "levels/world.ldtk", rec["asset"])
			} else {
				assert.Contains(t, out, "asset=levels/world.ldtk")
			}
		})
	}
}
