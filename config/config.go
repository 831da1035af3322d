package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/ldtkloader/project"
)

const (
	EnvConfigPath = "LDTK_CONFIG"
	EnvAssetRoot  = "LDTK_ASSET_ROOT"
)

// Config is the configuration of a program hosting the project loader.
type Config struct {
	AssetRoot string         `yaml:"asset_root"`
	Features  FeaturesConfig `yaml:"features"`
	Log       LogConfig      `yaml:"log"`
	Watch     bool           `yaml:"watch"`
}

type FeaturesConfig struct {
	InternalLevels bool `yaml:"internal_levels"`
	ExternalLevels bool `yaml:"external_levels"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		AssetRoot: ".",
		Features:  FeaturesConfig{InternalLevels: true, ExternalLevels: true},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a YAML config file. Keys missing from the file keep their
// default value. If path is empty, LDTK_CONFIG is tried, and with neither set
// the defaults are returned. LDTK_ASSET_ROOT overrides asset_root.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if root := os.Getenv(EnvAssetRoot); root != "" {
		cfg.AssetRoot = root
	}
	if cfg.AssetRoot == "" {
		cfg.AssetRoot = "."
	}

	return cfg, nil
}

func (c *Config) ProjectFeatures() project.Features {
	return project.Features{
		InternalLevels: c.Features.InternalLevels,
		ExternalLevels: c.Features.ExternalLevels,
	}
}

// NewLogger builds a logger writing to w. Unknown levels mean info and any
// format other than "json" means text.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
