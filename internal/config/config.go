// Package config loads the ecs-stress harness configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Stress  StressConfig  `toml:"stress" yaml:"stress"`
	World   WorldConfig   `toml:"world" yaml:"world"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

type StressConfig struct {
	Duration       time.Duration `toml:"duration" yaml:"duration"`
	Entities       int           `toml:"entities" yaml:"entities"`
	Spaces         int           `toml:"spaces" yaml:"spaces"`
	ChurnPerFrame  int           `toml:"churn_per_frame" yaml:"churn_per_frame"` // entities destroyed and respawned each frame
	Seed           int64         `toml:"seed" yaml:"seed"`
	GCPauseMetrics bool          `toml:"gc_pause_metrics" yaml:"gc_pause_metrics"`
	Profile        string        `toml:"profile" yaml:"profile"` // "", "cpu" or "mem"
}

type WorldConfig struct {
	DefaultPoolSize int    `toml:"default_pool_size" yaml:"default_pool_size"`
	EventMode       string `toml:"event_mode" yaml:"event_mode"` // "queued" or "immediate"
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

// Load reads path on top of the defaults. The decoder is chosen by extension:
// .toml, or .yaml/.yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read config %s", path)
	}
	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, eris.Errorf("config %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, eris.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate rejects values the harness cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Stress.Duration <= 0:
		return eris.New("stress.duration must be positive")
	case c.Stress.Entities < 0:
		return eris.New("stress.entities must not be negative")
	case c.Stress.Spaces < 1:
		return eris.New("stress.spaces must be at least 1")
	case c.Stress.ChurnPerFrame < 0:
		return eris.New("stress.churn_per_frame must not be negative")
	}
	switch c.Stress.Profile {
	case "", "cpu", "mem":
	default:
		return eris.Errorf("stress.profile %q: want cpu or mem", c.Stress.Profile)
	}
	switch c.World.EventMode {
	case "queued", "immediate":
	default:
		return eris.Errorf("world.event_mode %q: want queued or immediate", c.World.EventMode)
	}
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Stress: StressConfig{
			Duration:      10 * time.Second,
			Entities:      10000,
			Spaces:        4,
			ChurnPerFrame: 100,
			Seed:          1,
		},
		World: WorldConfig{
			DefaultPoolSize: 1024,
			EventMode:       "queued",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
