package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("toml", func(t *testing.T) {
		path := writeFile(t, "stress.toml", `
[stress]
duration = "2s"
entities = 500
spaces = 2

[world]
event_mode = "immediate"

[logging]
format = "json"
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, cfg.Stress.Duration)
		assert.Equal(t, 500, cfg.Stress.Entities)
		assert.Equal(t, 2, cfg.Stress.Spaces)
		assert.Equal(t, "immediate", cfg.World.EventMode)
		assert.Equal(t, "json", cfg.Logging.Format)

		// untouched keys keep their defaults
		assert.Equal(t, 100, cfg.Stress.ChurnPerFrame)
		assert.Equal(t, 1024, cfg.World.DefaultPoolSize)
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, "stress.yaml", `
stress:
  duration: 3s
  churn_per_frame: 7
  profile: mem
world:
  default_pool_size: 64
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 3*time.Second, cfg.Stress.Duration)
		assert.Equal(t, 7, cfg.Stress.ChurnPerFrame)
		assert.Equal(t, "mem", cfg.Stress.Profile)
		assert.Equal(t, 64, cfg.World.DefaultPoolSize)
		assert.Equal(t, 10000, cfg.Stress.Entities)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, "stress.json", `{}`)
		_, err := Load(path)
		assert.ErrorContains(t, err, "unsupported extension")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.ErrorContains(t, err, "read config")
	})

	t.Run("malformed", func(t *testing.T) {
		path := writeFile(t, "bad.toml", "[stress\nentities = ")
		_, err := Load(path)
		assert.ErrorContains(t, err, "parse config")
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeFile(t, "bad.yml", "stress:\n  spaces: 0\n")
		_, err := Load(path)
		assert.ErrorContains(t, err, "stress.spaces")
	})
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	for name, mutate := range map[string]func(*Config){
		"duration":   func(c *Config) { c.Stress.Duration = 0 },
		"entities":   func(c *Config) { c.Stress.Entities = -1 },
		"churn":      func(c *Config) { c.Stress.ChurnPerFrame = -5 },
		"profile":    func(c *Config) { c.Stress.Profile = "block" },
		"event mode": func(c *Config) { c.World.EventMode = "eager" },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
