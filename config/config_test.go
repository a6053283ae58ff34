package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumith1896/blockcache/storage/buffer"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, buffer.DefaultCapacity, cfg.Cache.Capacity)
	assert.Equal(t, "base/devices", cfg.Device.BaseDir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad(t *testing.T) {
	t.Run("explicit values are kept", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
cache:
  capacity: 16
device:
  baseDir: /tmp/devices
log:
  level: debug
`
		require.Nil(t, os.WriteFile(path, []byte(content), 0600))

		cfg, err := Load(path)
		assert.Nil(t, err)
		assert.Equal(t, 16, cfg.Cache.Capacity)
		assert.Equal(t, "/tmp/devices", cfg.Device.BaseDir)
		assert.Equal(t, "debug", cfg.Log.Level)
	})
	t.Run("missing fields fall back to defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.Nil(t, os.WriteFile(path, []byte("cache:\n  capacity: 8\n"), 0600))

		cfg, err := Load(path)
		assert.Nil(t, err)
		assert.Equal(t, 8, cfg.Cache.Capacity)
		assert.Equal(t, "base/devices", cfg.Device.BaseDir)
		assert.Equal(t, "info", cfg.Log.Level)
	})
	t.Run("missing file fails", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.NotNil(t, err)
	})
	t.Run("malformed yaml fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.Nil(t, os.WriteFile(path, []byte("cache: ["), 0600))
		_, err := Load(path)
		assert.NotNil(t, err)
	})
}
