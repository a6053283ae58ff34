/*
Configuration for the blockcache harness binary.
The core packages take their parameters through constructors; only the binary
reads a config file. Missing fields fall back to sensible defaults after
unmarshal.
*/
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Sumith1896/blockcache/storage/buffer"
)

// Config is the harness configuration
type Config struct {
	Cache  CacheConfig  `yaml:"cache"`
	Device DeviceConfig `yaml:"device"`
	Log    LogConfig    `yaml:"log"`
}

// CacheConfig configures the buffer pool
type CacheConfig struct {
	// Capacity is the number of buffers in the pool, fixed at construction
	Capacity int `yaml:"capacity"`
}

// DeviceConfig configures the file-backed device manager
type DeviceConfig struct {
	// BaseDir is the directory holding the device files
	BaseDir string `yaml:"baseDir"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error
	Level string `yaml:"level"`
}

// Default returns the configuration used when no config file is given
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the config file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "os.ReadFile failed")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "yaml.Unmarshal failed")
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Cache.Capacity == 0 {
		cfg.Cache.Capacity = buffer.DefaultCapacity
	}
	if cfg.Device.BaseDir == "" {
		cfg.Device.BaseDir = "base/devices"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
