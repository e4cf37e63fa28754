package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	Device DeviceConfig `json:"device" yaml:"device"`
	Record RecordConfig `json:"record" yaml:"record"`

	// Listen is the diag server address for `ringlog serve`.
	Listen string `json:"listen" yaml:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel" yaml:"logLevel"`
}

// DeviceConfig describes the file-backed partition.
type DeviceConfig struct {
	Path          string `json:"path" yaml:"path"`
	EraseUnitSize int    `json:"eraseUnitSize" yaml:"eraseUnitSize"`
	Size          int64  `json:"size" yaml:"size"`
}

// RecordConfig fixes the record shape the partition stores.
type RecordConfig struct {
	Size int    `json:"size" yaml:"size"`
	Tag  uint32 `json:"tag" yaml:"tag"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Device: DeviceConfig{
			Path:          "ringlog.img",
			EraseUnitSize: 4096,
			Size:          4096 * 16,
		},
		Record: RecordConfig{
			Size: 64,
			Tag:  0x524C4F47, // "RLOG"
		},
		Listen:   "127.0.0.1:7615",
		LogLevel: "info",
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If
// path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine could not be built from.
func (c Config) Validate() error {
	if c.Device.Path == "" {
		return fmt.Errorf("config: device.path is required")
	}
	if c.Device.EraseUnitSize <= 0 {
		return fmt.Errorf("config: device.eraseUnitSize must be positive")
	}
	if c.Device.Size <= 0 || c.Device.Size%int64(c.Device.EraseUnitSize) != 0 {
		return fmt.Errorf("config: device.size %d must be a positive multiple of eraseUnitSize %d",
			c.Device.Size, c.Device.EraseUnitSize)
	}
	if c.Record.Size <= 0 {
		return fmt.Errorf("config: record.size must be positive")
	}
	return nil
}
