package config

import (
	"os"
	"strconv"
)

// FromEnv overlays RINGLOG_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("RINGLOG_DEVICE_PATH"); v != "" {
		cfg.Device.Path = v
	}
	if v := os.Getenv("RINGLOG_DEVICE_ERASE_UNIT_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Device.EraseUnitSize = n
		}
	}
	if v := os.Getenv("RINGLOG_DEVICE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Device.Size = n
		}
	}
	if v := os.Getenv("RINGLOG_RECORD_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Record.Size = n
		}
	}
	if v := os.Getenv("RINGLOG_RECORD_TAG"); v != "" {
		if n, err := strconv.ParseUint(v, 0, 32); err == nil {
			cfg.Record.Tag = uint32(n)
		}
	}
	if v := os.Getenv("RINGLOG_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("RINGLOG_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
