// Package config provides loading and environment overlay for the ringlog
// CLI and diag server. It exposes a Default() baseline, Load() for JSON or
// YAML files (by extension), and FromEnv() for RINGLOG_* overrides.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/ringlog.yaml"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	dev, _ := blockdev.OpenFileDevice(cfg.Device.Path, cfg.Device.EraseUnitSize, cfg.Device.Size)
package config
