// Package config loads vmbridge configuration from an optional JSON file
// with environment-variable overrides.
//
// Configuration is read once at startup, before the tool registry is
// populated; nothing reloads it at runtime.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Config is the full vmbridge configuration.
type Config struct {
	// PrlctlPath is the controller binary invoked for every tool call.
	PrlctlPath string `json:"prlctl_path"`

	// TimeoutSeconds bounds each controller invocation. Zero disables
	// the per-call timeout.
	TimeoutSeconds int `json:"timeout_seconds"`

	// LogLevel is a zap level string: debug, info, warn, error.
	LogLevel string `json:"log_level"`

	// ServerName and ServerVersion identify this server in the
	// initialize handshake.
	ServerName    string `json:"server_name"`
	ServerVersion string `json:"server_version"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		PrlctlPath:     "prlctl",
		TimeoutSeconds: 120,
		LogLevel:       "info",
		ServerName:     "vmbridge",
		ServerVersion:  "1.0.0",
	}
}

// Load reads the config file at path (if path is empty or the file does
// not exist, defaults apply) and then applies VMBRIDGE_* environment
// overrides on top.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Optional file; defaults stand.
		case err != nil:
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if cfg.PrlctlPath == "" {
		return cfg, fmt.Errorf("prlctl_path cannot be empty")
	}
	if cfg.TimeoutSeconds < 0 {
		return cfg, fmt.Errorf("timeout_seconds cannot be negative")
	}
	return cfg, nil
}

// applyEnv overlays VMBRIDGE_* variables onto cfg. Unset variables leave
// the existing value alone; an unparsable number is ignored rather than
// fatal.
func applyEnv(cfg *Config) {
	if v := os.Getenv("VMBRIDGE_PRLCTL_PATH"); v != "" {
		cfg.PrlctlPath = v
	}
	if v := os.Getenv("VMBRIDGE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("VMBRIDGE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
