package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ListenAddr      string
	MetricsAddr     string
	ConnIdleTimeout time.Duration
	LogLevel        string
}

func Default() Config {
	return Config{
		ListenAddr:  "127.0.0.1:6379",
		MetricsAddr: "",
		LogLevel:    "info",
	}
}

type fileConfig struct {
	ListenAddr        string `toml:"listen_addr"`
	MetricsAddr       string `toml:"metrics_addr"`
	ConnIdleTimeout   string `toml:"conn_idle_timeout"`
	ConnIdleTimeoutMS int64  `toml:"conn_idle_timeout_ms"`
	LogLevel          string `toml:"log_level"`
}

// Load reads a TOML config file over the defaults. Only keys present in the
// file override.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("conn_idle_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ConnIdleTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse conn_idle_timeout: %w", err)
		}
		cfg.ConnIdleTimeout = d
	}
	if meta.IsDefined("conn_idle_timeout_ms") {
		cfg.ConnIdleTimeout = time.Duration(raw.ConnIdleTimeoutMS) * time.Millisecond
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return fmt.Errorf("config missing listen_addr")
	}
	if cfg.ConnIdleTimeout < 0 {
		return fmt.Errorf("conn_idle_timeout must not be negative")
	}
	switch cfg.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}
	return nil
}
