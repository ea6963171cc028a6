package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	ExportRoot string `toml:"export_root"`
	DBPath     string `toml:"db_path"`
	Format     string `toml:"format"`    // text, json or yaml
	Color      string `toml:"color"`     // auto, always or never
	LogLevel   string `toml:"log_level"` // logrus level name
	Top        int    `toml:"top"`       // ranking rows to print, 0 = all
}

// Load reads ~/.config/chatstat/config.toml over the defaults and then
// applies CHATSTAT_* environment overrides, including those from a .env
// file in the working directory.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ExportRoot: filepath.Join(home, "WhatsApp"),
		DBPath:     filepath.Join(home, ".config", "chatstat", "chatstat.db"),
		Format:     "text",
		Color:      "auto",
		LogLevel:   "warning",
	}

	// a missing .env is the normal case
	_ = godotenv.Load()

	cfgPath := os.Getenv("CHATSTAT_CONFIG")
	if cfgPath == "" {
		cfgPath = filepath.Join(home, ".config", "chatstat", "config.toml")
	}
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	// expand ~ in paths
	cfg.ExportRoot = expandHome(cfg.ExportRoot, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("CHATSTAT_EXPORT_ROOT"); v != "" {
		cfg.ExportRoot = v
	}
	if v := os.Getenv("CHATSTAT_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CHATSTAT_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("CHATSTAT_COLOR"); v != "" {
		cfg.Color = v
	}
	if v := os.Getenv("CHATSTAT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CHATSTAT_TOP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CHATSTAT_TOP: %w", err)
		}
		cfg.Top = n
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("config: unknown format %q", c.Format)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("config: unknown color mode %q", c.Color)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Top < 0 {
		return fmt.Errorf("config: top must not be negative")
	}
	return nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
