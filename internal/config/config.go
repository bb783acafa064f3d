// Package config loads and saves the pixparcela settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all pixparcela settings.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Rates   RatesConfig   `toml:"rates"`
	Log     LogConfig     `toml:"log"`
	Server  ServerConfig  `toml:"server"`
}

// StorageConfig selects where budgets and session state are kept.
type StorageConfig struct {
	Backend     string `toml:"backend"`
	Path        string `toml:"path,omitempty"`
	RedisAddr   string `toml:"redis_addr,omitempty"`
	RedisPrefix string `toml:"redis_prefix,omitempty"`
}

// RatesConfig holds reference-rate lookup settings.
type RatesConfig struct {
	FallbackAnnualRate float64 `toml:"fallback_annual_rate"`
	MaxLookbackDays    int     `toml:"max_lookback_days"`
	BaseURL            string  `toml:"base_url,omitempty"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file,omitempty"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr      string `toml:"addr"`
	// RateLimit is requests per client and minute on endpoints that may
	// query the reference rate. Zero disables it.
	RateLimit int    `toml:"rate_limit"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend:   "sqlite",
			RedisAddr: "127.0.0.1:6379",
		},
		Rates: RatesConfig{
			FallbackAnnualRate: 10.0,
			MaxLookbackDays:    30,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:      "127.0.0.1:8788",
			RateLimit: 60,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pixparcela")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pixparcela")
}

// Path returns the full path to the default config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "pixparcela")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "pixparcela")
}

// DBPath returns the SQLite path from cfg, or the default under DataDir.
func DBPath(cfg Config) string {
	if cfg.Storage.Path != "" {
		return cfg.Storage.Path
	}
	return filepath.Join(DataDir(), "pixparcela.db")
}

// Load reads the config at path (Path() when empty), returning defaults if it
// doesn't exist. Environment overrides are applied last.
func Load(path string) (Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the local user
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// Save writes the config to path (Path() when empty).
func Save(path string, cfg Config) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // path comes from the local user
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists at path (Path() when empty).
func Exists(path string) bool {
	if path == "" {
		path = Path()
	}
	_, err := os.Stat(path)
	return err == nil
}

func applyEnv(cfg *Config) {
	if addr := os.Getenv("PIXPARCELA_REDIS_ADDR"); addr != "" {
		cfg.Storage.RedisAddr = addr
	}
	if lvl := os.Getenv("PIXPARCELA_LOG_LEVEL"); lvl != "" {
		cfg.Log.Level = lvl
	}
}
