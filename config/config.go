package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration for TOML decoding ("1h", "30m")
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML values
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Config holds the tracker's runtime settings
type Config struct {
	DataDir  string   `toml:"data_dir"`
	CacheTTL Duration `toml:"cache_ttl"`
	LogLevel string   `toml:"log_level"`
}

// Default returns the built-in settings: CSV files under ./data, a one-hour
// read cache, info-level logging
func Default() Config {
	return Config{
		DataDir:  "data",
		CacheTTL: Duration{time.Hour},
		LogLevel: "info",
	}
}

// Load reads a TOML config file, falling back to defaults for a missing file
// and for any unset field
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	return cfg, nil
}
