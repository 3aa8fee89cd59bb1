package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables before they are mapped
// onto config keys, so FATCA_OUTPUT_TTL sets output_ttl.
const EnvPrefix = "FATCA_"

type Config struct {
	Port string `koanf:"port"`

	// Templates and generated files
	TemplateDir  string `koanf:"template_dir"`
	OutputDir    string `koanf:"output_dir"`
	DownloadName string `koanf:"download_name"`

	// Usage counter
	CounterPath string `koanf:"counter_path"`

	// Retention
	OutputTTL     time.Duration `koanf:"output_ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// Request limits
	MaxFormBytes  int64   `koanf:"max_form_bytes"`
	GenerateRate  float64 `koanf:"generate_rate"`
	GenerateBurst int     `koanf:"generate_burst"`

	// Render statistics window
	StatsWindow time.Duration `koanf:"stats_window"`

	LogLevel string `koanf:"log_level"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"port":           "8090",
		"template_dir":   "templates/word_templates",
		"output_dir":     "output",
		"download_name":  "Demande_effacement_FATCA.docx",
		"counter_path":   "data/counter.txt",
		"output_ttl":     "24h",
		"sweep_interval": "10m",
		"max_form_bytes": 65536,
		"generate_rate":  5.0,
		"generate_burst": 10,
		"stats_window":   "1h",
		"log_level":      "info",
	}
}

// Load builds the configuration from defaults, then the TOML file at path
// (skipped when path is empty), then FATCA_* environment variables.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// PathFromEnv returns the config file named by FATCA_CONFIG, if any.
func PathFromEnv() string {
	return os.Getenv(EnvPrefix + "CONFIG")
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.TemplateDir == "" {
		return fmt.Errorf("template_dir is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.CounterPath == "" {
		return fmt.Errorf("counter_path is required")
	}
	if c.DownloadName == "" {
		return fmt.Errorf("download_name is required")
	}
	if c.OutputTTL <= 0 {
		return fmt.Errorf("output_ttl must be positive, got %s", c.OutputTTL)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive, got %s", c.SweepInterval)
	}
	if c.MaxFormBytes <= 0 {
		return fmt.Errorf("max_form_bytes must be positive, got %d", c.MaxFormBytes)
	}
	if c.GenerateRate <= 0 || c.GenerateBurst <= 0 {
		return fmt.Errorf("generate_rate and generate_burst must be positive")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}
