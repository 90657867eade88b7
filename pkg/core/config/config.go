// Package config loads service settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// DefaultPath is where the service looks for its settings file.
const DefaultPath = "config/valuation.yaml"

type Config struct {
	Server      Server      `yaml:"server"`
	Database    Database    `yaml:"database"`
	History     History     `yaml:"history"`
	Sensitivity Sensitivity `yaml:"sensitivity"`
	Logging     Logging     `yaml:"logging"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

// Database is optional; an empty URL selects the file-backed history.
type Database struct {
	URL string `yaml:"url"`
}

type History struct {
	Dir string `yaml:"dir"`
}

// Sensitivity grids are offsets added to the base growth and discount rates.
type Sensitivity struct {
	GrowthOffsets   []float64 `yaml:"growth_offsets"`
	DiscountOffsets []float64 `yaml:"discount_offsets"`
	Workers         int       `yaml:"workers"`
}

type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server:  Server{Addr: ":8080"},
		History: History{Dir: ".cache/valuations"},
		Sensitivity: Sensitivity{
			GrowthOffsets:   []float64{-0.02, -0.01, 0, 0.01, 0.02},
			DiscountOffsets: []float64{-0.02, -0.01, 0, 0.01, 0.02},
			Workers:         4,
		},
		Logging: Logging{Level: "info", Format: "json"},
	}
}

// Load reads path over the defaults and then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Server.Addr = getEnv("LISTEN_ADDR", c.Server.Addr)
	c.History.Dir = getEnv("HISTORY_DIR", c.History.Dir)
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)
	c.Sensitivity.Workers = getEnvAsInt("SENSITIVITY_WORKERS", c.Sensitivity.Workers)
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Sensitivity.Workers < 0 {
		return fmt.Errorf("sensitivity.workers must not be negative")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
