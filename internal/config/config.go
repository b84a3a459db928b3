package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime settings shared by the server and dbtool.
type Config struct {
	Port        string  `yaml:"port"`
	DBDriver    string  `yaml:"db_driver"`
	DatabaseURL string  `yaml:"database_url"`
	SeedDir     string  `yaml:"seed_dir"`
	RedisURL    string  `yaml:"redis_url"`
	AMQPURL     string  `yaml:"amqp_url"`
	APIToken    string  `yaml:"api_token"`
	RateRPS     float64 `yaml:"rate_rps"`
	RateBurst   int     `yaml:"rate_burst"`
}

func Default() Config {
	return Config{
		Port:        "8080",
		DBDriver:    "sqlite",
		DatabaseURL: "data/app.db",
		SeedDir:     "data/seeds",
		RateRPS:     5,
		RateBurst:   10,
	}
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load applies defaults, then the YAML file at path (if it exists), then
// environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("load config: read %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("load config: parse %q: %w", path, err)
			}
		}
	}

	cfg.Port = Get("PORT", cfg.Port)
	cfg.DBDriver = Get("DB_DRIVER", cfg.DBDriver)
	cfg.DatabaseURL = Get("DATABASE_URL", cfg.DatabaseURL)
	cfg.SeedDir = Get("SEED_DIR", cfg.SeedDir)
	cfg.RedisURL = Get("REDIS_URL", cfg.RedisURL)
	cfg.AMQPURL = Get("AMQP_URL", cfg.AMQPURL)
	cfg.APIToken = Get("API_TOKEN", cfg.APIToken)

	if v := Get("RATE_RPS", ""); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("load config: RATE_RPS %q: %w", v, err)
		}
		cfg.RateRPS = rps
	}
	if v := Get("RATE_BURST", ""); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("load config: RATE_BURST %q: %w", v, err)
		}
		cfg.RateBurst = burst
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DBDriver {
	case "pgx", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be pgx or sqlite, got %q", c.DBDriver)
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.RateRPS <= 0 || c.RateBurst <= 0 {
		return fmt.Errorf("rate limit must be positive, got rps=%v burst=%d", c.RateRPS, c.RateBurst)
	}
	return nil
}
