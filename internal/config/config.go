// Package config loads server settings from .env, the environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every server setting.
type Config struct {
	Port    string
	GinMode string

	EnableDB    bool
	DatabaseURL string
	StoreDriver string
	SQLitePath  string
	CSVPath     string

	RulesFile string

	LogLevel  string
	LogFormat string

	CacheSize        int
	RateLimitRPS     float64
	RateLimitBurst   int
	CORSAllowOrigins []string

	BreakerFailures int
	BreakerTimeout  time.Duration
}

var keys = []string{
	"PORT", "GIN_MODE", "ENABLE_DB", "DATABASE_URL", "STORE_DRIVER", "SQLITE_PATH", "CSV_PATH",
	"RULES_FILE", "LOG_LEVEL", "LOG_FORMAT", "CACHE_SIZE", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"CORS_ALLOW_ORIGINS", "BREAKER_FAILURES", "BREAKER_TIMEOUT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("ENABLE_DB", false)
	v.SetDefault("STORE_DRIVER", "")
	v.SetDefault("SQLITE_PATH", "data/submissions.db")
	v.SetDefault("CSV_PATH", "data/submissions.csv")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CACHE_SIZE", 256)
	v.SetDefault("RATE_LIMIT_RPS", 5.0)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("BREAKER_FAILURES", 5)
	v.SetDefault("BREAKER_TIMEOUT", "30s")
}

// Load reads .env (if present), an optional config file and the environment,
// in increasing order of precedence. CONFIG_FILE names the file; otherwise
// symptomcheck.yaml in the working directory is used when it exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("symptomcheck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		Port:             v.GetString("PORT"),
		GinMode:          v.GetString("GIN_MODE"),
		EnableDB:         v.GetBool("ENABLE_DB"),
		DatabaseURL:      v.GetString("DATABASE_URL"),
		StoreDriver:      strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		SQLitePath:       v.GetString("SQLITE_PATH"),
		CSVPath:          v.GetString("CSV_PATH"),
		RulesFile:        v.GetString("RULES_FILE"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        strings.ToLower(v.GetString("LOG_FORMAT")),
		CacheSize:        v.GetInt("CACHE_SIZE"),
		RateLimitRPS:     v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:   v.GetInt("RATE_LIMIT_BURST"),
		CORSAllowOrigins: splitList(v.GetString("CORS_ALLOW_ORIGINS")),
		BreakerFailures:  v.GetInt("BREAKER_FAILURES"),
		BreakerTimeout:   v.GetDuration("BREAKER_TIMEOUT"),
	}

	if cfg.StoreDriver == "" {
		cfg.StoreDriver = "memory"
		if cfg.EnableDB {
			cfg.StoreDriver = "postgres"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if c.EnableDB && c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required when ENABLE_DB=true"))
	}
	switch c.StoreDriver {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" && !c.EnableDB {
			errs = append(errs, errors.New("DATABASE_URL is required for STORE_DRIVER=postgres"))
		}
	case "sqlite":
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for STORE_DRIVER=sqlite"))
		}
	case "csv":
		if c.CSVPath == "" {
			errs = append(errs, errors.New("CSV_PATH is required for STORE_DRIVER=csv"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q must be memory, sqlite, csv or postgres", c.StoreDriver))
	}

	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q must be json or text", c.LogFormat))
	}
	if c.CacheSize < 0 {
		errs = append(errs, errors.New("CACHE_SIZE must not be negative"))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must not be negative"))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be at least 1 when rate limiting is on"))
	}
	if c.BreakerFailures < 1 {
		errs = append(errs, errors.New("BREAKER_FAILURES must be at least 1"))
	}
	if c.BreakerTimeout <= 0 {
		errs = append(errs, errors.New("BREAKER_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
