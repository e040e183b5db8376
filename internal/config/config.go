package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/packer/internal/parser"
)

const (
	defaultPort           = "8080"
	defaultEnvFile        = ".env"
	defaultCacheSize      = 1024
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultLogLevel       = "info"
	defaultLogFormat      = "json"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > .env > Defaults
type Config struct {
	Port                 string
	Limits               parser.Limits
	CacheSize            int
	EnableMetrics        bool
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
	LogLevel             string
	LogFormat            string
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	Limits               yamlLimits    `yaml:"limits"`
	CacheSize            *int          `yaml:"cache_size"`
	EnableMetrics        *bool         `yaml:"enable_metrics"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
	Logging              yamlLogging   `yaml:"logging"`
}

// yamlLimits represents the validation limits section in YAML.
type yamlLimits struct {
	MaxItems         int    `yaml:"max_items"`
	MaxPackageWeight int    `yaml:"max_package_weight"`
	MaxItemWeight    string `yaml:"max_item_weight"`
	MaxItemCost      string `yaml:"max_item_cost"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// yamlLogging represents the logging section in YAML.
type yamlLogging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	EnvFile        string
	Port           *string
	RateLimitRPS   *float64
	RateLimitBurst *int
	LogLevel       *string
	LogFormat      *string
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > .env > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	envFile := ""
	if overrides != nil {
		envFile = overrides.EnvFile
	}
	if err := loadEnvFile(envFile); err != nil {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	// Environment variables sit below YAML
	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	// Load from YAML file if specified
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	// Validate final configuration
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		Limits:               parser.DefaultLimits(),
		CacheSize:            defaultCacheSize,
		EnableMetrics:        true,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
		LogLevel:             defaultLogLevel,
		LogFormat:            defaultLogFormat,
	}
}

// loadEnvFile populates unset environment variables from a dotenv file. The
// default .env is optional; an explicitly requested file must exist.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if err := applyYAMLLimits(&cfg.Limits, yamlCfg.Limits); err != nil {
		return err
	}

	if yamlCfg.CacheSize != nil {
		cfg.CacheSize = *yamlCfg.CacheSize
	}

	if yamlCfg.EnableMetrics != nil {
		cfg.EnableMetrics = *yamlCfg.EnableMetrics
	}

	durations := []struct {
		key    string
		raw    string
		target *time.Duration
	}{
		{"shutdown_grace_period", yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid %s %q", d.key, d.raw)
		}
		*d.target = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	if yamlCfg.RateLimit.RPS != nil && *yamlCfg.RateLimit.RPS >= 0 {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst != nil && *yamlCfg.RateLimit.Burst >= 0 {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	if yamlCfg.Logging.Level != "" {
		cfg.LogLevel = yamlCfg.Logging.Level
	}

	if yamlCfg.Logging.Format != "" {
		cfg.LogFormat = yamlCfg.Logging.Format
	}

	return nil
}

func applyYAMLLimits(limits *parser.Limits, y yamlLimits) error {
	if y.MaxItems != 0 {
		limits.MaxItems = y.MaxItems
	}
	if y.MaxPackageWeight != 0 {
		limits.MaxPackageWeight = y.MaxPackageWeight
	}
	if y.MaxItemWeight != "" {
		value, err := decimal.NewFromString(y.MaxItemWeight)
		if err != nil {
			return fmt.Errorf("invalid max_item_weight %q", y.MaxItemWeight)
		}
		limits.MaxItemWeight = value
	}
	if y.MaxItemCost != "" {
		value, err := decimal.NewFromString(y.MaxItemCost)
		if err != nil {
			return fmt.Errorf("invalid max_item_cost %q", y.MaxItemCost)
		}
		limits.MaxItemCost = value
	}
	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) error {
	if port := env("PORT"); port != "" {
		cfg.Port = port
	}

	if raw := env("PACKER_MAX_ITEMS"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("PACKER_MAX_ITEMS: invalid integer %q", raw)
		}
		cfg.Limits.MaxItems = value
	}

	if raw := env("PACKER_MAX_PACKAGE_WEIGHT"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("PACKER_MAX_PACKAGE_WEIGHT: invalid integer %q", raw)
		}
		cfg.Limits.MaxPackageWeight = value
	}

	if raw := env("PACKER_MAX_ITEM_WEIGHT"); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("PACKER_MAX_ITEM_WEIGHT: invalid decimal %q", raw)
		}
		cfg.Limits.MaxItemWeight = value
	}

	if raw := env("PACKER_MAX_ITEM_COST"); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("PACKER_MAX_ITEM_COST: invalid decimal %q", raw)
		}
		cfg.Limits.MaxItemCost = value
	}

	if raw := env("PACKER_CACHE_SIZE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.CacheSize = value
		}
	}

	if raw := env("PACKER_ENABLE_METRICS"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.EnableMetrics = value
		}
	}

	if rps := env("RATE_LIMIT_RPS"); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := env("RATE_LIMIT_BURST"); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	if level := env("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if format := env("LOG_FORMAT"); format != "" {
		cfg.LogFormat = format
	}

	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.LogFormat != nil && *overrides.LogFormat != "" {
		cfg.LogFormat = *overrides.LogFormat
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if cfg.CacheSize < 0 {
		return fmt.Errorf("cache size must be >= 0")
	}
	if err := cfg.Limits.Validate(); err != nil {
		return fmt.Errorf("validation limits: %w", err)
	}
	return nil
}
