package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/segyhp/credit-risk-engine/internal/domain"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Business  BusinessConfig  `mapstructure:",squash"`
	Health    HealthConfig    `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string `mapstructure:"SERVER_PORT"`
	Host         string `mapstructure:"SERVER_HOST"`
	Env          string `mapstructure:"ENV"`
	ReadTimeout  string `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout string `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"DATABASE_DRIVER"`
	URL          string `mapstructure:"DATABASE_URL"`
	MaxOpenConns int    `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns int    `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
}

type RedisConfig struct {
	Host        string `mapstructure:"REDIS_HOST"`
	Port        string `mapstructure:"REDIS_PORT"`
	Password    string `mapstructure:"REDIS_PASSWORD"`
	DB          int    `mapstructure:"REDIS_DB"`
	ScenarioTTL string `mapstructure:"REDIS_SCENARIO_TTL"`
}

type SchedulerConfig struct {
	Spec     string `mapstructure:"SCHEDULER_SPEC"`
	Timezone string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	DefaultKeyRate        string `mapstructure:"DEFAULT_KEY_RATE"`
	DefaultRUONIARate     string `mapstructure:"DEFAULT_RUONIA_RATE"`
	MaxSchedulePeriods    int    `mapstructure:"MAX_SCHEDULE_PERIODS"`
	RecomputeDebounce     string `mapstructure:"RECOMPUTE_DEBOUNCE"`
	OptimisticMultiplier  string `mapstructure:"FALLBACK_OPTIMISTIC_MULTIPLIER"`
	PessimisticMultiplier string `mapstructure:"FALLBACK_PESSIMISTIC_MULTIPLIER"`
	DefaultMultiplier     string `mapstructure:"FALLBACK_DEFAULT_MULTIPLIER"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

var defaults = map[string]interface{}{
	"SERVER_PORT":                     "8080",
	"SERVER_HOST":                     "0.0.0.0",
	"ENV":                             "development",
	"SERVER_READ_TIMEOUT":             "15s",
	"SERVER_WRITE_TIMEOUT":            "30s",
	"DATABASE_DRIVER":                 "postgres",
	"DATABASE_URL":                    "",
	"DATABASE_MAX_OPEN_CONNS":         25,
	"DATABASE_MAX_IDLE_CONNS":         5,
	"REDIS_HOST":                      "localhost",
	"REDIS_PORT":                      "6379",
	"REDIS_PASSWORD":                  "",
	"REDIS_DB":                        0,
	"REDIS_SCENARIO_TTL":              "10m",
	"SCHEDULER_SPEC":                  "0 2 * * *",
	"SCHEDULER_TIMEZONE":              "Europe/Moscow",
	"LOG_LEVEL":                       "info",
	"LOG_FORMAT":                      "json",
	"DEFAULT_KEY_RATE":                "16.00",
	"DEFAULT_RUONIA_RATE":             "15.50",
	"MAX_SCHEDULE_PERIODS":            600,
	"RECOMPUTE_DEBOUNCE":              "300ms",
	"FALLBACK_OPTIMISTIC_MULTIPLIER":  "0.85",
	"FALLBACK_PESSIMISTIC_MULTIPLIER": "1.25",
	"FALLBACK_DEFAULT_MULTIPLIER":     "1.05",
	"HEALTH_CHECK_TIMEOUT":            "5s",
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// A missing .env is fine; variables already set in the environment win.
	_ = godotenv.Load()
	_ = godotenv.Load("deployments/.env")

	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Business.MaxSchedulePeriods <= 0 {
		return fmt.Errorf("MAX_SCHEDULE_PERIODS must be greater than 0")
	}

	rates := map[string]string{
		"DEFAULT_KEY_RATE":                c.Business.DefaultKeyRate,
		"DEFAULT_RUONIA_RATE":             c.Business.DefaultRUONIARate,
		"FALLBACK_OPTIMISTIC_MULTIPLIER":  c.Business.OptimisticMultiplier,
		"FALLBACK_PESSIMISTIC_MULTIPLIER": c.Business.PessimisticMultiplier,
		"FALLBACK_DEFAULT_MULTIPLIER":     c.Business.DefaultMultiplier,
	}
	for name, raw := range rates {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("%s must be a valid decimal: %w", name, err)
		}
		if d.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
	}

	durations := map[string]string{
		"SERVER_READ_TIMEOUT":  c.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT": c.Server.WriteTimeout,
		"REDIS_SCENARIO_TTL":   c.Redis.ScenarioTTL,
		"RECOMPUTE_DEBOUNCE":   c.Business.RecomputeDebounce,
		"HEALTH_CHECK_TIMEOUT": c.Health.Timeout,
	}
	for name, raw := range durations {
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("%s must be a valid duration: %w", name, err)
		}
	}

	if _, err := cron.ParseStandard(c.Scheduler.Spec); err != nil {
		return fmt.Errorf("SCHEDULER_SPEC must be a valid cron expression: %w", err)
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid time zone: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetDefaultRate returns the configured reference rate used when no rate
// history exists for indicator. FIXED has no default.
func (c *Config) GetDefaultRate(indicator domain.BaseRateIndicator) decimal.Decimal {
	var raw string
	switch indicator {
	case domain.IndicatorKeyRate:
		raw = c.Business.DefaultKeyRate
	case domain.IndicatorRUONIA:
		raw = c.Business.DefaultRUONIARate
	default:
		return decimal.Zero
	}
	rate, _ := decimal.NewFromString(raw)
	return rate
}

// GetFallbackMultipliers returns the optimistic, pessimistic and default
// scenario multipliers.
func (c *Config) GetFallbackMultipliers() (optimistic, pessimistic, other decimal.Decimal) {
	optimistic, _ = decimal.NewFromString(c.Business.OptimisticMultiplier)
	pessimistic, _ = decimal.NewFromString(c.Business.PessimisticMultiplier)
	other, _ = decimal.NewFromString(c.Business.DefaultMultiplier)
	return optimistic, pessimistic, other
}

func (c *Config) GetRecomputeDebounce() time.Duration {
	d, _ := time.ParseDuration(c.Business.RecomputeDebounce)
	return d
}

func (c *Config) GetScenarioCacheTTL() time.Duration {
	d, _ := time.ParseDuration(c.Redis.ScenarioTTL)
	return d
}

func (c *Config) GetReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ReadTimeout)
	return d
}

func (c *Config) GetWriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.WriteTimeout)
	return d
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Health.Timeout)
	return timeout
}

// GetLocation returns the scheduler time zone.
func (c *Config) GetLocation() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RedisAddr returns host:port for the redis client.
func (c *Config) RedisAddr() string {
	return strings.TrimSpace(c.Redis.Host) + ":" + strings.TrimSpace(c.Redis.Port)
}
