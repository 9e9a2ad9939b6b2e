// Package config loads service configuration from YAML, .env and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"roulette-lab/internal/domain"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config is the service configuration.
type Config struct {
	Environment string          `yaml:"environment" default:"development"`
	Server      ServerConfig    `yaml:"server"`
	Log         LogConfig       `yaml:"log"`
	Storage     StorageConfig   `yaml:"storage"`
	Redis       RedisConfig     `yaml:"redis"`
	Analysis    AnalysisConfig  `yaml:"analysis"`
	Scheduler   SchedulerConfig `yaml:"scheduler"`

	Strategies []domain.StrategyConfig `yaml:"strategies"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	CORSOrigins     []string      `yaml:"cors_origins" default:"[\"*\"]"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"json"`
}

// StorageConfig selects the spin / daily streak backend.
type StorageConfig struct {
	Backend       string `yaml:"backend" default:"memory"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	PostgresConns int32  `yaml:"postgres_max_conns" default:"10"`
	ClickHouseDSN string `yaml:"clickhouse_dsn"` // optional stats snapshot store
	Migrate       bool   `yaml:"migrate"`
}

// RedisConfig holds the optional Redis cache front and locker settings.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr" default:"localhost:6379"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix" default:"roulette"`
	TTL      time.Duration `yaml:"ttl" default:"168h"`
}

// AnalysisConfig holds analysis defaults.
type AnalysisConfig struct {
	LiveWindow      int           `yaml:"live_window" default:"500"`
	DefaultAttempts int           `yaml:"default_attempts" default:"3"`
	LockTTL         time.Duration `yaml:"lock_ttl" default:"30s"`
}

// SchedulerConfig holds nightly precompute settings.
type SchedulerConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Spec        string `yaml:"spec" default:"10 0 * * *"`
	CatchUpDays int    `yaml:"catch_up_days" default:"7"`
}

// Load reads the YAML file at path (optional when empty), applies defaults and
// environment overrides, and validates the result. A .env file in the working
// directory is loaded first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	c.applyEnv()
	if len(c.Strategies) == 0 {
		c.Strategies = DefaultStrategies()
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ROULETTE_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("ROULETTE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("ROULETTE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ROULETTE_STORAGE"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Storage.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		c.Storage.ClickHouseDSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("storage.postgres_dsn is required for postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be %q or %q, got %q", BackendMemory, BackendPostgres, c.Storage.Backend))
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required when redis is enabled"))
	}

	if c.Analysis.LiveWindow <= 0 {
		errs = append(errs, errors.New("analysis.live_window must be positive"))
	}
	if !domain.ValidAttempts(c.Analysis.DefaultAttempts) {
		errs = append(errs, fmt.Errorf("analysis.default_attempts must be %d..%d", domain.MinAttempts, domain.MaxAttempts))
	}

	if c.Scheduler.Enabled {
		if _, err := cron.ParseStandard(c.Scheduler.Spec); err != nil {
			errs = append(errs, fmt.Errorf("scheduler.spec: %w", err))
		}
	}
	if c.Scheduler.CatchUpDays < 0 {
		errs = append(errs, errors.New("scheduler.catch_up_days must not be negative"))
	}

	seen := make(map[string]struct{}, len(c.Strategies))
	for i, s := range c.Strategies {
		if strings.TrimSpace(s.ID) == "" {
			errs = append(errs, fmt.Errorf("strategies[%d].id is required", i))
			continue
		}
		if _, dup := seen[s.ID]; dup {
			errs = append(errs, fmt.Errorf("strategies[%d]: duplicate id %q", i, s.ID))
		}
		seen[s.ID] = struct{}{}
	}

	return errors.Join(errs...)
}

// DefaultStrategies is the catalog used when the configuration lists none.
func DefaultStrategies() []domain.StrategyConfig {
	six, two := 6, 2
	return []domain.StrategyConfig{
		{ID: "red", Name: "Red numbers", StrategyType: domain.StrategyTypeFixed, Preset: "red"},
		{ID: "black", Name: "Black numbers", StrategyType: domain.StrategyTypeFixed, Preset: "black"},
		{ID: "even", Name: "Even numbers", StrategyType: domain.StrategyTypeFixed, Preset: "even"},
		{ID: "odd", Name: "Odd numbers", StrategyType: domain.StrategyTypeFixed, Preset: "odd"},
		{ID: "dozen1", Name: "First dozen", StrategyType: domain.StrategyTypeFixed, Preset: "dozen1"},
		{ID: "dozen2", Name: "Second dozen", StrategyType: domain.StrategyTypeFixed, Preset: "dozen2"},
		{ID: "dozen3", Name: "Third dozen", StrategyType: domain.StrategyTypeFixed, Preset: "dozen3"},
		{ID: "zeros", Name: "Zeros", StrategyType: domain.StrategyTypeFixed, Preset: "zeros"},
		{ID: "last-6", Name: "Last 6 distinct", StrategyType: domain.StrategyTypeLastN, Lookback: &six},
		{ID: "neighbors-2", Name: "Wheel neighbours of last spin", StrategyType: domain.StrategyTypeNeighbors, Radius: &two},
		{ID: "repeat-last", Name: "Repeat last number", StrategyType: domain.StrategyTypeRepeatLast},
	}
}
