package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"FinCast/pkg/logger"
)

type Config struct {
	Environment string        `yaml:"environment" default:"development"`
	Server      ServerConfig  `yaml:"server"`
	Log         logger.Config `yaml:"log"`
	Metrics     struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Predictor PredictorConfig `yaml:"predictor"`
	Cache     CacheConfig     `yaml:"cache"`
	Watchlist struct {
		HorizonDays int `yaml:"horizon_days" default:"7"`
	} `yaml:"watchlist"`
	Export struct {
		Dir string `yaml:"dir" default:"."`
	} `yaml:"export"`
	RateLimit struct {
		Enabled   bool          `yaml:"enabled" default:"true"`
		Rate      float64       `yaml:"rate" default:"5"`
		Burst     int           `yaml:"burst" default:"10"`
		ExpiresIn time.Duration `yaml:"expires_in" default:"3m"`
	} `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
}

// PredictorConfig points at the prediction service.
type PredictorConfig struct {
	BaseURL        string        `yaml:"base_url" default:"http://localhost:8000"`
	Timeout        time.Duration `yaml:"timeout" default:"30s"`
	Retries        int           `yaml:"retries" default:"2"`
	RetryWait      time.Duration `yaml:"retry_wait" default:"200ms"`
	MaxConcurrency int           `yaml:"max_concurrency" default:"4"`
	CacheTTL       time.Duration `yaml:"cache_ttl" default:"5m"`
	SymbolsTTL     time.Duration `yaml:"symbols_ttl" default:"1h"`
}

type CacheConfig struct {
	Backend   string `yaml:"backend" default:"memory"` // memory or redis
	KeyPrefix string `yaml:"key_prefix" default:"fincast"`
	Redis     struct {
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size" default:"10"`
	} `yaml:"redis"`
	MemorySize int `yaml:"memory_size" default:"1000"` // max forecast entries held in process
}

// Default returns a config populated only from struct defaults.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads .env (if present), the YAML file, and applies
// environment overrides. An empty path skips the file.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var c *Config
	if path == "" {
		c = Default()
	} else {
		var err error
		if c, err = Load(path); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("PREDICTOR_URL"); v != "" {
		c.Predictor.BaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Backend = "redis"
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SERVER_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Predictor.BaseURL == "" {
		return fmt.Errorf("predictor.base_url is required")
	}
	if c.Predictor.MaxConcurrency < 1 {
		return fmt.Errorf("predictor.max_concurrency must be >= 1, got %d", c.Predictor.MaxConcurrency)
	}
	if c.Predictor.Retries < 0 {
		return fmt.Errorf("predictor.retries must be >= 0")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got '%s'", c.Cache.Backend)
	}
	if c.Cache.MemorySize < 1 {
		return fmt.Errorf("cache.memory_size must be >= 1")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Rate <= 0 || c.RateLimit.Burst < 1) {
		return fmt.Errorf("rate_limit needs rate > 0 and burst >= 1 when enabled")
	}
	if c.Watchlist.HorizonDays < 1 || c.Watchlist.HorizonDays > 365 {
		return fmt.Errorf("watchlist.horizon_days must be in 1..365")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got '%s'", c.Log.Level)
	}
	return nil
}
