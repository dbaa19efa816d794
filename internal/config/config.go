// Package config provides configuration management for the dashboard.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingAddr              = errors.New("server.addr is required")
	ErrMissingDatasetPath       = errors.New("dataset.path is required")
	ErrInvalidTreemapSize       = errors.New("render.treemap_width and render.treemap_height must be positive")
	ErrInvalidWordCloudMaxWords = errors.New("render.wordcloud_max_words must be at least 1")
	ErrInvalidSampleSize        = errors.New("render.sample_size must be at least 1")
	ErrInvalidCacheBackend      = errors.New("cache.backend must be one of: memory, redis, none")
	ErrMissingRedisAddr         = errors.New("cache.redis_addr is required for the redis backend")
	ErrInvalidMaxEntries        = errors.New("cache.max_entries must be non-negative")
	ErrInvalidMaxAttempts       = errors.New("fetch.retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("fetch.retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("fetch.retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("fetch.retry.timeout_sec must be at least 1")
	ErrInvalidConcurrency       = errors.New("fetch.concurrency must be at least 1")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config represents the complete dashboard configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envPrefix:"SERVER_"`
	Dataset DatasetConfig `yaml:"dataset" envPrefix:"DATASET_"`
	Render  RenderConfig  `yaml:"render" envPrefix:"RENDER_"`
	Cache   CacheConfig   `yaml:"cache" envPrefix:"CACHE_"`
	Fetch   FetchConfig   `yaml:"fetch" envPrefix:"FETCH_"`
	Logging LoggingConfig `yaml:"logging" envPrefix:"LOG_"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr           string `yaml:"addr" env:"ADDR"`
	BaseURL        string `yaml:"base_url" env:"BASE_URL"`
	ReadTimeoutSec int    `yaml:"read_timeout_sec" env:"READ_TIMEOUT_SEC"`
}

// DatasetConfig locates the static cluster data.
type DatasetConfig struct {
	Path       string `yaml:"path" env:"PATH"`
	Watch      bool   `yaml:"watch" env:"WATCH"`
	SampleSeed uint64 `yaml:"sample_seed" env:"SAMPLE_SEED"`
}

// RenderConfig sizes the charts.
type RenderConfig struct {
	TreemapWidth      int `yaml:"treemap_width" env:"TREEMAP_WIDTH"`
	TreemapHeight     int `yaml:"treemap_height" env:"TREEMAP_HEIGHT"`
	WordCloudMaxWords int `yaml:"wordcloud_max_words" env:"WORDCLOUD_MAX_WORDS"`
	SampleSize        int `yaml:"sample_size" env:"SAMPLE_SIZE"`
}

// CacheConfig selects where rendered charts are memoized.
type CacheConfig struct {
	Backend    string `yaml:"backend" env:"BACKEND"`
	RedisAddr  string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisDB    int    `yaml:"redis_db" env:"REDIS_DB"`
	TTLSec     int    `yaml:"ttl_sec" env:"TTL_SEC"`
	MaxEntries int    `yaml:"max_entries" env:"MAX_ENTRIES"`
}

// FetchConfig controls image downloads.
type FetchConfig struct {
	Retry        RetryPolicy `yaml:"retry" envPrefix:"RETRY_"`
	BufferSizeKb int         `yaml:"buffer_size_kb" env:"BUFFER_SIZE_KB"`
	Concurrency  int         `yaml:"concurrency" env:"CONCURRENCY"`
}

// RetryPolicy defines retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts" env:"MAX_ATTEMPTS"`
	InitialDelayMs    int     `yaml:"initial_delay_ms" env:"INITIAL_DELAY_MS"`
	MaxDelayMs        int     `yaml:"max_delay_ms" env:"MAX_DELAY_MS"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier" env:"BACKOFF_MULTIPLIER"`
	TimeoutSec        int     `yaml:"timeout_sec" env:"TIMEOUT_SEC"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CLUSTERDASH_"

// Default returns a configuration usable without a file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8501",
			BaseURL:        "http://localhost:8501",
			ReadTimeoutSec: 15,
		},
		Dataset: DatasetConfig{
			Path:       "data/clusters.json",
			SampleSeed: 42,
		},
		Render: RenderConfig{
			TreemapWidth:      1000,
			TreemapHeight:     600,
			WordCloudMaxWords: 60,
			SampleSize:        5,
		},
		Cache: CacheConfig{
			Backend:    CacheMemory,
			TTLSec:     3600,
			MaxEntries: 512,
		},
		Fetch: FetchConfig{
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    500,
				MaxDelayMs:        30000,
				BackoffMultiplier: 2.0,
				TimeoutSec:        30,
			},
			BufferSizeKb: 4096,
			Concurrency:  5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults,
// then applies environment overrides.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from CLUSTERDASH_* environment variables.
// Unset variables leave the current values in place.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	return nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return ErrMissingAddr
	}

	if strings.TrimSpace(c.Dataset.Path) == "" {
		return ErrMissingDatasetPath
	}

	// Validate render settings
	if c.Render.TreemapWidth <= 0 || c.Render.TreemapHeight <= 0 {
		return ErrInvalidTreemapSize
	}

	if c.Render.WordCloudMaxWords < 1 {
		return ErrInvalidWordCloudMaxWords
	}

	if c.Render.SampleSize < 1 {
		return ErrInvalidSampleSize
	}

	// Validate cache settings
	switch c.Cache.Backend {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return ErrMissingRedisAddr
		}
	default:
		return ErrInvalidCacheBackend
	}

	if c.Cache.MaxEntries < 0 {
		return ErrInvalidMaxEntries
	}

	// Validate retry policy
	if c.Fetch.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Fetch.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Fetch.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Fetch.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Fetch.Concurrency < 1 {
		return ErrInvalidConcurrency
	}

	// Validate logging config
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// CacheTTL returns the memo entry lifetime; zero means no expiry.
func (c *CacheConfig) CacheTTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// ReadTimeout returns the HTTP read timeout.
func (s *ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Addr: %s, Dataset: %s, Cache: %s, Watch: %t}",
		c.Server.Addr,
		c.Dataset.Path,
		c.Cache.Backend,
		c.Dataset.Watch,
	)
}
