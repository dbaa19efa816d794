package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// validConfigYAML is a minimal valid configuration.
const validConfigYAML = `
server:
  addr: ":9090"
  base_url: "http://dash.local"
dataset:
  path: "testdata/clusters.json"
  watch: true
  sample_seed: 7
render:
  treemap_width: 800
  treemap_height: 500
  wordcloud_max_words: 40
  sample_size: 5
cache:
  backend: "redis"
  redis_addr: "localhost:6379"
  ttl_sec: 60
fetch:
  retry:
    max_attempts: 2
    initial_delay_ms: 100
    max_delay_ms: 5000
    backoff_multiplier: 2.0
    timeout_sec: 10
  concurrency: 3
logging:
  level: "debug"
  format: "json"
`

func TestLoadConfig_Valid(t *testing.T) {
	configPath := createTempConfigFile(t, validConfigYAML)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Expected Addr ':9090', got '%s'", cfg.Server.Addr)
	}

	if cfg.Dataset.Path != "testdata/clusters.json" || !cfg.Dataset.Watch {
		t.Errorf("Unexpected dataset config: %+v", cfg.Dataset)
	}

	if cfg.Cache.Backend != CacheRedis || cfg.Cache.CacheTTL() != time.Minute {
		t.Errorf("Unexpected cache config: %+v", cfg.Cache)
	}

	if cfg.Fetch.Retry.MaxAttempts != 2 {
		t.Errorf("Expected MaxAttempts 2, got %d", cfg.Fetch.Retry.MaxAttempts)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	configPath := createTempConfigFile(t, "dataset:\n  path: other.json\n")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	def := Default()
	if cfg.Server.Addr != def.Server.Addr {
		t.Errorf("Addr = %s, want default %s", cfg.Server.Addr, def.Server.Addr)
	}

	if cfg.Dataset.Path != "other.json" {
		t.Errorf("Dataset.Path = %s, want other.json", cfg.Dataset.Path)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CLUSTERDASH_SERVER_ADDR", ":7000")
	t.Setenv("CLUSTERDASH_DATASET_WATCH", "true")
	t.Setenv("CLUSTERDASH_FETCH_RETRY_MAX_ATTEMPTS", "9")
	t.Setenv("CLUSTERDASH_LOG_LEVEL", "warn")

	configPath := createTempConfigFile(t, "dataset:\n  path: data.json\n")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Addr != ":7000" {
		t.Errorf("Addr = %s, want :7000", cfg.Server.Addr)
	}

	if !cfg.Dataset.Watch {
		t.Error("Dataset.Watch should be overridden to true")
	}

	if cfg.Fetch.Retry.MaxAttempts != 9 {
		t.Errorf("MaxAttempts = %d, want 9", cfg.Fetch.Retry.MaxAttempts)
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %s, want warn", cfg.Logging.Level)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Expected error for nonexistent file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := createTempConfigFile(t, "invalid: yaml: content: [}")

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestConfig_Validate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"missing addr", func(c *Config) { c.Server.Addr = "" }, ErrMissingAddr},
		{"missing dataset", func(c *Config) { c.Dataset.Path = " " }, ErrMissingDatasetPath},
		{"zero treemap width", func(c *Config) { c.Render.TreemapWidth = 0 }, ErrInvalidTreemapSize},
		{"zero wordcloud words", func(c *Config) { c.Render.WordCloudMaxWords = 0 }, ErrInvalidWordCloudMaxWords},
		{"zero sample size", func(c *Config) { c.Render.SampleSize = 0 }, ErrInvalidSampleSize},
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }, ErrInvalidCacheBackend},
		{"redis without addr", func(c *Config) { c.Cache.Backend = CacheRedis }, ErrMissingRedisAddr},
		{"negative max entries", func(c *Config) { c.Cache.MaxEntries = -1 }, ErrInvalidMaxEntries},
		{"zero attempts", func(c *Config) { c.Fetch.Retry.MaxAttempts = 0 }, ErrInvalidMaxAttempts},
		{"negative delay", func(c *Config) { c.Fetch.Retry.InitialDelayMs = -1 }, ErrInvalidInitialDelay},
		{"small multiplier", func(c *Config) { c.Fetch.Retry.BackoffMultiplier = 0.5 }, ErrInvalidBackoffMultiplier},
		{"zero timeout", func(c *Config) { c.Fetch.Retry.TimeoutSec = 0 }, ErrInvalidTimeout},
		{"zero concurrency", func(c *Config) { c.Fetch.Concurrency = 0 }, ErrInvalidConcurrency},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, ErrInvalidLogLevel},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// --- RetryPolicy Tests ---

func TestRetryPolicy_GetRetryDelay(t *testing.T) {
	rp := RetryPolicy{
		InitialDelayMs:    100,
		MaxDelayMs:        1000,
		BackoffMultiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 0},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1000 * time.Millisecond},
		{10, 1000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			got := rp.GetRetryDelay(tt.attempt)
			if got != tt.expected {
				t.Errorf("GetRetryDelay(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestRetryPolicy_GetTimeout(t *testing.T) {
	rp := RetryPolicy{TimeoutSec: 30}
	expected := 30 * time.Second

	if got := rp.GetTimeout(); got != expected {
		t.Errorf("GetTimeout() = %v, want %v", got, expected)
	}
}

func TestConfig_String(t *testing.T) {
	if Default().String() == "" {
		t.Error("Expected non-empty string representation")
	}
}

func TestConfig_SaveConfig(t *testing.T) {
	cfg := Default()
	cfg.Dataset.Path = "saved.json"

	savePath := filepath.Join(t.TempDir(), "saved_config.yaml")

	if err := cfg.SaveConfig(savePath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(savePath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Dataset.Path != "saved.json" {
		t.Error("Loaded config does not match saved config")
	}
}
