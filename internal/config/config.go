// Package config loads the ingest configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"token-ingest/internal/logging"
	"token-ingest/internal/rpc"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TOKEN_INGEST_"

// Config is the full process configuration.
type Config struct {
	Log         logging.Config `yaml:"log"`
	Solana      SolanaConfig   `yaml:"solana"`
	EVM         []EVMChain     `yaml:"evm"`
	Retry       RetryConfig    `yaml:"retry"`
	Batch       BatchConfig    `yaml:"batch"`
	Storage     StorageConfig  `yaml:"storage"`
	Cache       CacheConfig    `yaml:"cache"`
	Work        WorkConfig     `yaml:"work"`
	MetricsAddr string         `yaml:"metrics_addr"`
}

// SolanaConfig configures the Solana endpoints.
type SolanaConfig struct {
	RPCURL      string  `yaml:"rpc_url"`
	WSURL       string  `yaml:"ws_url"`
	RPS         float64 `yaml:"rps"`
	Burst       int     `yaml:"burst"`
	Concurrency int     `yaml:"concurrency"`
	// StrictCurve selects the ed25519 check for PDA derivation.
	StrictCurve *bool `yaml:"strict_curve"`
}

// Strict reports whether PDAs are derived with the real curve check.
// Unset means true.
func (s SolanaConfig) Strict() bool {
	return s.StrictCurve == nil || *s.StrictCurve
}

// EVMChain is one EVM endpoint.
type EVMChain struct {
	Chain  string  `yaml:"chain"`
	RPCURL string  `yaml:"rpc_url"`
	RPS    float64 `yaml:"rps"`
	Burst  int     `yaml:"burst"`
}

// RetryConfig mirrors rpc.Policy with durations in milliseconds.
type RetryConfig struct {
	MaxAttempts int     `yaml:"max_attempts"`
	BaseDelayMS int     `yaml:"base_delay_ms"`
	MaxDelayMS  int     `yaml:"max_delay_ms"`
	JitterMin   float64 `yaml:"jitter_min"`
	JitterMax   float64 `yaml:"jitter_max"`
	TimeoutMS   int     `yaml:"timeout_ms"`
}

// Policy converts the section to an rpc.Policy.
func (r RetryConfig) Policy() rpc.Policy {
	return rpc.Policy{
		MaxAttempts: r.MaxAttempts,
		BaseDelay:   time.Duration(r.BaseDelayMS) * time.Millisecond,
		MaxDelay:    time.Duration(r.MaxDelayMS) * time.Millisecond,
		JitterMin:   r.JitterMin,
		JitterMax:   r.JitterMax,
		Timeout:     time.Duration(r.TimeoutMS) * time.Millisecond,
	}
}

// BatchConfig configures the insert queue.
type BatchConfig struct {
	MaxSize    int `yaml:"max_size"`
	IntervalMS int `yaml:"interval_ms"`
}

// Interval returns the flush interval.
func (b BatchConfig) Interval() time.Duration {
	return time.Duration(b.IntervalMS) * time.Millisecond
}

// StorageConfig selects the storage backend.
type StorageConfig struct {
	Driver  string `yaml:"driver"` // clickhouse|postgres|memory
	DSN     string `yaml:"dsn"`
	Migrate bool   `yaml:"migrate"`
}

// CacheConfig selects the symbol cache.
type CacheConfig struct {
	Driver   string `yaml:"driver"` // memory|redis
	Size     int    `yaml:"size"`
	RedisURL string `yaml:"redis_url"`
	TTLSec   int    `yaml:"ttl_sec"`
}

// TTL returns the entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// WorkConfig configures polling of the work source.
type WorkConfig struct {
	Limit          int `yaml:"limit"`
	PollIntervalMS int `yaml:"poll_interval_ms"`
	// Concurrency bounds in-flight items of the evm-tokens and balances
	// passes. Solana metadata uses solana.concurrency.
	Concurrency int `yaml:"concurrency"`
}

// PollInterval returns the pause between passes.
func (w WorkConfig) PollInterval() time.Duration {
	return time.Duration(w.PollIntervalMS) * time.Millisecond
}

// Default returns the configuration used for omitted keys.
func Default() Config {
	p := rpc.DefaultPolicy()
	return Config{
		Log: logging.Config{Level: "info", Format: "json", MaxSizeMB: 100, MaxBackups: 5},
		Solana: SolanaConfig{
			RPCURL:      "https://api.mainnet-beta.solana.com",
			WSURL:       "wss://api.mainnet-beta.solana.com",
			RPS:         10,
			Burst:       10,
			Concurrency: 8,
		},
		Retry: RetryConfig{
			MaxAttempts: p.MaxAttempts,
			BaseDelayMS: int(p.BaseDelay / time.Millisecond),
			MaxDelayMS:  int(p.MaxDelay / time.Millisecond),
			JitterMin:   p.JitterMin,
			JitterMax:   p.JitterMax,
			TimeoutMS:   int(p.Timeout / time.Millisecond),
		},
		Batch:       BatchConfig{MaxSize: 1000, IntervalMS: 5000},
		Storage:     StorageConfig{Driver: "memory"},
		Cache:       CacheConfig{Driver: "memory", Size: 10000, TTLSec: 3600},
		Work:        WorkConfig{Limit: 500, PollIntervalMS: 30000, Concurrency: 8},
		MetricsAddr: ":9102",
	}
}

// Load reads path (optional), applies environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("LOG_FILE", c.Log.File)
	c.Solana.RPCURL = getEnv("SOLANA_RPC_URL", c.Solana.RPCURL)
	c.Solana.WSURL = getEnv("SOLANA_WS_URL", c.Solana.WSURL)
	c.Solana.Concurrency = getEnvInt("SOLANA_CONCURRENCY", c.Solana.Concurrency)
	c.Work.Concurrency = getEnvInt("WORK_CONCURRENCY", c.Work.Concurrency)
	c.Retry.MaxAttempts = getEnvInt("RETRY_MAX_ATTEMPTS", c.Retry.MaxAttempts)
	c.Batch.MaxSize = getEnvInt("BATCH_MAX_SIZE", c.Batch.MaxSize)
	c.Batch.IntervalMS = getEnvInt("BATCH_INTERVAL_MS", c.Batch.IntervalMS)
	c.Storage.Driver = getEnv("STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.DSN = getEnv("STORAGE_DSN", c.Storage.DSN)
	c.Cache.Driver = getEnv("CACHE_DRIVER", c.Cache.Driver)
	c.Cache.RedisURL = getEnv("REDIS_URL", c.Cache.RedisURL)
	c.MetricsAddr = getEnv("METRICS_ADDR", c.MetricsAddr)
}

// Validate checks value ranges and known drivers.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Retry.Policy().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("retry: %w", err))
	}
	if c.Batch.MaxSize < 1 {
		errs = append(errs, errors.New("batch.max_size must be at least 1"))
	}
	if c.Batch.IntervalMS <= 0 {
		errs = append(errs, errors.New("batch.interval_ms must be positive"))
	}
	if c.Solana.Concurrency < 1 {
		errs = append(errs, errors.New("solana.concurrency must be at least 1"))
	}
	if c.Work.Concurrency < 1 {
		errs = append(errs, errors.New("work.concurrency must be at least 1"))
	}
	switch c.Storage.Driver {
	case "memory":
	case "clickhouse", "postgres":
		if c.Storage.DSN == "" {
			errs = append(errs, fmt.Errorf("storage.dsn is required for %s", c.Storage.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}
	switch c.Cache.Driver {
	case "memory":
	case "redis":
		if c.Cache.RedisURL == "" {
			errs = append(errs, errors.New("cache.redis_url is required for redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache.driver %q", c.Cache.Driver))
	}
	seen := make(map[string]bool)
	for i, ch := range c.EVM {
		if ch.Chain == "" || ch.RPCURL == "" {
			errs = append(errs, fmt.Errorf("evm[%d]: chain and rpc_url are required", i))
		}
		if seen[ch.Chain] {
			errs = append(errs, fmt.Errorf("evm[%d]: duplicate chain %q", i, ch.Chain))
		}
		seen[ch.Chain] = true
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
