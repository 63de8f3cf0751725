package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	CachePolicyNone     = "none"
	CachePolicyInMemory = "inMemory"

	FingerprintFull         = "full"
	FingerprintMethodAndURL = "methodAndURL"
)

// Config is a client profile: where to send requests and how to treat them.
type Config struct {
	BaseURL     string          `yaml:"baseURL"`
	Timeout     time.Duration   `yaml:"timeout"`
	Cache       CacheConfig     `yaml:"cache"`
	RateLimit   RateLimitConfig `yaml:"rateLimit"`
	Deduplicate bool            `yaml:"deduplicate"`
	Headers     []HeaderConfig  `yaml:"headers"`
}

type CacheConfig struct {
	Policy      string        `yaml:"policy"`
	Duration    time.Duration `yaml:"duration"`
	Fingerprint string        `yaml:"fingerprint"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

type HeaderConfig struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("config: baseURL is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	switch cfg.Cache.Policy {
	case "":
		cfg.Cache.Policy = CachePolicyNone
	case CachePolicyNone, CachePolicyInMemory:
	default:
		return nil, fmt.Errorf("config: unknown cache policy %q", cfg.Cache.Policy)
	}

	if cfg.Cache.Policy == CachePolicyInMemory && cfg.Cache.Duration <= 0 {
		cfg.Cache.Duration = time.Minute
	}

	switch cfg.Cache.Fingerprint {
	case "":
		cfg.Cache.Fingerprint = FingerprintFull
	case FingerprintFull, FingerprintMethodAndURL:
	default:
		return nil, fmt.Errorf("config: unknown cache fingerprint %q", cfg.Cache.Fingerprint)
	}

	if cfg.RateLimit.RequestsPerSecond > 0 && cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 1
	}

	for i, h := range cfg.Headers {
		if h.Name == "" {
			return nil, fmt.Errorf("config: headers[%d] has no name", i)
		}
	}

	return &cfg, nil
}
