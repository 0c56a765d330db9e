package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/akl7777777/avi-intl/internal/avi"
)

type Config struct {
	// Server
	Port string
	Host string

	// Auth
	AuthKey string // Bearer token for the HTTP front-end, empty = no auth

	// Service
	LicenseKey string
	Live       bool
	Transport  string // "rest" or "soap"

	PrimaryURL string
	BackupURL  string
	TrialURL   string

	RESTTimeout time.Duration
	SOAPTimeout time.Duration

	// Cache, zero TTL disables it
	CacheTTL time.Duration

	// Outbound rate limit, zero = unlimited
	RateLimitPerMin int
	RateLimitBurst  int

	// Batch
	BatchConcurrency int
}

// fileConfig is the YAML layout. Pointers distinguish unset from zero.
type fileConfig struct {
	Server struct {
		Host    string `yaml:"host"`
		Port    string `yaml:"port"`
		AuthKey string `yaml:"authKey"`
	} `yaml:"server"`
	Service struct {
		LicenseKey  string `yaml:"licenseKey"`
		Live        *bool  `yaml:"live"`
		Transport   string `yaml:"transport"`
		PrimaryURL  string `yaml:"primaryURL"`
		BackupURL   string `yaml:"backupURL"`
		TrialURL    string `yaml:"trialURL"`
		RESTTimeout string `yaml:"restTimeout"`
		SOAPTimeout string `yaml:"soapTimeout"`
	} `yaml:"service"`
	Cache struct {
		TTL string `yaml:"ttl"`
	} `yaml:"cache"`
	RateLimit struct {
		PerMinute *int `yaml:"perMinute"`
		Burst     *int `yaml:"burst"`
	} `yaml:"rateLimit"`
	Batch struct {
		Concurrency int `yaml:"concurrency"`
	} `yaml:"batch"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:             "8080",
		Host:             "0.0.0.0",
		Live:             true,
		Transport:        "rest",
		PrimaryURL:       avi.DefaultPrimaryURL,
		BackupURL:        avi.DefaultBackupURL,
		TrialURL:         avi.DefaultTrialURL,
		RESTTimeout:      avi.DefaultRESTTimeout,
		SOAPTimeout:      avi.DefaultSOAPTimeout,
		RateLimitBurst:   1,
		BatchConcurrency: 4,
	}
}

// Load reads the file named by AVI_CONFIG, or the first default location that
// exists, then applies environment overrides.
func Load() (*Config, error) {
	return LoadFromPath(os.Getenv("AVI_CONFIG"))
}

// LoadFromPath is Load with an explicit file. An empty path searches the
// default locations and tolerates their absence; an explicit path must exist.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	candidates := []string{"configs/avi.yaml", "avi.yaml"}
	if path != "" {
		candidates = []string{path}
	}

	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if err != nil {
			if path != "" {
				return nil, fmt.Errorf("read config: %w", err)
			}
			continue
		}
		var parsed fileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", p, err)
		}
		if err := merge(cfg, parsed); err != nil {
			return nil, fmt.Errorf("config %s: %w", p, err)
		}
		break
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func merge(dst *Config, src fileConfig) error {
	if src.Server.Host != "" {
		dst.Host = src.Server.Host
	}
	if src.Server.Port != "" {
		dst.Port = src.Server.Port
	}
	if src.Server.AuthKey != "" {
		dst.AuthKey = src.Server.AuthKey
	}
	if src.Service.LicenseKey != "" {
		dst.LicenseKey = src.Service.LicenseKey
	}
	if src.Service.Live != nil {
		dst.Live = *src.Service.Live
	}
	if src.Service.Transport != "" {
		dst.Transport = src.Service.Transport
	}
	if src.Service.PrimaryURL != "" {
		dst.PrimaryURL = src.Service.PrimaryURL
	}
	if src.Service.BackupURL != "" {
		dst.BackupURL = src.Service.BackupURL
	}
	if src.Service.TrialURL != "" {
		dst.TrialURL = src.Service.TrialURL
	}
	for _, d := range []struct {
		raw string
		dst *time.Duration
	}{
		{src.Service.RESTTimeout, &dst.RESTTimeout},
		{src.Service.SOAPTimeout, &dst.SOAPTimeout},
		{src.Cache.TTL, &dst.CacheTTL},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return err
		}
		*d.dst = v
	}
	if src.RateLimit.PerMinute != nil {
		dst.RateLimitPerMin = *src.RateLimit.PerMinute
	}
	if src.RateLimit.Burst != nil {
		dst.RateLimitBurst = *src.RateLimit.Burst
	}
	if src.Batch.Concurrency > 0 {
		dst.BatchConcurrency = src.Batch.Concurrency
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Port = envOrDefault("PORT", cfg.Port)
	cfg.Host = envOrDefault("HOST", cfg.Host)
	cfg.AuthKey = envOrDefault("AUTH_KEY", cfg.AuthKey)

	cfg.LicenseKey = envOrDefault("AVI_LICENSE_KEY", cfg.LicenseKey)
	cfg.Transport = strings.ToLower(envOrDefault("AVI_TRANSPORT", cfg.Transport))
	cfg.PrimaryURL = envOrDefault("AVI_PRIMARY_URL", cfg.PrimaryURL)
	cfg.BackupURL = envOrDefault("AVI_BACKUP_URL", cfg.BackupURL)
	cfg.TrialURL = envOrDefault("AVI_TRIAL_URL", cfg.TrialURL)

	if v := os.Getenv("AVI_LIVE"); v != "" {
		live, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("AVI_LIVE: %w", err)
		}
		cfg.Live = live
	}

	cfg.RESTTimeout = envDurationOrDefault("AVI_REST_TIMEOUT_SECONDS", cfg.RESTTimeout, time.Second)
	cfg.SOAPTimeout = envDurationOrDefault("AVI_SOAP_TIMEOUT_MS", cfg.SOAPTimeout, time.Millisecond)
	cfg.CacheTTL = envDurationOrDefault("CACHE_TTL_MINUTES", cfg.CacheTTL, time.Minute)

	cfg.RateLimitPerMin = envIntOrDefault("RATE_LIMIT_PER_MIN", cfg.RateLimitPerMin)
	cfg.RateLimitBurst = envIntOrDefault("RATE_LIMIT_BURST", cfg.RateLimitBurst)
	cfg.BatchConcurrency = envIntOrDefault("BATCH_CONCURRENCY", cfg.BatchConcurrency)
	return nil
}

// Validate checks values that would otherwise fail at request time.
func (c *Config) Validate() error {
	switch c.Transport {
	case "rest", "soap":
	default:
		return fmt.Errorf("unknown transport %q (want rest or soap)", c.Transport)
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("batch concurrency must be positive, got %d", c.BatchConcurrency)
	}
	if c.RateLimitPerMin < 0 {
		return fmt.Errorf("rate limit must not be negative, got %d", c.RateLimitPerMin)
	}
	return nil
}

// Endpoints returns the configured service hosts.
func (c *Config) Endpoints() avi.Endpoints {
	return avi.Endpoints{
		Primary: c.PrimaryURL,
		Backup:  c.BackupURL,
		Trial:   c.TrialURL,
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDurationOrDefault(key string, def, unit time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * unit
		}
	}
	return def
}
