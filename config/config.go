package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds fetcher, service and export configuration.
type Config struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RangeConcurrency  int           `yaml:"range_concurrency"`
	MaxRangeDays      int           `yaml:"max_range_days"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	MaxBodySize       int           `yaml:"max_body_size"`
	UserAgent         string        `yaml:"user_agent"`
	RespectRobotsTxt  bool          `yaml:"respect_robots_txt"`

	CacheSize int           `yaml:"cache_size"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`

	ListenAddr     string `yaml:"listen_addr"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
	WarmupSchedule string `yaml:"warmup_schedule"` // cron spec, empty disables

	OutputFile         string `yaml:"output_file"`
	OutputFormat       string `yaml:"output_format"` // csv, json, dual or xlsx
	PipelineBufferSize int    `yaml:"pipeline_buffer_size"`
	BatchSize          int    `yaml:"batch_size"`
	DedupeMaxSize      int    `yaml:"dedupe_max_size"`

	LogFile string `yaml:"log_file"`
	Verbose bool   `yaml:"verbose"`
}

// DefaultConfig returns defaults matching the bulletin publisher's layout.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:            "https://boletines.example.com/uploads",
		Timeout:            30 * time.Second,
		RangeConcurrency:   5,
		MaxRangeDays:       366,
		RequestsPerSecond:  0,
		MaxBodySize:        32 * 1024 * 1024,
		UserAgent:          "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		RespectRobotsTxt:   false,
		CacheSize:          64,
		CacheTTL:           6 * time.Hour,
		ListenAddr:         ":8080",
		MetricsEnabled:     true,
		WarmupSchedule:     "30 7 * * *",
		OutputFile:         "output/precios.csv",
		OutputFormat:       "csv",
		PipelineBufferSize: 512,
		BatchSize:          64,
		DedupeMaxSize:      100000,
		Verbose:            false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.RangeConcurrency <= 0 {
		return fmt.Errorf("range concurrency must be positive")
	}
	if c.MaxRangeDays <= 0 {
		return fmt.Errorf("max range days must be positive")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second cannot be negative")
	}
	if c.MaxBodySize < 0 {
		return fmt.Errorf("max body size cannot be negative")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache ttl cannot be negative")
	}
	if c.WarmupSchedule != "" {
		if _, err := cron.ParseStandard(c.WarmupSchedule); err != nil {
			return fmt.Errorf("invalid warmup schedule %q: %w", c.WarmupSchedule, err)
		}
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	switch c.OutputFormat {
	case "csv", "json", "dual", "xlsx":
	default:
		return fmt.Errorf("output format must be csv, json, dual, or xlsx")
	}
	if c.PipelineBufferSize <= 0 {
		return fmt.Errorf("pipeline buffer size must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}

	return nil
}
