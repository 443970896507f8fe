package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "BULLETIN_"

// Load reads a YAML config file over the defaults and then applies
// BULLETIN_* environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %q: %w", path, err)
			}
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg fields from BULLETIN_* environment variables.
func ApplyEnv(cfg *Config) error {
	if v, ok := EnvString("BASE_URL"); ok {
		cfg.BaseURL = v
	}
	if v, ok := EnvString("LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := EnvString("WARMUP_SCHEDULE"); ok {
		cfg.WarmupSchedule = v
	}
	if v, ok := EnvString("OUTPUT"); ok {
		cfg.OutputFile = v
	}
	if v, ok := EnvString("FORMAT"); ok {
		cfg.OutputFormat = strings.ToLower(v)
	}
	if v, ok := EnvString("LOG_FILE"); ok {
		cfg.LogFile = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"RANGE_CONCURRENCY", &cfg.RangeConcurrency},
		{"MAX_RANGE_DAYS", &cfg.MaxRangeDays},
		{"CACHE_SIZE", &cfg.CacheSize},
		{"MAX_BODY_SIZE", &cfg.MaxBodySize},
	}
	for _, item := range ints {
		v, ok, err := EnvInt(item.name)
		if err != nil {
			return err
		}
		if ok {
			*item.dst = v
		}
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"TIMEOUT", &cfg.Timeout},
		{"CACHE_TTL", &cfg.CacheTTL},
	}
	for _, item := range durations {
		v, ok, err := EnvDuration(item.name)
		if err != nil {
			return err
		}
		if ok {
			*item.dst = v
		}
	}

	if v, ok := EnvString("REQUESTS_PER_SECOND"); ok {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %sREQUESTS_PER_SECOND: %w", envPrefix, err)
		}
		cfg.RequestsPerSecond = rps
	}
	return nil
}

// EnvString returns the trimmed value of BULLETIN_<name> when set and non-empty.
func EnvString(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// EnvInt parses BULLETIN_<name> as an integer.
func EnvInt(name string) (int, bool, error) {
	v, ok := EnvString(name)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
	}
	return n, true, nil
}

// EnvDuration parses BULLETIN_<name> as a time.Duration ("30s", "2m").
func EnvDuration(name string) (time.Duration, bool, error) {
	v, ok := EnvString(name)
	if !ok {
		return 0, false, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
	}
	return d, true, nil
}
