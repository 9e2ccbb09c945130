package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvString returns the trimmed value of key and whether it was set to a non-empty value.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer.
func EnvInt(key string) (int, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}

// EnvDuration parses key as a Go duration ("750ms", "2s").
func EnvDuration(key string) (time.Duration, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}

// ApplyEnv overlays GOODREADS_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if value, ok := EnvString("GOODREADS_BASE_URL"); ok {
		cfg.BaseURL = value
	}
	if value, ok := EnvString("GOODREADS_DATA_DIR"); ok {
		cfg.DataDir = value
	}
	if value, ok := EnvString("GOODREADS_USER_AGENT"); ok {
		cfg.UserAgent = value
	}
	if value, ok := EnvString("GOODREADS_METRICS_ADDR"); ok {
		cfg.MetricsAddr = value
	}
	if value, ok := EnvString("GOODREADS_COUNTRY"); ok {
		cfg.Country = value
	}
	if value, ok := EnvString("GOODREADS_DURATION"); ok {
		cfg.Duration = value
	}
	if value, ok, err := EnvDuration("GOODREADS_DELAY"); err != nil {
		return err
	} else if ok {
		cfg.Delay = value
	}
	if value, ok, err := EnvDuration("GOODREADS_TIMEOUT"); err != nil {
		return err
	} else if ok {
		cfg.Timeout = value
	}
	if value, ok, err := EnvDuration("GOODREADS_DRAIN_TIMEOUT"); err != nil {
		return err
	} else if ok {
		cfg.DrainTimeout = value
	}
	if value, ok, err := EnvInt("GOODREADS_DETAIL_WORKERS"); err != nil {
		return err
	} else if ok {
		cfg.DetailWorkers = value
	}
	return nil
}
