package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "zero detail workers",
			mutate: func(cfg *Config) {
				cfg.DetailWorkers = 0
			},
			wantErr: "detail workers",
		},
		{
			name: "unknown duration",
			mutate: func(cfg *Config) {
				cfg.Duration = "d"
			},
			wantErr: "duration",
		},
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "invalid url format",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "negative delay",
			mutate: func(cfg *Config) {
				cfg.Delay = -time.Millisecond
			},
			wantErr: "delay",
		},
		{
			name: "unsupported output format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "xml"
			},
			wantErr: "output format",
		},
		{
			name: "jitter without delay",
			mutate: func(cfg *Config) {
				cfg.Delay = 0
				cfg.RandomDelay = time.Second
			},
			wantErr: "random delay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GOODREADS_DELAY", "250ms")
	t.Setenv("GOODREADS_DETAIL_WORKERS", "3")
	t.Setenv("GOODREADS_DATA_DIR", " /tmp/datasets ")
	t.Setenv("GOODREADS_COUNTRY", "es")
	t.Setenv("GOODREADS_DURATION", "monthly")
	t.Setenv("GOODREADS_DRAIN_TIMEOUT", "2m")

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Delay != 250*time.Millisecond {
		t.Fatalf("delay = %v, want 250ms", cfg.Delay)
	}
	if cfg.DetailWorkers != 3 {
		t.Fatalf("detail workers = %d, want 3", cfg.DetailWorkers)
	}
	if cfg.DataDir != "/tmp/datasets" {
		t.Fatalf("data dir = %q, want /tmp/datasets", cfg.DataDir)
	}
	if cfg.Country != "es" || cfg.Duration != "monthly" {
		t.Fatalf("list = %q/%q, want es/monthly", cfg.Country, cfg.Duration)
	}
	if cfg.DrainTimeout != 2*time.Minute {
		t.Fatalf("drain timeout = %v, want 2m", cfg.DrainTimeout)
	}
}

func TestApplyEnvInvalidInt(t *testing.T) {
	t.Setenv("GOODREADS_DETAIL_WORKERS", "many")

	if err := ApplyEnv(DefaultConfig()); err == nil || !strings.Contains(err.Error(), "GOODREADS_DETAIL_WORKERS") {
		t.Fatalf("expected error naming the variable, got %v", err)
	}
}
