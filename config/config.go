package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds scraper configuration.
type Config struct {
	BaseURL          string        `validate:"required"`
	Country          string        `validate:"required"`
	Duration         string        `validate:"required,oneof=y m w"`
	Delay            time.Duration `validate:"gte=0"`
	RandomDelay      time.Duration `validate:"gte=0"`
	Timeout          time.Duration `validate:"gt=0"`
	DetailWorkers    int           `validate:"gte=1,lte=16"`
	QueueSize        int           `validate:"gte=1"`
	DedupeMaxSize    int           `validate:"gte=1"`
	CacheSize        int           `validate:"gte=1"`
	// DrainTimeout bounds pipeline shutdown; 0 derives it from QueueSize, Timeout and Delay.
	DrainTimeout     time.Duration `validate:"gte=0"`
	SkipDetailErrors bool          // drop rows whose detail page fails instead of aborting
	DataDir          string        `validate:"required"`
	OutputFormat     string        `validate:"oneof=csv jsonl yaml"`
	UserAgent        string        `validate:"required"`
	MetricsAddr      string
	Verbose          bool
}

// DefaultConfig returns conservative defaults that mirror a polite single-client crawl.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "https://www.goodreads.com",
		Country:       "all",
		Duration:      "y",
		Delay:         time.Second,
		RandomDelay:   0,
		Timeout:       30 * time.Second,
		DetailWorkers: 1,
		QueueSize:     64,
		DedupeMaxSize: 1024,
		CacheSize:     8,
		DataDir:       ".",
		OutputFormat:  "csv",
		UserAgent:     "Mozilla/5.0 (Windows NT 10.0; WOW64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/109.0.0.0 Safari/537.36",
	}
}

var validate = validator.New()

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

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid %s: failed %q check (value %v)", fieldLabel(fe.Field()), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("validate config: %w", err)
	}

	if c.RandomDelay > 0 && c.Delay == 0 {
		return fmt.Errorf("random delay requires a base delay")
	}
	return nil
}

func fieldLabel(field string) string {
	switch field {
	case "BaseURL":
		return "base URL"
	case "DetailWorkers":
		return "detail workers"
	case "QueueSize":
		return "queue size"
	case "DedupeMaxSize":
		return "dedupe size"
	case "CacheSize":
		return "cache size"
	case "DataDir":
		return "data dir"
	case "OutputFormat":
		return "output format"
	case "UserAgent":
		return "user agent"
	case "RandomDelay":
		return "random delay"
	default:
		return strings.ToLower(field)
	}
}
