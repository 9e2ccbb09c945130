package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aluiziolira/go-scrape-goodreads/config"
	"github.com/aluiziolira/go-scrape-goodreads/models"
	"github.com/aluiziolira/go-scrape-goodreads/scraper"
	"github.com/aluiziolira/go-scrape-goodreads/sentiment"
	"github.com/aluiziolira/go-scrape-goodreads/service"
	"github.com/aluiziolira/go-scrape-goodreads/store"
)

var rootCmd = &cobra.Command{
	Use:   "goodreads-scraper",
	Short: "Scrape Goodreads most-read lists and analyse the saved datasets",
	Long: `goodreads-scraper fetches a Goodreads "most read" ranking, enriches every
book from its detail page and saves the result as a dataset file.

Examples:
  # Scrape this month's most-read books in the US
  goodreads-scraper scrape --country US --duration monthly

  # Summarise a saved dataset
  goodreads-scraper report US_most_read_books_m.csv

  # Label the reviews of one book
  goodreads-scraper reviews US_most_read_books_m.csv "Fourth Wing"`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger, level := newLogger(viper.GetBool("verbose"))
		slog.SetDefault(logger)
		slog.SetLogLoggerLevel(level.Level())
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default ./.goodreads.yaml)")
	flags.String("data-dir", ".", "directory holding dataset files")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.String("metrics-addr", "", "Prometheus metrics listen address (e.g. :9090)")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("metrics_addr", flags.Lookup("metrics-addr"))

	rootCmd.AddCommand(scrapeCmd, listCmd, reportCmd, reviewsCmd)
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".goodreads")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("GOODREADS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine.
	_ = viper.ReadInConfig()
}

// loadConfig layers defaults, GOODREADS_* variables, the config file and flags.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if viper.IsSet("base_url") {
		cfg.BaseURL = viper.GetString("base_url")
	}
	if viper.IsSet("user_agent") {
		cfg.UserAgent = viper.GetString("user_agent")
	}
	if viper.IsSet("data_dir") {
		cfg.DataDir = viper.GetString("data_dir")
	}
	if viper.IsSet("metrics_addr") {
		cfg.MetricsAddr = viper.GetString("metrics_addr")
	}
	if viper.IsSet("delay") {
		cfg.Delay = viper.GetDuration("delay")
	}
	if viper.IsSet("random_delay") {
		cfg.RandomDelay = viper.GetDuration("random_delay")
	}
	if viper.IsSet("timeout") {
		cfg.Timeout = viper.GetDuration("timeout")
	}
	if viper.IsSet("detail_workers") {
		cfg.DetailWorkers = viper.GetInt("detail_workers")
	}
	if viper.IsSet("cache_size") {
		cfg.CacheSize = viper.GetInt("cache_size")
	}
	if viper.IsSet("format") {
		cfg.OutputFormat = strings.ToLower(viper.GetString("format"))
	}
	if viper.IsSet("skip_detail_errors") {
		cfg.SkipDetailErrors = viper.GetBool("skip_detail_errors")
	}
	if viper.IsSet("drain_timeout") {
		cfg.DrainTimeout = viper.GetDuration("drain_timeout")
	}
	if viper.IsSet("country") {
		cfg.Country = viper.GetString("country")
	}
	if viper.IsSet("duration") {
		cfg.Duration = viper.GetString("duration")
	}
	cfg.Verbose = viper.GetBool("verbose")

	duration, err := models.ParseDuration(cfg.Duration)
	if err != nil {
		return nil, err
	}
	cfg.Duration = string(duration)
	if cfg.Country, err = models.NormalizeCountry(cfg.Country); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newService builds the service; the scraper is only created when withScraper is set.
func newService(cfg *config.Config, withScraper bool) (*service.Service, *scraper.Scraper, error) {
	st, err := store.New(cfg.DataDir, cfg.CacheSize)
	if err != nil {
		return nil, nil, err
	}

	var (
		s       *scraper.Scraper
		fetcher service.Fetcher
	)
	if withScraper {
		s, err = scraper.NewScraper(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("initialising scraper: %w", err)
		}
		fetcher = s
	}
	return service.New(fetcher, st, sentiment.New(nil), store.Format(cfg.OutputFormat)), s, nil
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stderr) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
