package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aluiziolira/go-scrape-goodreads/models"
	"github.com/aluiziolira/go-scrape-goodreads/service"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape a most-read list and save it as a dataset",
	Args:  cobra.NoArgs,
	RunE:  runScrape,
}

func init() {
	flags := scrapeCmd.Flags()
	flags.StringP("country", "c", "all", `two-letter country code or "all"`)
	flags.StringP("duration", "d", "yearly", "ranking window: yearly, monthly or weekly")
	flags.StringP("format", "f", "csv", "dataset format: csv, jsonl or yaml")
	flags.Duration("delay", time.Second, "pause after each request")
	flags.Duration("random-delay", 0, "random jitter added to the delay")
	flags.Duration("timeout", 30*time.Second, "per-request timeout")
	flags.Int("workers", 1, "concurrent detail page fetches")
	flags.String("base-url", "https://www.goodreads.com", "site to scrape")
	flags.String("user-agent", "", "override the User-Agent header")
	flags.Bool("skip-detail-errors", false, "drop books whose detail page cannot be fetched instead of aborting")

	_ = viper.BindPFlag("country", flags.Lookup("country"))
	_ = viper.BindPFlag("duration", flags.Lookup("duration"))
	_ = viper.BindPFlag("format", flags.Lookup("format"))
	_ = viper.BindPFlag("delay", flags.Lookup("delay"))
	_ = viper.BindPFlag("random_delay", flags.Lookup("random-delay"))
	_ = viper.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("detail_workers", flags.Lookup("workers"))
	_ = viper.BindPFlag("base_url", flags.Lookup("base-url"))
	_ = viper.BindPFlag("user_agent", flags.Lookup("user-agent"))
	_ = viper.BindPFlag("skip_detail_errors", flags.Lookup("skip-detail-errors"))
}

func runScrape(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		return err
	}
	country, duration := cfg.Country, models.Duration(cfg.Duration)
	if !models.IsKnownCountry(country) {
		slog.Warn("country has no known most-read list, the page may be empty", slog.String("country", country))
	}

	svc, s, err := newService(cfg, true)
	if err != nil {
		slog.Error("initialising", slog.Any("error", err))
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, waiting for in-flight work to finish")
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && s.Metrics != nil {
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown failed", slog.Any("error", err))
			}
		}()
	}

	slog.Info("starting scrape",
		slog.String("country", country),
		slog.String("duration", string(duration)),
		slog.Int("workers", cfg.DetailWorkers),
	)

	summary, err := svc.ScrapeSummary(ctx, country, duration)
	if err != nil {
		if errors.Is(err, service.ErrEmptyResult) {
			slog.Warn("no books found, nothing saved")
		} else {
			slog.Error("scraping failed", slog.Any("error", err))
		}
		return err
	}

	printSummary(cmd.OutOrStdout(), summary)
	return nil
}

func printSummary(w io.Writer, summary *service.Summary) {
	result := summary.Result
	elapsed := result.EndTime.Sub(result.StartTime).Round(time.Millisecond)

	separator := "--------------------------------------------------"
	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "Scrape complete")
	fmt.Fprintf(w, "  Run:           %s\n", result.RunID)
	fmt.Fprintf(w, "  List:          %s (%s)\n", models.CountryName(result.Country), result.Duration)
	fmt.Fprintf(w, "  Books:         %s\n", humanize.Comma(int64(len(result.Rows))))
	fmt.Fprintf(w, "  Skipped rows:  %d\n", result.SkippedRows)
	fmt.Fprintf(w, "  Detail errors: %d\n", result.DetailFailures)
	fmt.Fprintf(w, "  Requests:      %s\n", humanize.Comma(int64(result.RequestCount)))
	if len(result.EnrichmentGaps) > 0 {
		fields := make([]string, 0, len(result.EnrichmentGaps))
		for field := range result.EnrichmentGaps {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		fmt.Fprint(w, "  Missing:      ")
		for _, field := range fields {
			fmt.Fprintf(w, " %s=%d", field, result.EnrichmentGaps[field])
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  Duration:      %v\n", elapsed)
	fmt.Fprintf(w, "  Dataset:       %s\n", summary.FileID)
	fmt.Fprintf(w, "  Path:          %s\n", summary.Path)
	fmt.Fprintln(w, separator)
}
