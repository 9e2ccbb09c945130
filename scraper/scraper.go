package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aluiziolira/go-scrape-goodreads/config"
	"github.com/aluiziolira/go-scrape-goodreads/models"
	"github.com/aluiziolira/go-scrape-goodreads/parser"
	"github.com/aluiziolira/go-scrape-goodreads/pipeline"
)

// Scraper fetches most-read lists and enriches every row from its detail page.
type Scraper struct {
	cfg     *config.Config
	base    *url.URL
	fetch   *fetcher
	Metrics *Metrics
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	metrics := NewMetrics()
	f, err := newFetcher(cfg, parsed.Hostname(), metrics)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		cfg:     cfg,
		base:    parsed,
		fetch:   f,
		Metrics: metrics,
	}, nil
}

// FetchRankedList scrapes the most-read list for country and duration, then
// enriches each row from its detail page. Rows come back in ranking order.
// Malformed rows are skipped; transport failures and a missing table abort.
func (s *Scraper) FetchRankedList(ctx context.Context, country string, duration models.Duration) (*models.ScrapeResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	result := &models.ScrapeResult{
		RunID:     uuid.New(),
		Country:   country,
		Duration:  duration,
		StartTime: time.Now(),
	}
	log := slog.With(slog.String("run_id", result.RunID.String()))
	requestsBefore := s.fetch.requests()

	page, err := s.FetchListPage(ctx, country, duration)
	if err != nil {
		return nil, err
	}
	for _, skipped := range page.Skipped {
		log.Debug("skipping list row", slog.Any("error", skipped))
		s.Metrics.IncSkipped("malformed")
	}
	log.Info("list page parsed",
		slog.Int("rows", len(page.Rows)),
		slog.Int("skipped", len(page.Skipped)),
	)

	p := pipeline.NewPipeline(ctx, s, s.cfg)
	p.Start(s.cfg.DetailWorkers)
	if s.cfg.Verbose {
		p.StartMetricsReporting(10 * time.Second)
	}
	for _, row := range page.Rows {
		if err := p.Process(row); err != nil {
			if !errors.Is(err, pipeline.ErrPipelineClosed) {
				log.Error("pipeline process error", slog.Any("error", err))
			}
			break
		}
	}
	if err := p.Close(); err != nil {
		return nil, fmt.Errorf("enrich rows: %w", err)
	}

	stats := p.Stats()
	result.Rows = p.Rows()
	result.SkippedRows = len(page.Skipped) + stats.Invalid + stats.Duplicates + stats.DetailFailures
	result.DetailFailures = stats.DetailFailures
	result.EnrichmentGaps = stats.Gaps
	result.RequestCount = s.fetch.requests() - requestsBefore
	result.EndTime = time.Now()

	s.Metrics.AddRows(len(result.Rows))
	for field, n := range stats.Gaps {
		s.Metrics.AddGap(field, n)
	}
	if stats.DetailFailures > 0 {
		s.Metrics.RowsSkippedTotal.WithLabelValues("detail_failure").Add(float64(stats.DetailFailures))
	}
	if n := stats.Invalid + stats.Duplicates; n > 0 {
		s.Metrics.RowsSkippedTotal.WithLabelValues("invalid").Add(float64(n))
	}
	return result, nil
}

// ListURL builds the most-read list URL for country and duration.
func (s *Scraper) ListURL(country string, duration models.Duration) string {
	u := *s.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/book/most_read"
	q := url.Values{}
	q.Set("category", "all")
	q.Set("country", country)
	q.Set("duration", string(duration))
	u.RawQuery = q.Encode()
	return u.String()
}

// DetailURL resolves a detail path against the base URL.
func (s *Scraper) DetailURL(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse detail path %q: %w", path, err)
	}
	return s.base.ResolveReference(ref).String(), nil
}

// FetchListPage fetches and parses the list page without enrichment.
func (s *Scraper) FetchListPage(ctx context.Context, country string, duration models.Duration) (*parser.ListPage, error) {
	target := s.ListURL(country, duration)
	doc, err := s.fetch.get(ctx, phaseList, target)
	if err != nil {
		return nil, err
	}
	page, err := parser.ParseListPage(doc.Selection)
	if err != nil {
		s.Metrics.IncError(errorTypeLabel(err))
		return nil, fmt.Errorf("%s: %w", target, err)
	}
	return page, nil
}

// FetchDetail fetches a book's detail page and extracts its enrichment fields.
func (s *Scraper) FetchDetail(ctx context.Context, path string) (*models.BookDetail, error) {
	target, err := s.DetailURL(path)
	if err != nil {
		return nil, err
	}
	doc, err := s.fetch.get(ctx, phaseDetail, target)
	if err != nil {
		return nil, err
	}
	return parser.ParseDetail(doc.Selection), nil
}
