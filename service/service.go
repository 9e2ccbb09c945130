// Package service holds the in-process state behind the dashboard: the
// current dataset and the operations that produce or inspect it.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aluiziolira/go-scrape-goodreads/analytics"
	"github.com/aluiziolira/go-scrape-goodreads/models"
	"github.com/aluiziolira/go-scrape-goodreads/sentiment"
	"github.com/aluiziolira/go-scrape-goodreads/store"
)

var (
	// ErrEmptyResult is returned when a scrape produced no rows. No file is written.
	ErrEmptyResult = errors.New("scrape returned no rows")
	// ErrNoDataset is returned when an operation needs a current dataset and none is loaded.
	ErrNoDataset = errors.New("no dataset loaded")
	// ErrBookNotFound is returned when the current dataset has no row with the requested title.
	ErrBookNotFound = errors.New("book not found")
)

// Fetcher produces an enriched most-read list.
type Fetcher interface {
	FetchRankedList(ctx context.Context, country string, duration models.Duration) (*models.ScrapeResult, error)
}

// Summary describes a completed scrape.
type Summary struct {
	FileID string
	Path   string
	Result *models.ScrapeResult
}

// ReviewSentiment is a review with its label.
type ReviewSentiment struct {
	Review models.Review
	Label  sentiment.Label
}

// BookSentiment is the opinion breakdown of one book's reviews.
type BookSentiment struct {
	Book         *models.BookRow
	Reviews      []ReviewSentiment
	Distribution []sentiment.Count
	Dominant     sentiment.Label
	HasDominant  bool
	TopWords     []analytics.Count
}

// Service is safe for concurrent use; mutations of the current dataset are serialized.
type Service struct {
	fetcher    Fetcher
	store      *store.Store
	classifier *sentiment.Classifier
	format     store.Format

	mu      sync.RWMutex
	current string
	rows    []*models.BookRow
}

// New wires a service. format selects the encoding of scraped datasets.
func New(fetcher Fetcher, st *store.Store, classifier *sentiment.Classifier, format store.Format) *Service {
	if classifier == nil {
		classifier = sentiment.New(nil)
	}
	if format == "" {
		format = store.FormatCSV
	}
	return &Service{
		fetcher:    fetcher,
		store:      st,
		classifier: classifier,
		format:     format,
	}
}

// Scrape fetches the list for country and duration, saves it and makes it
// the current dataset. It returns the saved file's name.
func (s *Service) Scrape(ctx context.Context, country string, duration models.Duration) (string, error) {
	summary, err := s.ScrapeSummary(ctx, country, duration)
	if err != nil {
		return "", err
	}
	return summary.FileID, nil
}

// ScrapeSummary is Scrape that also reports the run's statistics.
func (s *Service) ScrapeSummary(ctx context.Context, country string, duration models.Duration) (*Summary, error) {
	if s.fetcher == nil {
		return nil, errors.New("service has no fetcher")
	}
	country, err := models.NormalizeCountry(country)
	if err != nil {
		return nil, err
	}
	duration, err = models.ParseDuration(string(duration))
	if err != nil {
		return nil, err
	}

	result, err := s.fetcher.FetchRankedList(ctx, country, duration)
	if err != nil {
		return nil, fmt.Errorf("scrape %s/%s: %w", country, duration, err)
	}
	if len(result.Rows) == 0 {
		return nil, ErrEmptyResult
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := store.DefaultFileName(country, duration, s.format)
	path, err := s.store.Save(result.Rows, name)
	if err != nil {
		return nil, fmt.Errorf("save dataset: %w", err)
	}
	s.current = name
	s.rows = result.Rows

	slog.Info("scrape complete",
		slog.String("run_id", result.RunID.String()),
		slog.String("file", name),
		slog.Int("rows", len(result.Rows)),
		slog.Int("skipped", result.SkippedRows),
	)
	return &Summary{FileID: name, Path: path, Result: result}, nil
}

// Load reads a saved dataset and makes it current.
func (s *Service) Load(name string) ([]*models.BookRow, error) {
	rows, err := s.store.Load(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = name
	s.rows = rows
	s.mu.Unlock()
	return rows, nil
}

// Current returns the current dataset's name and rows. name is empty when nothing is loaded.
func (s *Service) Current() (string, []*models.BookRow) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.rows
}

// ListDatasets lists the saved datasets.
func (s *Service) ListDatasets() ([]string, error) {
	return s.store.ListAvailable()
}

// ClassifyBook labels the reviews of the first book in the current dataset titled title.
func (s *Service) ClassifyBook(title string) (*BookSentiment, error) {
	name, rows := s.Current()
	if name == "" {
		return nil, ErrNoDataset
	}

	var book *models.BookRow
	for _, row := range rows {
		if row.Title == title {
			book = row
			break
		}
	}
	if book == nil {
		return nil, fmt.Errorf("%w: %q", ErrBookNotFound, title)
	}

	labels := s.classifier.ClassifyReviews(book.Reviews)
	out := &BookSentiment{
		Book:         book,
		Reviews:      make([]ReviewSentiment, len(book.Reviews)),
		Distribution: sentiment.Distribution(labels),
		TopWords:     analytics.TopWords(book.Reviews, 20),
	}
	for i, r := range book.Reviews {
		out.Reviews[i] = ReviewSentiment{Review: r, Label: labels[i]}
	}
	out.Dominant, out.HasDominant = sentiment.Dominant(labels)
	return out, nil
}
