package service

import (
	"github.com/aluiziolira/go-scrape-goodreads/analytics"
	"github.com/aluiziolira/go-scrape-goodreads/sentiment"
)

// BookOpinion is a book's dominant review label.
type BookOpinion struct {
	Rank     int
	Title    string
	Reviews  int
	Dominant sentiment.Label
	HasLabel bool
}

// Report aggregates the current dataset for display.
type Report struct {
	Dataset      string
	Books        int
	TopGenres    []analytics.Count
	BooksByYear  []analytics.YearCount
	GenresByYear []analytics.GenreYear
	Pages        []analytics.PagePoint
	Opinions     []BookOpinion
}

// Report computes the dashboard aggregates of the current dataset.
func (s *Service) Report(topGenres int) (*Report, error) {
	name, rows := s.Current()
	if name == "" {
		return nil, ErrNoDataset
	}

	r := &Report{
		Dataset:      name,
		Books:        len(rows),
		TopGenres:    analytics.TopGenres(rows, topGenres),
		BooksByYear:  analytics.BooksByYear(rows),
		GenresByYear: analytics.GenreYearCounts(rows, 2),
		Pages:        analytics.PagesByFirstGenre(rows),
		Opinions:     make([]BookOpinion, 0, len(rows)),
	}
	for _, row := range rows {
		op := BookOpinion{Rank: row.Rank, Title: row.Title, Reviews: len(row.Reviews)}
		op.Dominant, op.HasLabel = sentiment.Dominant(s.classifier.ClassifyReviews(row.Reviews))
		r.Opinions = append(r.Opinions, op)
	}
	return r, nil
}
