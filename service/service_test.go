package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aluiziolira/go-scrape-goodreads/models"
	"github.com/aluiziolira/go-scrape-goodreads/sentiment"
	"github.com/aluiziolira/go-scrape-goodreads/store"
)

type fakeFetcher struct {
	rows  []*models.BookRow
	err   error
	calls []string
}

func (f *fakeFetcher) FetchRankedList(_ context.Context, country string, duration models.Duration) (*models.ScrapeResult, error) {
	f.calls = append(f.calls, country+"/"+string(duration))
	if f.err != nil {
		return nil, f.err
	}
	return &models.ScrapeResult{RunID: uuid.New(), Country: country, Duration: duration, Rows: f.rows}, nil
}

type fixedScorer map[string]float64

func (f fixedScorer) Compound(text string) float64 {
	return f[text]
}

func intPtr(v int) *int { return &v }

func fixtureRows() []*models.BookRow {
	return []*models.BookRow{
		{
			Rank: 1, Title: "Fourth Wing", Author: "Rebecca Yarros", AverageRating: 4.58,
			Genres: []string{"Fantasy", "Romance"}, PageCount: intPtr(528),
			Reviews: []models.Review{
				{Rating: intPtr(5), Content: "loved it"},
				{Rating: intPtr(1), Content: "hated it"},
				{Content: "loved it"},
			},
		},
		{Rank: 2, Title: "Iron Flame", Author: "Rebecca Yarros", AverageRating: 4.4},
	}
}

func newTestService(t *testing.T, fetcher Fetcher) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.New(dir, 2)
	require.NoError(t, err)
	classifier := sentiment.New(fixedScorer{"loved it": 0.8, "hated it": -0.8})
	return New(fetcher, st, classifier, store.FormatCSV), dir
}

func TestScrapeSavesAndSetsCurrent(t *testing.T) {
	fetcher := &fakeFetcher{rows: fixtureRows()}
	svc, dir := newTestService(t, fetcher)

	fileID, err := svc.Scrape(context.Background(), "us", models.Monthly)
	require.NoError(t, err)
	assert.Equal(t, "US_most_read_books_m.csv", fileID)
	assert.Equal(t, []string{"US/m"}, fetcher.calls)
	assert.FileExists(t, filepath.Join(dir, fileID))

	name, rows := svc.Current()
	assert.Equal(t, fileID, name)
	assert.Len(t, rows, 2)

	datasets, err := svc.ListDatasets()
	require.NoError(t, err)
	assert.Equal(t, []string{fileID}, datasets)
}

func TestScrapeAcceptsLongDurationName(t *testing.T) {
	fetcher := &fakeFetcher{rows: fixtureRows()}
	svc, dir := newTestService(t, fetcher)

	fileID, err := svc.Scrape(context.Background(), "us", models.Duration("Monthly"))
	require.NoError(t, err)
	assert.Equal(t, []string{"US/m"}, fetcher.calls)
	assert.Equal(t, "US_most_read_books_m.csv", fileID)
	assert.FileExists(t, filepath.Join(dir, fileID))
}

func TestScrapeEmptyResultWritesNothing(t *testing.T) {
	svc, dir := newTestService(t, &fakeFetcher{})

	_, err := svc.Scrape(context.Background(), "all", models.Yearly)
	assert.ErrorIs(t, err, ErrEmptyResult)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	name, _ := svc.Current()
	assert.Empty(t, name)
}

func TestScrapeFetchFailure(t *testing.T) {
	boom := errors.New("boom")
	svc, _ := newTestService(t, &fakeFetcher{err: boom})

	_, err := svc.Scrape(context.Background(), "all", models.Yearly)
	assert.ErrorIs(t, err, boom)
}

func TestScrapeRejectsBadInput(t *testing.T) {
	fetcher := &fakeFetcher{rows: fixtureRows()}
	svc, _ := newTestService(t, fetcher)

	_, err := svc.Scrape(context.Background(), "USA", models.Yearly)
	assert.Error(t, err)
	_, err = svc.Scrape(context.Background(), "US", models.Duration("d"))
	assert.Error(t, err)
	assert.Empty(t, fetcher.calls)
}

func TestLoadAndClassifyBook(t *testing.T) {
	svc, _ := newTestService(t, &fakeFetcher{rows: fixtureRows()})

	_, err := svc.ClassifyBook("Fourth Wing")
	assert.ErrorIs(t, err, ErrNoDataset)

	fileID, err := svc.Scrape(context.Background(), "all", models.Yearly)
	require.NoError(t, err)

	rows, err := svc.Load(fileID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	got, err := svc.ClassifyBook("Fourth Wing")
	require.NoError(t, err)
	require.Len(t, got.Reviews, 3)
	assert.Equal(t, sentiment.VeryPositive, got.Reviews[0].Label)
	assert.Equal(t, sentiment.VeryNegative, got.Reviews[1].Label)
	assert.Nil(t, got.Reviews[2].Review.Rating)
	assert.True(t, got.HasDominant)
	assert.Equal(t, sentiment.VeryPositive, got.Dominant)
	assert.Equal(t, 2, got.Distribution[0].Count)

	empty, err := svc.ClassifyBook("Iron Flame")
	require.NoError(t, err)
	assert.False(t, empty.HasDominant)

	_, err = svc.ClassifyBook("Onyx Storm")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestReport(t *testing.T) {
	svc, _ := newTestService(t, &fakeFetcher{rows: fixtureRows()})

	_, err := svc.Report(10)
	assert.ErrorIs(t, err, ErrNoDataset)

	_, err = svc.Scrape(context.Background(), "all", models.Yearly)
	require.NoError(t, err)

	report, err := svc.Report(10)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Books)
	assert.Len(t, report.TopGenres, 2)
	require.Len(t, report.Opinions, 2)
	assert.Equal(t, sentiment.VeryPositive, report.Opinions[0].Dominant)
	assert.False(t, report.Opinions[1].HasLabel)
}
