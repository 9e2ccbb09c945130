// Package models defines data structures for the scraper.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Review is a single user review from a book's detail page.
// A nil Rating marks a review without stars (a "pending read").
type Review struct {
	Rating  *int   `json:"rating" yaml:"rating"`
	Content string `json:"content" yaml:"content"`
}

// BookDetail holds the fields extracted from a detail page.
type BookDetail struct {
	Genres          []string
	PageCount       *int
	PublicationDate *time.Time
	Synopsis        string
	Reviews         []Review
}

// BookRow is one ranked entry of a most-read list, optionally enriched with detail fields.
type BookRow struct {
	Rank          int     `json:"rank" yaml:"rank"`
	Title         string  `json:"title" yaml:"title"`
	Author        string  `json:"author" yaml:"author"`
	AverageRating float64 `json:"average_rating" yaml:"average_rating"`
	TotalRatings  int     `json:"total_ratings" yaml:"total_ratings"`
	ReaderCount   int     `json:"reader_count" yaml:"reader_count"`
	DetailPath    string  `json:"detail_path" yaml:"detail_path"`

	Genres          []string   `json:"genres" yaml:"genres"`
	PageCount       *int       `json:"page_count" yaml:"page_count"`
	PublicationDate *time.Time `json:"publication_date" yaml:"publication_date"`
	Synopsis        string     `json:"synopsis" yaml:"synopsis"`
	Reviews         []Review   `json:"reviews" yaml:"reviews"`
}

// Enrich attaches detail fields to the row. Absent fields stay absent.
func (b *BookRow) Enrich(d *BookDetail) {
	if d == nil {
		return
	}
	b.Genres = d.Genres
	b.PageCount = d.PageCount
	b.PublicationDate = d.PublicationDate
	b.Synopsis = d.Synopsis
	b.Reviews = d.Reviews
}

// Clone returns a deep copy of the row. Nil and empty slices are preserved as they are.
func (b *BookRow) Clone() *BookRow {
	if b == nil {
		return nil
	}
	out := *b
	if b.Genres != nil {
		out.Genres = append(make([]string, 0, len(b.Genres)), b.Genres...)
	}
	if b.PageCount != nil {
		pages := *b.PageCount
		out.PageCount = &pages
	}
	if b.PublicationDate != nil {
		date := *b.PublicationDate
		out.PublicationDate = &date
	}
	if b.Reviews != nil {
		out.Reviews = make([]Review, len(b.Reviews))
		for i, r := range b.Reviews {
			if r.Rating != nil {
				rating := *r.Rating
				r.Rating = &rating
			}
			out.Reviews[i] = r
		}
	}
	return &out
}

// Gaps lists the enrichment fields that could not be extracted.
func (d *BookDetail) Gaps() []string {
	if d == nil {
		return nil
	}
	var gaps []string
	if len(d.Genres) == 0 {
		gaps = append(gaps, "genres")
	}
	if d.PageCount == nil {
		gaps = append(gaps, "page_count")
	}
	if d.PublicationDate == nil {
		gaps = append(gaps, "publication_date")
	}
	if d.Synopsis == "" {
		gaps = append(gaps, "synopsis")
	}
	return gaps
}

// Duration is the ranking window of a most-read list.
type Duration string

const (
	Yearly  Duration = "y"
	Monthly Duration = "m"
	Weekly  Duration = "w"
)

// ParseDuration accepts a duration code or its long name.
func ParseDuration(s string) (Duration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yearly", "year":
		return Yearly, nil
	case "m", "monthly", "month":
		return Monthly, nil
	case "w", "weekly", "week":
		return Weekly, nil
	default:
		return "", fmt.Errorf("unknown duration %q (want yearly, monthly, or weekly)", s)
	}
}

// AllCountries is the sentinel for the worldwide list.
const AllCountries = "all"

// KnownCountries maps the list's country codes to display names.
var KnownCountries = map[string]string{
	AllCountries: "Worldwide",
	"US":         "United States",
	"ES":         "Spain",
	"DE":         "Germany",
	"GB":         "United Kingdom",
	"IT":         "Italy",
	"CA":         "Canada",
	"MX":         "Mexico",
	"AR":         "Argentina",
	"AU":         "Australia",
}

// CountryName returns the display name of a country code, or the code itself when unknown.
func CountryName(code string) string {
	if name, ok := KnownCountries[code]; ok {
		return name
	}
	return code
}

// IsKnownCountry reports whether the list has been seen published for code.
func IsKnownCountry(code string) bool {
	_, ok := KnownCountries[code]
	return ok
}

// NormalizeCountry returns "all" or an upper-cased two-letter code.
func NormalizeCountry(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, AllCountries) {
		return AllCountries, nil
	}
	if len(code) != 2 {
		return "", fmt.Errorf("invalid country code %q", code)
	}
	for _, r := range code {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return "", fmt.Errorf("invalid country code %q", code)
		}
	}
	return strings.ToUpper(code), nil
}

// ScrapeResult holds the overall result of a scraping operation
type ScrapeResult struct {
	RunID          uuid.UUID
	Country        string
	Duration       Duration
	Rows           []*BookRow
	StartTime      time.Time
	EndTime        time.Time
	RequestCount   int
	SkippedRows    int
	DetailFailures int
	EnrichmentGaps map[string]int
}
