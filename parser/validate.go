package parser

import (
	"fmt"
	"strings"

	"github.com/aluiziolira/go-scrape-goodreads/models"
)

// ValidateRow ensures a row carries the fields every persisted record needs.
func ValidateRow(b *models.BookRow) error {
	if b == nil {
		return fmt.Errorf("row is nil")
	}
	if b.Rank <= 0 {
		return fmt.Errorf("row has non-positive rank %d", b.Rank)
	}
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("row %d missing title", b.Rank)
	}
	if strings.TrimSpace(b.Author) == "" {
		return fmt.Errorf("row %d missing author for %s", b.Rank, b.Title)
	}
	if b.TotalRatings < 0 || b.ReaderCount < 0 {
		return fmt.Errorf("row %d has negative counts", b.Rank)
	}
	for _, g := range b.Genres {
		if strings.TrimSpace(g) == "" {
			return fmt.Errorf("row %d has a blank genre", b.Rank)
		}
	}
	for _, r := range b.Reviews {
		if r.Rating != nil && (*r.Rating < 1 || *r.Rating > 5) {
			return fmt.Errorf("row %d has review rating %d outside 1-5", b.Rank, *r.Rating)
		}
	}
	return nil
}
