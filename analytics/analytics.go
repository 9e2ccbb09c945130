// Package analytics computes the dashboard aggregates over a loaded dataset.
package analytics

import (
	"sort"
	"strings"

	"github.com/aluiziolira/go-scrape-goodreads/models"
)

// Count pairs a key with its number of occurrences.
type Count struct {
	Key   string
	Count int
}

// YearCount is the number of books first published in a year.
type YearCount struct {
	Year  int
	Count int
}

// GenreYear is the number of books of a genre published in a year.
type GenreYear struct {
	Year  int
	Genre string
	Count int
}

// PagePoint relates a book's page count to its first genre.
type PagePoint struct {
	Title string
	Genre string
	Pages int
}

// TopGenres counts every genre across rows and returns the n most common.
// n <= 0 returns all of them.
func TopGenres(rows []*models.BookRow, n int) []Count {
	counts := make(map[string]int)
	for _, row := range rows {
		for _, g := range row.Genres {
			counts[g]++
		}
	}
	return top(counts, n)
}

// BooksByYear counts books per publication year, oldest first. Rows without a date are ignored.
func BooksByYear(rows []*models.BookRow) []YearCount {
	counts := make(map[int]int)
	for _, row := range rows {
		if row.PublicationDate != nil {
			counts[row.PublicationDate.Year()]++
		}
	}
	out := make([]YearCount, 0, len(counts))
	for year, n := range counts {
		out = append(out, YearCount{Year: year, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// GenreYearCounts counts books per year and genre using only each book's
// first perBook genres. Ordered by year, then genre.
func GenreYearCounts(rows []*models.BookRow, perBook int) []GenreYear {
	type key struct {
		year  int
		genre string
	}
	counts := make(map[key]int)
	for _, row := range rows {
		if row.PublicationDate == nil {
			continue
		}
		genres := row.Genres
		if perBook > 0 && len(genres) > perBook {
			genres = genres[:perBook]
		}
		for _, g := range genres {
			counts[key{year: row.PublicationDate.Year(), genre: g}]++
		}
	}

	out := make([]GenreYear, 0, len(counts))
	for k, n := range counts {
		out = append(out, GenreYear{Year: k.year, Genre: k.genre, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Genre < out[j].Genre
	})
	return out
}

// PagesByFirstGenre returns one point per book that has both a page count and a genre.
func PagesByFirstGenre(rows []*models.BookRow) []PagePoint {
	var out []PagePoint
	for _, row := range rows {
		if row.PageCount == nil || len(row.Genres) == 0 {
			continue
		}
		out = append(out, PagePoint{Title: row.Title, Genre: row.Genres[0], Pages: *row.PageCount})
	}
	return out
}

// TopWords returns the n most frequent lower-cased words across review texts,
// leaving out stop words. n <= 0 returns all of them.
func TopWords(reviews []models.Review, n int) []Count {
	counts := make(map[string]int)
	for _, r := range reviews {
		for _, word := range strings.Fields(strings.ToLower(r.Content)) {
			if _, stop := stopWords[word]; !stop {
				counts[word]++
			}
		}
	}
	return top(counts, n)
}

// top orders counts by count descending, then key ascending.
func top(counts map[string]int, n int) []Count {
	out := make([]Count, 0, len(counts))
	for k, c := range counts {
		out = append(out, Count{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
