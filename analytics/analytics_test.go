package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aluiziolira/go-scrape-goodreads/models"
)

func book(title string, year int, pages int, genres ...string) *models.BookRow {
	row := &models.BookRow{Title: title, Genres: genres}
	if year > 0 {
		t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		row.PublicationDate = &t
	}
	if pages > 0 {
		row.PageCount = &pages
	}
	return row
}

func fixtureRows() []*models.BookRow {
	return []*models.BookRow{
		book("A", 2023, 528, "Fantasy", "Romance", "Dragons"),
		book("B", 2022, 0, "Thriller", "Mystery"),
		book("C", 2023, 320, "Romance", "Fantasy"),
		book("D", 0, 410, "Fantasy"),
		book("E", 2022, 0),
	}
}

func TestTopGenres(t *testing.T) {
	got := TopGenres(fixtureRows(), 3)
	assert.Equal(t, []Count{
		{Key: "Fantasy", Count: 3},
		{Key: "Romance", Count: 2},
		{Key: "Dragons", Count: 1},
	}, got)

	assert.Len(t, TopGenres(fixtureRows(), 0), 5)
	assert.Empty(t, TopGenres(nil, 10))
}

func TestBooksByYear(t *testing.T) {
	assert.Equal(t, []YearCount{{Year: 2022, Count: 2}, {Year: 2023, Count: 2}}, BooksByYear(fixtureRows()))
}

func TestGenreYearCounts(t *testing.T) {
	got := GenreYearCounts(fixtureRows(), 2)
	assert.Equal(t, []GenreYear{
		{Year: 2022, Genre: "Mystery", Count: 1},
		{Year: 2022, Genre: "Thriller", Count: 1},
		{Year: 2023, Genre: "Fantasy", Count: 2},
		{Year: 2023, Genre: "Romance", Count: 2},
	}, got)
}

func TestPagesByFirstGenre(t *testing.T) {
	assert.Equal(t, []PagePoint{
		{Title: "A", Genre: "Fantasy", Pages: 528},
		{Title: "C", Genre: "Romance", Pages: 320},
		{Title: "D", Genre: "Fantasy", Pages: 410},
	}, PagesByFirstGenre(fixtureRows()))
}

func TestTopWords(t *testing.T) {
	reviews := []models.Review{
		{Content: "The dragons were AMAZING and the dragons flew"},
		{Content: "Amazing pacing, but the ending dragged"},
		{Content: "El libro es increíble"},
		{Content: ""},
	}
	got := TopWords(reviews, 3)
	assert.Equal(t, []Count{
		{Key: "amazing", Count: 2},
		{Key: "dragons", Count: 2},
		{Key: "dragged", Count: 1},
	}, got)
}
