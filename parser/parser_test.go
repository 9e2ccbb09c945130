package parser

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aluiziolira/go-scrape-goodreads/models"
)

func mustDoc(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc.Selection
}

func listRow(rank int, title, minirating string) string {
	return fmt.Sprintf(`<tr itemscope itemtype="http://schema.org/Book">
<td valign="top" class="number">%d</td>
<td><a class="bookTitle" href="/book/show/%d.%s"><span itemprop="name">%s</span></a>
<a class="authorName" href="/author/show/%d"><span itemprop="name">Author %d</span></a>
<span class="greyText smallText uitext"><span class="minirating"><span class="stars"></span> %s</span></span>
<span class="greyText statistic">%d,204 people shelved this</span></td></tr>`,
		rank, rank, strings.ReplaceAll(title, " ", "_"), title, rank, rank, minirating, rank)
}

func listPage(rows ...string) string {
	return `<html><body><table class="tableList">` + strings.Join(rows, "\n") + `</table></body></html>`
}

const detailHTML = `<html><body>
<div class="BookPageMetadataSection">
  <span class="BookPageMetadataSection__genreButton"><a>Fantasy</a></span>
  <span class="BookPageMetadataSection__genreButton"><a> Young Adult </a></span>
  <span class="BookPageMetadataSection__genreButton"><a>  </a></span>
  <span class="BookPageMetadataSection__genreButton"><a>Romance</a></span>
</div>
<div class="BookPageMetadataSection__description"><span class="Formatted"> A girl, a dragon, a war college. </span></div>
<div class="FeaturedDetails">
  <p data-testid="pagesFormat">528 pages, Hardcover</p>
  <p data-testid="publicationInfo">First published May 2, 2023</p>
</div>
<article class="ReviewCard">
  <span aria-label="Rating 5 out of 5" role="img" class="RatingStars RatingStars__small"></span>
  <section><span class="Formatted">Loved every page.</span></section>
</article>
<article class="ReviewCard">
  <section><span class="Formatted">Still on my nightstand.</span></section>
</article>
<article class="ReviewCard">
  <span aria-label="Rating 2 out of 5" role="img" class="RatingStars RatingStars__small"></span>
</article>
</body></html>`

func TestSelectorCSS(t *testing.T) {
	tests := []struct {
		sel  Selector
		want string
	}{
		{sel: Selector{Tag: "table"}, want: "table"},
		{sel: Selector{Tag: "span", Attr: "class", Value: "greyText statistic"}, want: "span.greyText.statistic"},
		{sel: Selector{Tag: "p", Attr: "data-testid", Value: "pagesFormat"}, want: `p[data-testid="pagesFormat"]`},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sel.CSS())
		})
	}
}

func TestFieldExtractorAbsence(t *testing.T) {
	doc := mustDoc(t, `<div><p data-testid="x">  hello </p><a class="l" href="/x">go</a></div>`)

	text, ok := Text(doc, Selector{Tag: "p", Attr: "data-testid", Value: "x"})
	assert.True(t, ok)
	assert.Equal(t, "hello", text)

	href, ok := Attr(doc, Selector{Tag: "a", Attr: "class", Value: "l"}, "href")
	assert.True(t, ok)
	assert.Equal(t, "/x", href)

	_, ok = Text(doc, Selector{Tag: "p", Attr: "data-testid", Value: "missing"})
	assert.False(t, ok)

	_, ok = Attr(doc, Selector{Tag: "a", Attr: "class", Value: "l"}, "title")
	assert.False(t, ok)

	_, ok = Text(nil, Selector{Tag: "p"})
	assert.False(t, ok)
	assert.Nil(t, All(nil, Selector{Tag: "p"}))
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{input: "528 pages, Hardcover", want: 528, ok: true},
		{input: "  1,024 pages", want: 1024, ok: true},
		{input: "Kindle Edition", ok: false},
		{input: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := LeadingInt(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMiniRating(t *testing.T) {
	avg, total, err := ParseMiniRating("4.32 avg rating — 1,234,567 ratings")
	require.NoError(t, err)
	assert.Equal(t, 4.32, avg)
	assert.Equal(t, 1234567, total)

	_, _, err = ParseMiniRating("really liked it 4.32")
	assert.Error(t, err)

	_, _, err = ParseMiniRating("n/a avg rating — 12 ratings")
	assert.Error(t, err)
}

func TestParsePublicationDate(t *testing.T) {
	got, ok := ParsePublicationDate("First published July 16, 1951")
	require.True(t, ok)
	assert.Equal(t, time.Date(1951, time.July, 16, 0, 0, 0, 0, time.UTC), *got)

	got, ok = ParsePublicationDate("Published January 9, 2024")
	require.True(t, ok)
	assert.Equal(t, 2024, got.Year())

	_, ok = ParsePublicationDate("Expected publication 2026")
	assert.False(t, ok)
}

func TestParseStarLabel(t *testing.T) {
	got, ok := ParseStarLabel("Rating 4 out of 5")
	require.True(t, ok)
	assert.Equal(t, 4, *got)

	_, ok = ParseStarLabel("Rating 9 out of 5")
	assert.False(t, ok)
	_, ok = ParseStarLabel("Rating")
	assert.False(t, ok)
}

func TestParseListPage(t *testing.T) {
	doc := mustDoc(t, listPage(
		listRow(1, "Fourth Wing", "4.58 avg rating — 1,021,345 ratings"),
		listRow(2, "Iron Flame", "really liked it"),
		listRow(3, "Onyx Storm", "4.31 avg rating — 98,112 ratings"),
	))

	page, err := ParseListPage(doc)
	require.NoError(t, err)
	require.Len(t, page.Rows, 2)
	require.Len(t, page.Skipped, 1)

	first := page.Rows[0]
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, "Fourth Wing", first.Title)
	assert.Equal(t, "Author 1", first.Author)
	assert.Equal(t, 4.58, first.AverageRating)
	assert.Equal(t, 1021345, first.TotalRatings)
	assert.Equal(t, 1204, first.ReaderCount)
	assert.Equal(t, "/book/show/1.Fourth_Wing", first.DetailPath)
	assert.Equal(t, 3, page.Rows[1].Rank)

	var rowErr *ErrRowExtraction
	require.True(t, errors.As(page.Skipped[0], &rowErr))
	assert.Equal(t, 2, rowErr.Row)
	assert.Equal(t, "minirating", rowErr.Field)
}

func TestParseListPageDuplicateRank(t *testing.T) {
	doc := mustDoc(t, listPage(
		listRow(1, "A", "4.00 avg rating — 10 ratings"),
		listRow(1, "B", "4.00 avg rating — 10 ratings"),
	))

	page, err := ParseListPage(doc)
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "A", page.Rows[0].Title)
	assert.ErrorIs(t, page.Skipped[0], errDuplicate)
}

func TestParseListPageNoTable(t *testing.T) {
	_, err := ParseListPage(mustDoc(t, `<html><body><p>No books</p></body></html>`))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestParseListRowMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		field string
	}{
		{
			name:  "no rank",
			html:  `<table><tr><td><a class="bookTitle" href="/b">T</a></td></tr></table>`,
			field: "rank",
		},
		{
			name:  "no author",
			html:  `<table><tr><td class="number">1</td><td><a class="bookTitle" href="/b">T</a></td></tr></table>`,
			field: "author",
		},
		{
			name: "no link",
			html: `<table><tr><td class="number">1</td><td><a class="bookTitle">T</a><a class="authorName">A</a>
<span class="minirating">4.1 avg rating — 5 ratings</span><span class="greyText statistic">7 readers</span></td></tr></table>`,
			field: "detail_path",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := mustDoc(t, tt.html).Find("tr").First()
			_, err := ParseListRow(row)
			var rowErr *ErrRowExtraction
			require.True(t, errors.As(err, &rowErr), "got %v", err)
			assert.Equal(t, tt.field, rowErr.Field)
		})
	}
}

func TestParseDetail(t *testing.T) {
	detail := ParseDetail(mustDoc(t, detailHTML))

	assert.Equal(t, []string{"Fantasy", "Young Adult", "Romance"}, detail.Genres)
	require.NotNil(t, detail.PageCount)
	assert.Equal(t, 528, *detail.PageCount)
	require.NotNil(t, detail.PublicationDate)
	assert.Equal(t, time.Date(2023, time.May, 2, 0, 0, 0, 0, time.UTC), *detail.PublicationDate)
	assert.Equal(t, "A girl, a dragon, a war college.", detail.Synopsis)

	require.Len(t, detail.Reviews, 3)
	require.NotNil(t, detail.Reviews[0].Rating)
	assert.Equal(t, 5, *detail.Reviews[0].Rating)
	assert.Equal(t, "Loved every page.", detail.Reviews[0].Content)
	assert.Equal(t, models.Review{Content: "Still on my nightstand."}, detail.Reviews[1])
	require.NotNil(t, detail.Reviews[2].Rating)
	assert.Equal(t, "", detail.Reviews[2].Content)
}

func TestParseDetailMissingPublicationInfo(t *testing.T) {
	html := strings.Replace(detailHTML, `<p data-testid="publicationInfo">First published May 2, 2023</p>`, "", 1)
	detail := ParseDetail(mustDoc(t, html))

	assert.Nil(t, detail.PublicationDate)
	assert.Len(t, detail.Genres, 3)
	require.NotNil(t, detail.PageCount)
	assert.NotEmpty(t, detail.Synopsis)
	assert.Len(t, detail.Reviews, 3)
	assert.Equal(t, []string{"publication_date"}, detail.Gaps())
}

func TestParseDetailUnparsableFields(t *testing.T) {
	html := strings.NewReplacer(
		"528 pages, Hardcover", "Kindle Edition",
		"First published May 2, 2023", "Expected publication soon",
	).Replace(detailHTML)
	detail := ParseDetail(mustDoc(t, html))

	assert.Nil(t, detail.PageCount)
	assert.Nil(t, detail.PublicationDate)
	assert.Len(t, detail.Reviews, 3)
}

func TestParseDetailIdempotent(t *testing.T) {
	first := ParseDetail(mustDoc(t, detailHTML))
	second := ParseDetail(mustDoc(t, detailHTML))
	assert.Equal(t, first, second)
}

func TestParseDetailEmptyPage(t *testing.T) {
	detail := ParseDetail(mustDoc(t, `<html><body></body></html>`))
	assert.Empty(t, detail.Genres)
	assert.Nil(t, detail.PageCount)
	assert.Equal(t, "", detail.Synopsis)
	assert.Empty(t, detail.Reviews)
}

func TestValidateRow(t *testing.T) {
	bad := 7
	tests := []struct {
		name    string
		row     *models.BookRow
		wantErr bool
	}{
		{name: "valid", row: &models.BookRow{Rank: 1, Title: "Dune", Author: "Frank Herbert"}},
		{name: "nil", row: nil, wantErr: true},
		{name: "zero rank", row: &models.BookRow{Title: "Dune", Author: "Frank Herbert"}, wantErr: true},
		{name: "missing title", row: &models.BookRow{Rank: 1, Author: "Frank Herbert"}, wantErr: true},
		{name: "missing author", row: &models.BookRow{Rank: 1, Title: "Dune"}, wantErr: true},
		{
			name:    "blank genre",
			row:     &models.BookRow{Rank: 1, Title: "Dune", Author: "F", Genres: []string{"Sci-Fi", " "}},
			wantErr: true,
		},
		{
			name:    "review rating out of range",
			row:     &models.BookRow{Rank: 1, Title: "Dune", Author: "F", Reviews: []models.Review{{Rating: &bad}}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRow(tt.row)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRow() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
