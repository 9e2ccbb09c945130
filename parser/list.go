package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-scrape-goodreads/models"
)

var (
	resultsTable = Selector{Tag: "table", Attr: "class", Value: "tableList"}
	bookRow      = Selector{Tag: "tr", Attr: "itemtype", Value: "http://schema.org/Book"}
	rankCell     = Selector{Tag: "td", Attr: "class", Value: "number"}
	titleLink    = Selector{Tag: "a", Attr: "class", Value: "bookTitle"}
	authorLink   = Selector{Tag: "a", Attr: "class", Value: "authorName"}
	miniRating   = Selector{Tag: "span", Attr: "class", Value: "minirating"}
	statistic    = Selector{Tag: "span", Attr: "class", Value: "greyText statistic"}
)

// ListPage is the parse result of a most-read list page.
type ListPage struct {
	Rows    []*models.BookRow
	Skipped []error
}

// ParseListPage extracts every well-formed row from the results table in table order.
// Malformed rows and repeated ranks are skipped and reported in Skipped.
func ParseListPage(doc *goquery.Selection) (*ListPage, error) {
	table, ok := Find(doc, resultsTable)
	if !ok {
		return nil, ErrNoData
	}

	page := &ListPage{}
	ranks := make(map[int]struct{})
	table.Find(bookRow.CSS()).Each(func(i int, s *goquery.Selection) {
		row, err := ParseListRow(s)
		if err != nil {
			if rowErr, ok := err.(*ErrRowExtraction); ok {
				rowErr.Row = i + 1
			}
			page.Skipped = append(page.Skipped, err)
			return
		}
		if _, dup := ranks[row.Rank]; dup {
			page.Skipped = append(page.Skipped, &ErrRowExtraction{Row: i + 1, Field: "rank", Err: errDuplicate})
			return
		}
		ranks[row.Rank] = struct{}{}
		page.Rows = append(page.Rows, row)
	})
	return page, nil
}

// ParseListRow extracts the summary fields of a single book row.
func ParseListRow(s *goquery.Selection) (*models.BookRow, error) {
	rankText, ok := Text(s, rankCell)
	if !ok {
		return nil, rowErr("rank", errMissing)
	}
	rank, err := strconv.Atoi(rankText)
	if err != nil {
		return nil, rowErr("rank", err)
	}
	if rank <= 0 {
		return nil, rowErr("rank", fmt.Errorf("non-positive rank %d", rank))
	}

	title, ok := Text(s, titleLink)
	if !ok || title == "" {
		return nil, rowErr("title", errMissing)
	}
	author, ok := Text(s, authorLink)
	if !ok || author == "" {
		return nil, rowErr("author", errMissing)
	}

	ratingText, ok := Text(s, miniRating)
	if !ok {
		return nil, rowErr("minirating", errMissing)
	}
	avg, total, err := ParseMiniRating(ratingText)
	if err != nil {
		return nil, rowErr("minirating", err)
	}

	statText, ok := Text(s, statistic)
	if !ok {
		return nil, rowErr("readers", errMissing)
	}
	readers, ok := LeadingInt(statText)
	if !ok || readers < 0 {
		return nil, rowErr("readers", fmt.Errorf("unparsable reader count %q", statText))
	}

	href, ok := Attr(s, titleLink, "href")
	if !ok || strings.TrimSpace(href) == "" {
		return nil, rowErr("detail_path", errMissing)
	}

	return &models.BookRow{
		Rank:          rank,
		Title:         title,
		Author:        author,
		AverageRating: avg,
		TotalRatings:  total,
		ReaderCount:   readers,
		DetailPath:    strings.TrimSpace(href),
	}, nil
}

func rowErr(field string, err error) error {
	return &ErrRowExtraction{Field: field, Err: err}
}
