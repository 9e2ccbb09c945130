package store

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aluiziolira/go-scrape-goodreads/models"
)

// ReadCSV decodes a dataset written by CSVWriter. Columns are matched by header name.
func ReadCSV(r io.Reader, path string) ([]*models.BookRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ErrDecode{Path: path, Err: errors.New("missing header")}
	}
	if err != nil {
		return nil, &ErrDecode{Path: path, Line: 1, Err: err}
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, &ErrDecode{Path: path, Line: 1, Err: err}
	}

	var rows []*models.BookRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			line := 0
			if errors.As(err, &parseErr) {
				line = parseErr.StartLine
			}
			return nil, &ErrDecode{Path: path, Line: line, Err: err}
		}
		line, _ := reader.FieldPos(0)
		if len(record) != len(header) {
			return nil, &ErrDecode{Path: path, Line: line, Err: fmt.Errorf("got %d fields, want %d", len(record), len(header))}
		}
		row, column, err := decodeRecord(record, index)
		if err != nil {
			return nil, &ErrDecode{Path: path, Line: line, Column: column, Err: err}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range Header {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return index, nil
}

func decodeRecord(record []string, index map[string]int) (*models.BookRow, string, error) {
	cell := func(name string) string { return record[index[name]] }
	row := &models.BookRow{
		Title:    DecodeText(cell("Title")),
		Author:   DecodeText(cell("Author")),
		Synopsis: DecodeText(cell("Synopsis")),
	}

	var err error
	if row.Rank, err = strconv.Atoi(cell("Rank")); err != nil {
		return nil, "Rank", err
	}
	if row.AverageRating, err = strconv.ParseFloat(cell("AverageRating"), 64); err != nil {
		return nil, "AverageRating", err
	}
	if row.TotalRatings, err = strconv.Atoi(cell("TotalRatings")); err != nil {
		return nil, "TotalRatings", err
	}
	if row.ReaderCount, err = strconv.Atoi(cell("ReaderCount")); err != nil {
		return nil, "ReaderCount", err
	}
	if row.Genres, err = DecodeGenres(cell("Genres")); err != nil {
		return nil, "Genres", err
	}
	if row.PageCount, err = decodePageCount(cell("PageCount")); err != nil {
		return nil, "PageCount", err
	}
	if published := cell("PublicationDate"); published != "" {
		t, err := time.Parse(DateLayout, published)
		if err != nil {
			return nil, "PublicationDate", err
		}
		row.PublicationDate = &t
	}
	if row.Reviews, err = DecodeReviews(cell("Reviews")); err != nil {
		return nil, "Reviews", err
	}
	return row, "", nil
}

// decodePageCount also accepts integral floats ("320.0") written by spreadsheet tools.
func decodePageCount(cell string) (*int, error) {
	if cell == "" {
		return nil, nil
	}
	if n, err := strconv.Atoi(cell); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || f != math.Trunc(f) {
		return nil, fmt.Errorf("invalid page count %q", cell)
	}
	n := int(f)
	return &n, nil
}

// ReadJSONL decodes a dataset written by JSONWriter.
func ReadJSONL(r io.Reader, path string) ([]*models.BookRow, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var rows []*models.BookRow
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var row models.BookRow
		if err := json.Unmarshal([]byte(text), &row); err != nil {
			return nil, &ErrDecode{Path: path, Line: line, Err: err}
		}
		rows = append(rows, &row)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ErrDecode{Path: path, Line: line, Err: err}
	}
	return rows, nil
}

// ReadYAML decodes a dataset written by YAMLWriter.
func ReadYAML(r io.Reader, path string) ([]*models.BookRow, error) {
	var rows []*models.BookRow
	if err := yaml.NewDecoder(r).Decode(&rows); err != nil && !errors.Is(err, io.EOF) {
		return nil, &ErrDecode{Path: path, Err: err}
	}
	return rows, nil
}
