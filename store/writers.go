package store

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aluiziolira/go-scrape-goodreads/models"
)

// DateLayout is the day-month-year layout of the PublicationDate column.
const DateLayout = "02-01-2006"

// Header lists the CSV dataset columns in order.
var Header = []string{
	"Rank", "Title", "Author", "AverageRating", "TotalRatings", "ReaderCount",
	"Genres", "PageCount", "PublicationDate", "Synopsis", "Reviews",
}

// Writer defines the interface for dataset output.
type Writer interface {
	Write(rows []*models.BookRow) error
	Close() error
	Validate() error
}

// CSVWriter writes records to CSV.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter initialises a CSV writer and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(Header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{
		file:   f,
		writer: writer,
	}, nil
}

// Write appends rows to the CSV output.
func (cw *CSVWriter) Write(rows []*models.BookRow) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, row := range rows {
		record, err := encodeRecord(row)
		if err != nil {
			return err
		}
		if err := cw.writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		cw.file.Close()
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Validate ensures the file has content.
func (cw *CSVWriter) Validate() error {
	info, err := cw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("csv file is empty")
	}
	return nil
}

func encodeRecord(row *models.BookRow) ([]string, error) {
	reviews, err := EncodeReviews(row.Reviews)
	if err != nil {
		return nil, fmt.Errorf("row %d: %w", row.Rank, err)
	}
	genres, err := EncodeGenres(row.Genres)
	if err != nil {
		return nil, fmt.Errorf("row %d: %w", row.Rank, err)
	}
	pages := ""
	if row.PageCount != nil {
		pages = strconv.Itoa(*row.PageCount)
	}
	published := ""
	if row.PublicationDate != nil {
		published = row.PublicationDate.Format(DateLayout)
	}
	return []string{
		strconv.Itoa(row.Rank),
		EncodeText(row.Title),
		EncodeText(row.Author),
		strconv.FormatFloat(row.AverageRating, 'f', -1, 64),
		strconv.Itoa(row.TotalRatings),
		strconv.Itoa(row.ReaderCount),
		genres,
		pages,
		published,
		EncodeText(row.Synopsis),
		reviews,
	}, nil
}

// JSONWriter writes newline-delimited JSON records.
type JSONWriter struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter initialises the JSON writer.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	buffer := bufio.NewWriter(f)
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	return &JSONWriter{
		file:    f,
		writer:  buffer,
		encoder: encoder,
	}, nil
}

// Write appends rows in JSONL format.
func (jw *JSONWriter) Write(rows []*models.BookRow) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	for _, row := range rows {
		if err := jw.encoder.Encode(row); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
	}

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}

	return nil
}

// Close flushes buffers and closes the underlying file.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		jw.file.Close()
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

// Validate ensures the JSON file has data.
func (jw *JSONWriter) Validate() error {
	info, err := jw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat json file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("json file is empty")
	}
	return nil
}

// YAMLWriter buffers rows and writes them as one YAML sequence on Close.
type YAMLWriter struct {
	file *os.File
	rows []*models.BookRow
	mu   sync.Mutex
}

// NewYAMLWriter initialises the YAML writer.
func NewYAMLWriter(filename string) (*YAMLWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create yaml file: %w", err)
	}
	return &YAMLWriter{file: f}, nil
}

// Write buffers rows until Close.
func (yw *YAMLWriter) Write(rows []*models.BookRow) error {
	yw.mu.Lock()
	defer yw.mu.Unlock()
	yw.rows = append(yw.rows, rows...)
	return nil
}

// Close encodes the buffered rows and closes the file.
func (yw *YAMLWriter) Close() error {
	yw.mu.Lock()
	defer yw.mu.Unlock()

	enc := yaml.NewEncoder(yw.file)
	enc.SetIndent(2)
	rows := yw.rows
	if rows == nil {
		rows = []*models.BookRow{}
	}
	if err := enc.Encode(rows); err != nil {
		yw.file.Close()
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		yw.file.Close()
		return fmt.Errorf("close yaml encoder: %w", err)
	}
	return yw.file.Close()
}

// Validate ensures rows were buffered; the file is only written on Close.
func (yw *YAMLWriter) Validate() error {
	yw.mu.Lock()
	defer yw.mu.Unlock()
	if len(yw.rows) == 0 {
		return fmt.Errorf("yaml dataset is empty")
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
