// Package store persists scraped datasets as flat files and loads them back.
package store

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-scrape-goodreads/models"
)

// Format identifies a dataset file encoding.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// FormatOf infers the format from a file name's extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".jsonl", ".json":
		return FormatJSONL, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// DefaultFileName names a scrape's dataset, e.g. "US_most_read_books_m.csv".
func DefaultFileName(country string, duration models.Duration, format Format) string {
	if format == "" {
		format = FormatCSV
	}
	return fmt.Sprintf("%s_most_read_books_%s.%s", country, duration, format)
}

type cachedDataset struct {
	modTime time.Time
	size    int64
	rows    []*models.BookRow
}

// Store saves and loads datasets under one directory. Loaded datasets are
// cached until the file's modification time or size changes.
type Store struct {
	dir   string
	cache *lru.Cache[string, cachedDataset]
}

// New creates a store rooted at dir.
func New(dir string, cacheSize int) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if cacheSize <= 0 {
		cacheSize = 1
	}
	cache, err := lru.New[string, cachedDataset](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create dataset cache: %w", err)
	}
	return &Store{dir: dir, cache: cache}, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path resolves name inside the storage directory unless it is absolute.
func (s *Store) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// Save writes rows to name in the format implied by its extension and returns the file path.
func (s *Store) Save(rows []*models.BookRow, name string) (string, error) {
	format, err := FormatOf(name)
	if err != nil {
		return "", err
	}
	path := s.Path(name)

	writer, err := newWriter(format, path)
	if err != nil {
		return "", err
	}
	if err := writer.Write(rows); err != nil {
		writer.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if len(rows) > 0 {
		if err := writer.Validate(); err != nil {
			writer.Close()
			return "", fmt.Errorf("validate %s: %w", path, err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	s.cache.Remove(path)
	slog.Info("dataset saved", slog.String("path", path), slog.Int("rows", len(rows)))
	return path, nil
}

// Load reads the dataset at name. Any undecodable cell fails the whole load with *ErrDecode.
func (s *Store) Load(name string) ([]*models.BookRow, error) {
	path := s.Path(name)
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat dataset: %w", err)
	}
	if cached, ok := s.cache.Get(path); ok && cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() {
		return cloneRows(cached.rows), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	rows, err := Decode(f, format, path)
	if err != nil {
		return nil, err
	}

	s.cache.Add(path, cachedDataset{modTime: info.ModTime(), size: info.Size(), rows: rows})
	return cloneRows(rows), nil
}

// cloneRows copies cached rows so callers can mutate what Load returns.
func cloneRows(rows []*models.BookRow) []*models.BookRow {
	if rows == nil {
		return nil
	}
	out := make([]*models.BookRow, len(rows))
	for i, row := range rows {
		out[i] = row.Clone()
	}
	return out
}

// ListAvailable returns the dataset files in the storage directory, sorted by name.
func (s *Store) ListAvailable() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read dataset dir: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := FormatOf(entry.Name()); err == nil {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Decode reads rows of the given format from r. path is only used in errors.
func Decode(r io.Reader, format Format, path string) ([]*models.BookRow, error) {
	var (
		rows []*models.BookRow
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = ReadCSV(r, path)
	case FormatJSONL:
		rows, err = ReadJSONL(r, path)
	case FormatYAML:
		rows, err = ReadYAML(r, path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		normalize(row)
	}
	return rows, nil
}

func newWriter(format Format, path string) (Writer, error) {
	switch format {
	case FormatCSV:
		return NewCSVWriter(path)
	case FormatJSONL:
		return NewJSONWriter(path)
	case FormatYAML:
		return NewYAMLWriter(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// normalize maps empty collections to nil so every format loads the same shape.
func normalize(row *models.BookRow) {
	if len(row.Genres) == 0 {
		row.Genres = nil
	}
	if len(row.Reviews) == 0 {
		row.Reviews = nil
	}
}
