package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aluiziolira/go-scrape-goodreads/models"
)

// reviewsVersion prefixes every encoded Reviews cell.
const reviewsVersion = "v1:"

var (
	genreEscaper = strings.NewReplacer(`\`, `\\`, `,`, `\,`, "\r", `\r`)
	textEscaper  = strings.NewReplacer(`\`, `\\`, "\r", `\r`)
)

// errEmptyGenre rejects genre names a Genres cell cannot tell apart from no genres.
var errEmptyGenre = errors.New("empty genre name")

// EncodeGenres joins genres with ", ", escaping commas, backslashes and carriage returns inside a genre.
func EncodeGenres(genres []string) (string, error) {
	parts := make([]string, len(genres))
	for i, g := range genres {
		if g == "" {
			return "", errEmptyGenre
		}
		parts[i] = genreEscaper.Replace(g)
	}
	return strings.Join(parts, ", "), nil
}

// EncodeText escapes backslashes and carriage returns in a free-text cell.
// encoding/csv folds "\r\n" inside quoted fields to "\n", so CR never reaches the file raw.
func EncodeText(text string) string {
	return textEscaper.Replace(text)
}

// DecodeText reverses EncodeText. A backslash before any other byte is kept as is,
// so text written by other tools loads unchanged.
func DecodeText(cell string) string {
	if !strings.Contains(cell, `\`) {
		return cell
	}
	var out strings.Builder
	out.Grow(len(cell))
	for i := 0; i < len(cell); i++ {
		c := cell[i]
		if c != '\\' || i+1 == len(cell) {
			out.WriteByte(c)
			continue
		}
		switch cell[i+1] {
		case '\\':
			out.WriteByte('\\')
			i++
		case 'r':
			out.WriteByte('\r')
			i++
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}

// DecodeGenres reverses EncodeGenres. An empty cell decodes to no genres.
func DecodeGenres(cell string) ([]string, error) {
	if cell == "" {
		return nil, nil
	}

	var (
		out     []string
		current strings.Builder
		escaped bool
	)
	for i := 0; i < len(cell); i++ {
		c := cell[i]
		switch {
		case escaped:
			if c == 'r' {
				c = '\r'
			}
			current.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == ',':
			out = append(out, current.String())
			current.Reset()
			if i+1 < len(cell) && cell[i+1] == ' ' {
				i++
			}
		default:
			current.WriteByte(c)
		}
	}
	if escaped {
		return nil, errors.New("dangling escape at end of genres")
	}
	return append(out, current.String()), nil
}

type reviewCell struct {
	Rating  *int   `json:"rating"`
	Content string `json:"content"`
}

// EncodeReviews renders reviews as "v1:" followed by a JSON array of {rating, content}.
func EncodeReviews(reviews []models.Review) (string, error) {
	cells := make([]reviewCell, len(reviews))
	for i, r := range reviews {
		cells[i] = reviewCell{Rating: r.Rating, Content: r.Content}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(cells); err != nil {
		return "", fmt.Errorf("encode reviews: %w", err)
	}
	return reviewsVersion + strings.TrimSuffix(buf.String(), "\n"), nil
}

// DecodeReviews parses a cell written by EncodeReviews. An empty cell decodes to no reviews.
func DecodeReviews(cell string) ([]models.Review, error) {
	if cell == "" {
		return nil, nil
	}
	payload, ok := strings.CutPrefix(cell, reviewsVersion)
	if !ok {
		version, _, _ := strings.Cut(cell, ":")
		if len(version) > 8 {
			version = version[:8] + "..."
		}
		return nil, fmt.Errorf("unknown reviews encoding %q", version)
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.DisallowUnknownFields()
	var cells []reviewCell
	if err := dec.Decode(&cells); err != nil {
		return nil, fmt.Errorf("reviews payload: %w", err)
	}
	if dec.More() {
		return nil, errors.New("reviews payload: trailing data")
	}
	if len(cells) == 0 {
		return nil, nil
	}

	reviews := make([]models.Review, len(cells))
	for i, c := range cells {
		if c.Rating != nil && (*c.Rating < 1 || *c.Rating > 5) {
			return nil, fmt.Errorf("review %d: rating %d outside 1-5", i+1, *c.Rating)
		}
		reviews[i] = models.Review{Rating: c.Rating, Content: c.Content}
	}
	return reviews, nil
}
