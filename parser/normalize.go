package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PublicationLayout is the long-form date layout used on detail pages.
const PublicationLayout = "January 2, 2006"

// LeadingInt parses the first whitespace-separated token of text as an integer,
// ignoring thousands separators.
func LeadingInt(text string) (int, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, false
	}
	value, err := strconv.Atoi(strings.ReplaceAll(fields[0], ",", ""))
	if err != nil {
		return 0, false
	}
	return value, true
}

// ParseMiniRating splits "4.32 avg rating — 1,234,567 ratings" into the average and the total.
func ParseMiniRating(text string) (float64, int, error) {
	fields := strings.Fields(text)
	if len(fields) < 5 {
		return 0, 0, fmt.Errorf("unexpected rating text %q", text)
	}
	avg, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("average rating: %w", err)
	}
	total, err := strconv.Atoi(strings.ReplaceAll(fields[4], ",", ""))
	if err != nil {
		return 0, 0, fmt.Errorf("total ratings: %w", err)
	}
	if total < 0 {
		return 0, 0, fmt.Errorf("negative total ratings %d", total)
	}
	return avg, total, nil
}

// ParsePublicationDate strips the "First published"/"Published" markers and parses the rest.
func ParsePublicationDate(text string) (*time.Time, bool) {
	text = strings.ReplaceAll(text, "First published", "")
	text = strings.ReplaceAll(text, "Published", "")
	parsed, err := time.Parse(PublicationLayout, strings.TrimSpace(text))
	if err != nil {
		return nil, false
	}
	return &parsed, true
}

// ParseStarLabel reads the star count from an accessibility label such as "Rating 4 out of 5".
func ParseStarLabel(label string) (*int, bool) {
	fields := strings.Fields(label)
	if len(fields) < 2 {
		return nil, false
	}
	stars, err := strconv.Atoi(fields[1])
	if err != nil || stars < 1 || stars > 5 {
		return nil, false
	}
	return &stars, true
}
