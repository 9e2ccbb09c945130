package parser

import (
	"errors"
	"fmt"
)

// ErrNoData indicates the list page has no results table.
var ErrNoData = errors.New("no results table on list page")

// ErrRowExtraction indicates a list row was missing a required field or held an unparsable value.
type ErrRowExtraction struct {
	Row   int
	Field string
	Err   error
}

func (e *ErrRowExtraction) Error() string {
	return fmt.Sprintf("row %d: field %s: %v", e.Row, e.Field, e.Err)
}

func (e *ErrRowExtraction) Unwrap() error {
	return e.Err
}

var (
	errMissing   = errors.New("missing")
	errDuplicate = errors.New("duplicate rank")
)
