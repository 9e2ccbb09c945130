package store

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for dataset files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// ErrDecode indicates a dataset file could not be decoded into rows.
type ErrDecode struct {
	Path   string
	Line   int
	Column string
	Err    error
}

func (e *ErrDecode) Error() string {
	switch {
	case e.Column != "":
		return fmt.Sprintf("decode %s: line %d: column %s: %v", e.Path, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("decode %s: line %d: %v", e.Path, e.Line, e.Err)
	default:
		return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
	}
}

func (e *ErrDecode) Unwrap() error {
	return e.Err
}
