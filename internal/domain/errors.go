package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchema marks input files whose header lacks required columns.
	ErrSchema = errors.New("schema error")
	// ErrDataFormat marks individual fields that failed to parse.
	ErrDataFormat = errors.New("data format error")
	// ErrInvariantViolation marks a record that reached suggestion without any flag set.
	ErrInvariantViolation = errors.New("invariant violation")
)

// SchemaError reports the required columns missing from an input header.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("schema error: missing required column(s): %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("schema error in %s: missing required column(s): %s", e.Source, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// DataFormatError reports a single field that could not be parsed.
// Line is the 1-based physical line number in the input file (header is line 1).
type DataFormatError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("data format error at line %d, column %s (value %q): %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *DataFormatError) Unwrap() error {
	return e.Err
}

func (e *DataFormatError) Is(target error) bool {
	return target == ErrDataFormat
}
