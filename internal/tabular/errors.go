package tabular

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoColumns is returned when a parse yields an empty header.
	ErrNoColumns = errors.New("tabular: no columns")
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("tabular: missing column")
	// ErrSheetNotFound is returned when a workbook sheet does not exist.
	ErrSheetNotFound = errors.New("tabular: sheet not found")
)

// FormatError reports a source whose layout could not be recognized.
type FormatError struct {
	Path    string
	Sheet   string
	Markers []string
	Err     error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString("format error: ")
	b.WriteString(e.Path)
	if e.Sheet != "" {
		b.WriteString(" sheet ")
		b.WriteString(e.Sheet)
	}
	if len(e.Markers) > 0 {
		fmt.Fprintf(&b, " (markers %q)", e.Markers)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *FormatError) Unwrap() error { return e.Err }
