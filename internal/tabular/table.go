package tabular

import (
	"fmt"
	"strings"
)

// Table is a parsed source with a detected header row.
type Table struct {
	Path          string
	Sheet         string
	HeaderRow     int
	HeaderMatched bool
	Header        []string
	Rows          [][]string
	Markers       []string
}

func newTable(path, sheet string, records [][]string, detector HeaderDetector) (*Table, error) {
	headerRow, matched := detector.Detect(records)
	table := &Table{
		Path:          path,
		Sheet:         sheet,
		HeaderRow:     headerRow,
		HeaderMatched: matched,
		Markers:       detector.Markers,
	}
	if headerRow >= len(records) {
		return nil, table.formatError(ErrNoColumns)
	}
	header := make([]string, len(records[headerRow]))
	nonEmpty := 0
	for i, cell := range records[headerRow] {
		cell = strings.TrimPrefix(cell, "\ufeff")
		header[i] = strings.TrimSpace(cell)
		if header[i] != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return nil, table.formatError(ErrNoColumns)
	}
	table.Header = header
	for _, record := range records[headerRow+1:] {
		if isBlank(record) {
			continue
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

// Column returns the first column whose normalized name satisfies match,
// or -1.
func (t *Table) Column(match func(name string) bool) int {
	if t == nil {
		return -1
	}
	for i, name := range t.Header {
		if match(NormalizeCell(name)) {
			return i
		}
	}
	return -1
}

// ColumnNamed returns the first column equal to any of names, or -1.
func (t *Table) ColumnNamed(names ...string) int {
	return t.Column(func(name string) bool {
		for _, candidate := range names {
			if name == NormalizeCell(candidate) {
				return true
			}
		}
		return false
	})
}

// RequireColumn is Column failing with a FormatError when nothing matches.
func (t *Table) RequireColumn(label string, match func(name string) bool) (int, error) {
	idx := t.Column(match)
	if idx < 0 {
		return -1, t.formatError(fmt.Errorf("%w: %s", ErrMissingColumn, label))
	}
	return idx, nil
}

// RequireColumnNamed is ColumnNamed failing with a FormatError.
func (t *Table) RequireColumnNamed(names ...string) (int, error) {
	idx := t.ColumnNamed(names...)
	if idx < 0 {
		return -1, t.formatError(fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(names, "|")))
	}
	return idx, nil
}

// Value returns the trimmed cell at idx, or "" when the row is short.
func (t *Table) Value(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (t *Table) formatError(err error) error {
	return &FormatError{Path: t.Path, Sheet: t.Sheet, Markers: t.Markers, Err: err}
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
