package tabular

import "strings"

// SpreadsheetScanDepth bounds the header search in workbook sheets.
const SpreadsheetScanDepth = 10

// RowPredicate reports whether a row looks like the header row.
type RowPredicate func(row []string) bool

// HeaderDetector locates the header row of a semi-structured table whose
// preamble length varies between file revisions.
type HeaderDetector struct {
	// Match selects the header row.
	Match RowPredicate
	// MaxRows bounds the scan; zero or less scans every row.
	MaxRows int
	// Fallback is used when no row within the bound matches.
	Fallback int
	// Markers describes the expected tokens for error messages.
	Markers []string
}

// NewMarkerDetector matches the first row containing every marker as a
// case-insensitive substring of some cell.
func NewMarkerDetector(maxRows, fallback int, markers ...string) HeaderDetector {
	return HeaderDetector{
		Match:    ContainsAll(markers...),
		MaxRows:  maxRows,
		Fallback: fallback,
		Markers:  markers,
	}
}

// Detect returns the header row index and whether it was found by matching.
func (d HeaderDetector) Detect(rows [][]string) (int, bool) {
	if d.Match != nil {
		limit := len(rows)
		if d.MaxRows > 0 && d.MaxRows < limit {
			limit = d.MaxRows
		}
		for i := 0; i < limit; i++ {
			if d.Match(rows[i]) {
				return i, true
			}
		}
	}
	if d.Fallback < 0 {
		return 0, false
	}
	return d.Fallback, false
}

// ContainsAll builds a predicate requiring every marker in the row.
func ContainsAll(markers ...string) RowPredicate {
	lowered := make([]string, 0, len(markers))
	for _, marker := range markers {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(marker)))
	}
	return func(row []string) bool {
		if len(lowered) == 0 {
			return false
		}
		for _, marker := range lowered {
			if !rowContains(row, func(cell string) bool { return strings.Contains(cell, marker) }) {
				return false
			}
		}
		return true
	}
}

// CellEquals matches a row with a cell equal to value after normalization.
func CellEquals(value string) RowPredicate {
	want := NormalizeCell(value)
	return func(row []string) bool {
		return rowContains(row, func(cell string) bool { return cell == want })
	}
}

// CellContainsAny matches a row with a cell containing any fragment.
func CellContainsAny(fragments ...string) RowPredicate {
	return func(row []string) bool {
		return rowContains(row, func(cell string) bool {
			for _, fragment := range fragments {
				if strings.Contains(cell, fragment) {
					return true
				}
			}
			return false
		})
	}
}

// And combines predicates.
func And(predicates ...RowPredicate) RowPredicate {
	return func(row []string) bool {
		if len(predicates) == 0 {
			return false
		}
		for _, predicate := range predicates {
			if !predicate(row) {
				return false
			}
		}
		return true
	}
}

// NormalizeCell lower-cases and trims a header cell, folding line breaks
// that spreadsheets put into wrapped header text.
func NormalizeCell(value string) string {
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\n", " ")
	return strings.ToLower(strings.TrimSpace(value))
}

func rowContains(row []string, match func(cell string) bool) bool {
	for _, cell := range row {
		if match(NormalizeCell(cell)) {
			return true
		}
	}
	return false
}
