package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// CSVOptions configures ReadCSV.
type CSVOptions struct {
	Comma    rune
	Latin1   bool
	Detector HeaderDetector
}

// ReadCSV reads a delimited file and detects its header row.
func ReadCSV(path string, opts CSVOptions) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &FormatError{Path: path, Markers: opts.Detector.Markers, Err: err}
	}
	defer file.Close()
	return ParseCSV(file, path, opts)
}

// ParseCSV is ReadCSV over an already opened reader.
func ParseCSV(r io.Reader, path string, opts CSVOptions) (*Table, error) {
	if opts.Latin1 {
		r = charmap.ISO8859_1.NewDecoder().Reader(r)
	}
	reader := csv.NewReader(r)
	reader.Comma = ';'
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &FormatError{Path: path, Markers: opts.Detector.Markers, Err: err}
	}
	return newTable(path, "", records, opts.Detector)
}

// Workbook is an opened spreadsheet file.
type Workbook struct {
	path string
	file *excelize.File
}

// OpenWorkbook opens an xlsx workbook.
func OpenWorkbook(path string) (*Workbook, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	return &Workbook{path: path, file: file}, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	return w.file.Close()
}

// Sheets lists sheet names in workbook order.
func (w *Workbook) Sheets() []string {
	if w == nil || w.file == nil {
		return nil
	}
	return w.file.GetSheetList()
}

// HasSheet reports whether the sheet exists.
func (w *Workbook) HasSheet(sheet string) bool {
	if w == nil || w.file == nil {
		return false
	}
	idx, err := w.file.GetSheetIndex(sheet)
	return err == nil && idx >= 0
}

// Table reads a sheet and detects its header row. An empty sheet name
// selects the first sheet.
func (w *Workbook) Table(sheet string, detector HeaderDetector) (*Table, error) {
	if w == nil || w.file == nil {
		return nil, fmt.Errorf("tabular: nil workbook")
	}
	if sheet == "" {
		sheets := w.Sheets()
		if len(sheets) == 0 {
			return nil, &FormatError{Path: w.path, Markers: detector.Markers, Err: ErrSheetNotFound}
		}
		sheet = sheets[0]
	}
	if !w.HasSheet(sheet) {
		return nil, &FormatError{Path: w.path, Sheet: sheet, Markers: detector.Markers, Err: ErrSheetNotFound}
	}
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &FormatError{Path: w.path, Sheet: sheet, Markers: detector.Markers, Err: err}
	}
	return newTable(w.path, sheet, rows, detector)
}
