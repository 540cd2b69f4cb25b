package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	demographics "chargemap/internal/demographics/domain"
	"chargemap/internal/tabular"
)

const (
	defaultPostalSheet   = "T14"
	defaultDistrictSheet = "T5"
	sheetHeaderFallback  = 2
)

// WorkbookSource reads the statistical office population workbook: a
// postal-code sheet and a district sheet, each with a variable preamble.
type WorkbookSource struct {
	path          string
	postalSheet   string
	districtSheet string
	memo          *tabular.Memo
}

// WorkbookOption configures the source.
type WorkbookOption func(*WorkbookSource)

// WithPostalSheet overrides the postal-code sheet name.
func WithPostalSheet(sheet string) WorkbookOption {
	return func(s *WorkbookSource) {
		if sheet != "" {
			s.postalSheet = sheet
		}
	}
}

// WithDistrictSheet overrides the district sheet name.
func WithDistrictSheet(sheet string) WorkbookOption {
	return func(s *WorkbookSource) {
		if sheet != "" {
			s.districtSheet = sheet
		}
	}
}

// WithWorkbookMemo keeps decoded rows for the lifetime of memo.
func WithWorkbookMemo(memo *tabular.Memo) WorkbookOption {
	return func(s *WorkbookSource) {
		s.memo = memo
	}
}

// NewWorkbookSource constructs a source.
func NewWorkbookSource(path string, opts ...WorkbookOption) *WorkbookSource {
	s := &WorkbookSource{path: path, postalSheet: defaultPostalSheet, districtSheet: defaultDistrictSheet}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PostalHeaderDetector finds a row with an exact "postleitzahl" cell and a
// cell mentioning a total within the first rows of the sheet.
func PostalHeaderDetector() tabular.HeaderDetector {
	return tabular.HeaderDetector{
		Match:    tabular.And(tabular.CellEquals("postleitzahl"), tabular.CellContainsAny("ins", "gesamt")),
		MaxRows:  tabular.SpreadsheetScanDepth,
		Fallback: sheetHeaderFallback,
		Markers:  []string{"postleitzahl", "ins|gesamt"},
	}
}

// DistrictHeaderDetector finds a row with a district cell and a total cell.
func DistrictHeaderDetector() tabular.HeaderDetector {
	return tabular.HeaderDetector{
		Match:    tabular.And(tabular.CellContainsAny("bezirk"), tabular.CellContainsAny("gesamt")),
		MaxRows:  tabular.SpreadsheetScanDepth,
		Fallback: sheetHeaderFallback,
		Markers:  []string{"bezirk", "gesamt"},
	}
}

type postalSnapshot struct {
	records []demographics.PopulationRecord
	drops   tabular.Drops
}

type districtSnapshot struct {
	records []demographics.DistrictPopulation
	drops   tabular.Drops
}

// PostalPopulation reads the postal-code sheet.
func (s *WorkbookSource) PostalPopulation(ctx context.Context) ([]demographics.PopulationRecord, tabular.Drops, error) {
	if s == nil || s.path == "" {
		return nil, nil, errors.New("population workbook: empty path")
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	value, err := s.memo.Load("postal:"+s.path+"#"+s.postalSheet, func() (any, error) {
		return s.loadPostal()
	})
	if err != nil {
		return nil, nil, err
	}
	snapshot := value.(*postalSnapshot)
	return append([]demographics.PopulationRecord(nil), snapshot.records...), copyDrops(snapshot.drops), nil
}

// DistrictPopulation reads the district sheet.
func (s *WorkbookSource) DistrictPopulation(ctx context.Context) ([]demographics.DistrictPopulation, tabular.Drops, error) {
	if s == nil || s.path == "" {
		return nil, nil, errors.New("population workbook: empty path")
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	value, err := s.memo.Load("district:"+s.path+"#"+s.districtSheet, func() (any, error) {
		return s.loadDistricts()
	})
	if err != nil {
		return nil, nil, err
	}
	snapshot := value.(*districtSnapshot)
	return append([]demographics.DistrictPopulation(nil), snapshot.records...), copyDrops(snapshot.drops), nil
}

func (s *WorkbookSource) sheet(name string, detector tabular.HeaderDetector) (*tabular.Table, error) {
	wb, err := tabular.OpenWorkbook(s.path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	return wb.Table(name, detector)
}

func (s *WorkbookSource) loadPostal() (*postalSnapshot, error) {
	table, err := s.sheet(s.postalSheet, PostalHeaderDetector())
	if err != nil {
		return nil, err
	}
	postalIdx, err := table.RequireColumn("postleitzahl", isPostalColumn)
	if err != nil {
		return nil, err
	}
	totalIdx := totalColumn(table, postalIdx)
	if totalIdx < 0 {
		_, err := table.RequireColumnNamed("insgesamt")
		return nil, err
	}
	records, drops := postalRecords(table, postalIdx, totalIdx)
	return &postalSnapshot{records: records, drops: drops}, nil
}

func (s *WorkbookSource) loadDistricts() (*districtSnapshot, error) {
	table, err := s.sheet(s.districtSheet, DistrictHeaderDetector())
	if err != nil {
		return nil, err
	}
	districtIdx := table.Column(func(name string) bool { return strings.Contains(name, "bezirk") })
	if districtIdx < 0 {
		districtIdx = 0
	}
	totalIdx := totalColumn(table, districtIdx)
	if totalIdx < 0 || totalIdx == districtIdx {
		return nil, &tabular.FormatError{
			Path:    s.path,
			Sheet:   table.Sheet,
			Markers: table.Markers,
			Err:     fmt.Errorf("%w: total", tabular.ErrMissingColumn),
		}
	}

	snapshot := &districtSnapshot{drops: tabular.Drops{}}
	for _, row := range table.Rows {
		name := table.Value(row, districtIdx)
		if name == "" {
			snapshot.drops.Add(DropDistrict)
			continue
		}
		residents, ok := tabular.ParseCount(table.Value(row, totalIdx))
		if !ok {
			snapshot.drops.Add(DropCount)
			continue
		}
		if residents < 0 {
			snapshot.drops.Add(DropNegative)
			continue
		}
		snapshot.records = append(snapshot.records, demographics.DistrictPopulation{District: name, Residents: residents})
	}
	return snapshot, nil
}
