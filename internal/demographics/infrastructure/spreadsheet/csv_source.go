package spreadsheet

import (
	"context"
	"errors"
	"strings"

	demographics "chargemap/internal/demographics/domain"
	"chargemap/internal/tabular"
)

// CSVSource reads a ';' separated postal-code population table with a
// postal code column and a total column.
type CSVSource struct {
	path string
	memo *tabular.Memo
}

// NewCSVSource constructs a source. memo may be nil.
func NewCSVSource(path string, memo *tabular.Memo) *CSVSource {
	return &CSVSource{path: path, memo: memo}
}

func csvHeaderDetector() tabular.HeaderDetector {
	return tabular.HeaderDetector{
		Match: tabular.And(
			tabular.CellContainsAny("plz", "postleitzahl"),
			tabular.CellContainsAny("insgesamt", "einwohner"),
		),
		Markers: []string{"plz|postleitzahl", "insgesamt|einwohner"},
	}
}

// PostalPopulation reads the table.
func (s *CSVSource) PostalPopulation(ctx context.Context) ([]demographics.PopulationRecord, tabular.Drops, error) {
	if s == nil || s.path == "" {
		return nil, nil, errors.New("population csv: empty path")
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	value, err := s.memo.Load("postal-csv:"+s.path, func() (any, error) {
		return s.load()
	})
	if err != nil {
		return nil, nil, err
	}
	snapshot := value.(*postalSnapshot)
	return append([]demographics.PopulationRecord(nil), snapshot.records...), copyDrops(snapshot.drops), nil
}

func (s *CSVSource) load() (*postalSnapshot, error) {
	table, err := tabular.ReadCSV(s.path, tabular.CSVOptions{Detector: csvHeaderDetector()})
	if err != nil {
		return nil, err
	}
	postalIdx, err := table.RequireColumn("plz", isPostalColumn)
	if err != nil {
		return nil, err
	}
	totalIdx, err := table.RequireColumn("insgesamt|einwohner", func(name string) bool {
		return strings.Contains(name, "insgesamt") || strings.HasPrefix(name, "einw")
	})
	if err != nil {
		return nil, err
	}
	records, drops := postalRecords(table, postalIdx, totalIdx)
	return &postalSnapshot{records: records, drops: drops}, nil
}
