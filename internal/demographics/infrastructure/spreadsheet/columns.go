package spreadsheet

import (
	"strings"

	demographics "chargemap/internal/demographics/domain"
	geography "chargemap/internal/geography/domain"
	"chargemap/internal/tabular"
)

// Drop reasons reported while decoding population rows.
const (
	DropPostalCode = "postal_code_unparseable"
	DropCount      = "count_unparseable"
	DropNegative   = "count_negative"
	DropDistrict   = "district_empty"
)

func isPostalColumn(name string) bool {
	return name == "plz" || strings.Contains(name, "postleitzahl")
}

// totalColumn prefers an exact "insgesamt" header, then any header
// mentioning a total, then the first column with a numeric value.
func totalColumn(table *tabular.Table, skip int) int {
	if idx := table.ColumnNamed("insgesamt"); idx >= 0 {
		return idx
	}
	if idx := table.Column(func(name string) bool {
		return strings.Contains(name, "insgesamt") || strings.Contains(name, "gesamt")
	}); idx >= 0 {
		return idx
	}
	for col := range table.Header {
		if col == skip {
			continue
		}
		for _, row := range table.Rows {
			if _, ok := tabular.ParseCount(table.Value(row, col)); ok {
				return col
			}
		}
	}
	return -1
}

func postalRecords(table *tabular.Table, postalIdx, totalIdx int) ([]demographics.PopulationRecord, tabular.Drops) {
	drops := tabular.Drops{}
	records := make([]demographics.PopulationRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		code, ok := geography.ParsePostalCode(table.Value(row, postalIdx))
		if !ok {
			drops.Add(DropPostalCode)
			continue
		}
		residents, ok := tabular.ParseCount(table.Value(row, totalIdx))
		if !ok {
			drops.Add(DropCount)
			continue
		}
		record := demographics.PopulationRecord{PostalCode: code, Residents: residents}
		if err := record.Validate(); err != nil {
			drops.Add(DropNegative)
			continue
		}
		records = append(records, record)
	}
	return records, drops
}

func copyDrops(src tabular.Drops) tabular.Drops {
	out := tabular.Drops{}
	out.Merge("", src)
	return out
}
