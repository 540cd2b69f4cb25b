package demographics

import (
	"sort"

	geography "chargemap/internal/geography/domain"
	"chargemap/internal/tabular"
)

// Strategy names how a population table was resolved.
type Strategy string

const (
	StrategyDirect        Strategy = "direct"
	StrategyApportionment Strategy = "apportionment"
)

// Drop reasons reported by the resolution steps.
const (
	DropOutsideBounds        = "postal_code_out_of_bounds"
	DropOutsideDistricts     = "postal_area_outside_districts"
	DropUnknownDistrict      = "district_unknown"
	DropEmptyDistrict        = "district_without_postal_areas"
	DropMissingDistrictCount = "district_population_missing"
)

// PopulationRecord is the resident count of one postal code. Centroid is
// set when the postal area polygon is known.
type PopulationRecord struct {
	PostalCode  geography.PostalCode
	Residents   int
	Centroid    geography.Coordinate
	HasCentroid bool
}

// DistrictPopulation is the resident count of one district.
type DistrictPopulation struct {
	District  string
	Residents int
}

// Validate rejects negative counts.
func (r PopulationRecord) Validate() error {
	if r.Residents < 0 {
		return ErrNegativePopulation
	}
	return nil
}

// SumByPostalCode merges rows that share a postal code, keeps codes strictly
// inside the region bounds and attaches area centroids. The result is
// ordered by postal code.
func SumByPostalCode(rows []PopulationRecord, areas *geography.AreaIndex, region geography.Region) ([]PopulationRecord, tabular.Drops) {
	drops := tabular.Drops{}
	totals := make(map[geography.PostalCode]int, len(rows))
	for _, row := range rows {
		if !region.Contains(row.PostalCode) {
			drops.Add(DropOutsideBounds)
			continue
		}
		totals[row.PostalCode] += row.Residents
	}

	out := make([]PopulationRecord, 0, len(totals))
	for code, residents := range totals {
		out = append(out, locate(PopulationRecord{PostalCode: code, Residents: residents}, areas))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PostalCode < out[j].PostalCode })
	return out, drops
}

// TotalResidents sums resident counts.
func TotalResidents(records []PopulationRecord) int {
	total := 0
	for _, r := range records {
		total += r.Residents
	}
	return total
}

func locate(record PopulationRecord, areas *geography.AreaIndex) PopulationRecord {
	if area, ok := areas.Lookup(record.PostalCode); ok {
		record.Centroid = area.Centroid
		record.HasCentroid = true
	}
	return record
}
