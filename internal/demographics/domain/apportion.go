package demographics

import (
	"math"
	"sort"

	geography "chargemap/internal/geography/domain"
	"chargemap/internal/tabular"
)

// Share records how one district total was split.
type Share struct {
	District      string                 `json:"district"`
	Residents     int                    `json:"residents"`
	PostalCodes   []geography.PostalCode `json:"postal_codes"`
	PerPostalCode int                    `json:"per_postal_code"`
}

// Apportioned is the sum actually distributed, round(P/k)*k.
func (s Share) Apportioned() int {
	return s.PerPostalCode * len(s.PostalCodes)
}

// Apportion splits district totals evenly across the postal areas whose
// centroid lies in the district polygon, rounding each share to the
// nearest integer. Duplicate district rows are summed; names are matched
// after trimming and lower-casing. Postal areas outside every district,
// districts without postal areas and boundaries without a population row
// are dropped and counted.
//
// The even split ignores area and settlement density.
func Apportion(populations []DistrictPopulation, districts geography.Districts, areas []geography.PostalArea) ([]PopulationRecord, []Share, tabular.Drops) {
	drops := tabular.Drops{}

	names := make(map[string]string, len(districts))
	for _, d := range districts {
		if _, ok := names[d.Key()]; !ok {
			names[d.Key()] = d.Name
		}
	}
	totals := make(map[string]int, len(populations))
	for _, p := range populations {
		key := geography.NormalizeDistrictName(p.District)
		if _, ok := names[key]; !ok {
			drops.Add(DropUnknownDistrict)
			continue
		}
		totals[key] += p.Residents
	}

	members := make(map[string][]geography.PostalArea)
	sorted := append([]geography.PostalArea(nil), areas...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PostalCode < sorted[j].PostalCode })
	for _, area := range sorted {
		district, ok := districts.Locate(area.Centroid)
		if !ok {
			drops.Add(DropOutsideDistricts)
			continue
		}
		members[district.Key()] = append(members[district.Key()], area)
	}

	keys := make([]string, 0, len(totals))
	for key := range totals {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var records []PopulationRecord
	var shares []Share
	for _, key := range keys {
		contained := members[key]
		if len(contained) == 0 {
			drops.Add(DropEmptyDistrict)
			continue
		}
		per := int(math.Round(float64(totals[key]) / float64(len(contained))))
		share := Share{District: names[key], Residents: totals[key], PerPostalCode: per}
		for _, area := range contained {
			share.PostalCodes = append(share.PostalCodes, area.PostalCode)
			records = append(records, PopulationRecord{
				PostalCode:  area.PostalCode,
				Residents:   per,
				Centroid:    area.Centroid,
				HasCentroid: true,
			})
		}
		shares = append(shares, share)
	}
	for key, contained := range members {
		if _, ok := totals[key]; !ok {
			drops[DropMissingDistrictCount] += len(contained)
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].PostalCode < records[j].PostalCode })
	return records, shares, drops
}
