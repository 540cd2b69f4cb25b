package charging

import (
	"sort"
	"strings"

	geography "chargemap/internal/geography/domain"
	"chargemap/internal/tabular"
)

// Drop reasons reported by Aggregate.
const (
	DropOutsideRegion  = "outside_region"
	DropOutsideBounds  = "postal_code_out_of_bounds"
	DropMissingPolygon = "postal_area_missing"
)

// Aggregate counts stations per postal code. Records must carry the region
// label and a postal code strictly inside the region bounds; records whose
// postal code has no area polygon are dropped. The result is ordered by
// postal code and independent of record order.
func Aggregate(records []StationRecord, areas *geography.AreaIndex, region geography.Region) ([]StationCount, tabular.Drops) {
	drops := tabular.Drops{}
	counts := make(map[geography.PostalCode]*StationCount)
	for _, record := range records {
		if !strings.EqualFold(strings.TrimSpace(record.State), region.Name) {
			drops.Add(DropOutsideRegion)
			continue
		}
		if !region.Contains(record.PostalCode) {
			drops.Add(DropOutsideBounds)
			continue
		}
		area, ok := areas.Lookup(record.PostalCode)
		if !ok {
			drops.Add(DropMissingPolygon)
			continue
		}
		entry, ok := counts[record.PostalCode]
		if !ok {
			entry = &StationCount{PostalCode: record.PostalCode, Polygon: area.Polygon}
			counts[record.PostalCode] = entry
		}
		entry.Count++
	}

	out := make([]StationCount, 0, len(counts))
	for _, entry := range counts {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PostalCode < out[j].PostalCode })
	return out, drops
}

// Total sums station counts.
func Total(counts []StationCount) int {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return total
}
