package demand

import (
	"math"
	"sort"

	charging "chargemap/internal/charging/domain"
	demographics "chargemap/internal/demographics/domain"
	geography "chargemap/internal/geography/domain"
)

// Result is the demand of one postal code.
type Result struct {
	PostalCode  geography.PostalCode
	Stations    int
	Residents   int
	Score       float64
	Polygon     geography.GeoPolygon
	Centroid    geography.Coordinate
	HasCentroid bool
}

// Score is residents per station, or the resident count when there is no
// station. Non-finite or negative values become 0.
func Score(residents, stations int) float64 {
	var score float64
	if stations > 0 {
		score = float64(residents) / float64(stations)
	} else {
		score = float64(residents)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		return 0
	}
	return score
}

// Calculate joins station counts and population on postal code. Every
// postal code present in either input yields one result; a missing side
// counts as zero. Polygons come from the station counts or, failing that,
// from areas. The result is ordered by postal code.
func Calculate(counts []charging.StationCount, population []demographics.PopulationRecord, areas *geography.AreaIndex) []Result {
	byCode := make(map[geography.PostalCode]*Result, len(counts)+len(population))
	entry := func(code geography.PostalCode) *Result {
		r, ok := byCode[code]
		if !ok {
			r = &Result{PostalCode: code}
			byCode[code] = r
		}
		return r
	}

	for _, c := range counts {
		r := entry(c.PostalCode)
		r.Stations += c.Count
		if r.Polygon.IsZero() {
			r.Polygon = c.Polygon
		}
	}
	for _, p := range population {
		r := entry(p.PostalCode)
		r.Residents += p.Residents
		if p.HasCentroid && !r.HasCentroid {
			r.Centroid = p.Centroid
			r.HasCentroid = true
		}
	}

	out := make([]Result, 0, len(byCode))
	for _, r := range byCode {
		if area, ok := areas.Lookup(r.PostalCode); ok {
			if r.Polygon.IsZero() {
				r.Polygon = area.Polygon
			}
			if !r.HasCentroid {
				r.Centroid = area.Centroid
				r.HasCentroid = true
			}
		}
		r.Score = Score(r.Residents, r.Stations)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PostalCode < out[j].PostalCode })
	return out
}

// Totals sums residents and stations over results.
func Totals(results []Result) (residents, stations int) {
	for _, r := range results {
		residents += r.Residents
		stations += r.Stations
	}
	return residents, stations
}
