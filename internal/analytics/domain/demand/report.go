package demand

import (
	"sort"
	"time"

	geography "chargemap/internal/geography/domain"
)

// DefaultReportLimit bounds the ranked lists of a report.
const DefaultReportLimit = 20

// AreaSummary is one ranked postal code.
type AreaSummary struct {
	PostalCode geography.PostalCode `json:"postal_code"`
	Residents  int                  `json:"residents"`
	Stations   int                  `json:"stations"`
	Score      float64              `json:"demand_score"`
	Level      Level                `json:"level"`
}

// Report summarizes a demand table.
type Report struct {
	RunID           string         `json:"run_id"`
	GeneratedAt     time.Time      `json:"generated_at"`
	Strategy        string         `json:"population_strategy"`
	PostalCodes     int            `json:"total_areas_analyzed"`
	TotalResidents  int            `json:"total_residents"`
	TotalStations   int            `json:"total_stations"`
	AverageScore    float64        `json:"average_demand_score"`
	HighDemandAreas int            `json:"high_demand_areas"`
	NeedingStations int            `json:"areas_needing_stations"`
	LevelCounts     map[Level]int  `json:"level_counts"`
	TopZeroStation  []AreaSummary  `json:"top_zero_stations"`
	TopHighDemand   []AreaSummary  `json:"top_high_demand"`
	DroppedRows     map[string]int `json:"dropped_rows,omitempty"`
}

// Summarize builds an AreaSummary.
func (t Thresholds) Summarize(r Result) AreaSummary {
	return AreaSummary{
		PostalCode: r.PostalCode,
		Residents:  r.Residents,
		Stations:   r.Stations,
		Score:      r.Score,
		Level:      t.Classify(r.Score),
	}
}

// BuildReport aggregates results. Zero-station areas are ranked by
// residents, the others by score; both lists are cut at limit.
func BuildReport(results []Result, thresholds Thresholds, limit int) Report {
	if limit <= 0 {
		limit = DefaultReportLimit
	}
	report := Report{
		PostalCodes: len(results),
		LevelCounts: make(map[Level]int, len(Levels)),
	}
	for _, level := range Levels {
		report.LevelCounts[level] = 0
	}

	var zero, regular []AreaSummary
	sum := 0.0
	for _, r := range results {
		summary := thresholds.Summarize(r)
		report.TotalResidents += r.Residents
		report.TotalStations += r.Stations
		report.LevelCounts[summary.Level]++
		if summary.Level.IsHigh() {
			report.HighDemandAreas++
		}
		if thresholds.NeedsStations(r.Score) {
			report.NeedingStations++
		}
		sum += r.Score
		if r.Stations == 0 {
			zero = append(zero, summary)
		} else {
			regular = append(regular, summary)
		}
	}
	if len(results) > 0 {
		report.AverageScore = sum / float64(len(results))
	}

	sort.SliceStable(zero, func(i, j int) bool {
		if zero[i].Residents != zero[j].Residents {
			return zero[i].Residents > zero[j].Residents
		}
		return zero[i].PostalCode < zero[j].PostalCode
	})
	sort.SliceStable(regular, func(i, j int) bool {
		if regular[i].Score != regular[j].Score {
			return regular[i].Score > regular[j].Score
		}
		return regular[i].PostalCode < regular[j].PostalCode
	})
	report.TopZeroStation = head(zero, limit)
	report.TopHighDemand = head(regular, limit)
	return report
}

// Ranked orders results for export: zero-station areas first by residents,
// then by descending score and residents.
func Ranked(results []Result) []Result {
	out := append([]Result(nil), results...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Stations == 0) != (b.Stations == 0) {
			return a.Stations == 0
		}
		if a.Stations != 0 && a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Residents != b.Residents {
			return a.Residents > b.Residents
		}
		return a.PostalCode < b.PostalCode
	})
	return out
}

func head(items []AreaSummary, limit int) []AreaSummary {
	if len(items) > limit {
		items = items[:limit]
	}
	if items == nil {
		return []AreaSummary{}
	}
	return items
}
