package demand

import (
	"testing"

	geography "chargemap/internal/geography/domain"
)

func TestThresholdsClassify(t *testing.T) {
	cases := map[float64]Level{
		0:     LevelLow,
		49.9:  LevelLow,
		50:    LevelMedium,
		99.9:  LevelMedium,
		100:   LevelHigh,
		200:   LevelCritical,
		10000: LevelCritical,
	}
	for score, want := range cases {
		if got := DefaultThresholds.Classify(score); got != want {
			t.Fatalf("Classify(%v)=%s, want %s", score, got, want)
		}
	}
	if DefaultThresholds.NeedsStations(50) || !DefaultThresholds.NeedsStations(50.1) {
		t.Fatalf("needs-stations threshold must be exclusive")
	}
}

func TestBuildReport(t *testing.T) {
	results := []Result{
		{PostalCode: 10115, Stations: 0, Residents: 900, Score: 900},
		{PostalCode: 10117, Stations: 0, Residents: 1200, Score: 1200},
		{PostalCode: 10119, Stations: 4, Residents: 400, Score: 100},
		{PostalCode: 12043, Stations: 10, Residents: 300, Score: 30},
		{PostalCode: 12045, Stations: 1, Residents: 250, Score: 250},
	}
	report := BuildReport(results, DefaultThresholds, 2)
	if report.TotalResidents != 3050 || report.TotalStations != 15 || report.PostalCodes != 5 {
		t.Fatalf("unexpected totals %+v", report)
	}
	if report.LevelCounts[LevelCritical] != 3 || report.LevelCounts[LevelHigh] != 1 || report.LevelCounts[LevelLow] != 1 {
		t.Fatalf("unexpected level counts %v", report.LevelCounts)
	}
	if report.HighDemandAreas != 4 || report.NeedingStations != 4 {
		t.Fatalf("unexpected high=%d needing=%d", report.HighDemandAreas, report.NeedingStations)
	}
	if report.AverageScore != 496 {
		t.Fatalf("unexpected average %v", report.AverageScore)
	}
	if len(report.TopZeroStation) != 2 || report.TopZeroStation[0].PostalCode != 10117 {
		t.Fatalf("unexpected zero-station ranking %+v", report.TopZeroStation)
	}
	if len(report.TopHighDemand) != 2 || report.TopHighDemand[0].PostalCode != 12045 || report.TopHighDemand[1].PostalCode != 10119 {
		t.Fatalf("unexpected high-demand ranking %+v", report.TopHighDemand)
	}
}

func TestBuildReport_Empty(t *testing.T) {
	report := BuildReport(nil, DefaultThresholds, 0)
	if report.TopZeroStation == nil || report.TopHighDemand == nil || report.AverageScore != 0 {
		t.Fatalf("unexpected empty report %+v", report)
	}
}

func TestRanked(t *testing.T) {
	ranked := Ranked([]Result{
		{PostalCode: 10119, Stations: 4, Residents: 400, Score: 100},
		{PostalCode: 10115, Stations: 0, Residents: 900, Score: 900},
		{PostalCode: 12045, Stations: 1, Residents: 250, Score: 250},
		{PostalCode: 10117, Stations: 0, Residents: 1200, Score: 1200},
	})
	want := []geography.PostalCode{10117, 10115, 12045, 10119}
	for i, code := range want {
		if ranked[i].PostalCode != code {
			t.Fatalf("position %d: expected %v, got %v", i, code, ranked[i].PostalCode)
		}
	}
}
