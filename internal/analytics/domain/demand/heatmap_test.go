package demand

import (
	"math"
	"testing"
)

func TestPercentile_LinearInterpolation(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := Percentile(values, 95); math.Abs(got-9.55) > 1e-9 {
		t.Fatalf("expected 9.55, got %v", got)
	}
	if got := Percentile(values, 50); math.Abs(got-5.5) > 1e-9 {
		t.Fatalf("expected 5.5, got %v", got)
	}
	if got := Percentile([]float64{42}, 95); got != 42 {
		t.Fatalf("expected 42, got %v", got)
	}
	if !math.IsNaN(Percentile(nil, 95)) {
		t.Fatalf("expected NaN for empty input")
	}
}

func TestDisplayCeiling(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "ignores zeros", values: []float64{0, 0, 0, 10, 20}, want: 19.5},
		{name: "all zero", values: []float64{0, 0}, want: 1},
		{name: "empty", values: nil, want: 1},
		{name: "negative only", values: []float64{-3, -1}, want: 1},
		{name: "single positive", values: []float64{0, 7}, want: 7},
	}
	for _, tc := range cases {
		if got := DisplayCeiling(tc.values); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestNormalize_Bounds(t *testing.T) {
	values := []float64{0, 5, 10, 15, 20, 25, 30, 35, 40, 5000}
	intensities, ceiling := Normalize(values)
	if ceiling >= 5000 {
		t.Fatalf("outlier should be capped, ceiling=%v", ceiling)
	}
	for i, v := range intensities {
		if v < 0 || v > 1 {
			t.Fatalf("intensity %d out of range: %v", i, v)
		}
	}
	if intensities[len(intensities)-1] != 1 {
		t.Fatalf("maximum must saturate, got %v", intensities[len(intensities)-1])
	}
	if intensities[0] != 0 {
		t.Fatalf("zero must map to 0, got %v", intensities[0])
	}
}

func TestNormalize_SingleValueSelfConsistent(t *testing.T) {
	intensities, ceiling := Normalize([]float64{12.5})
	if ceiling != 12.5 || intensities[0] != 1 {
		t.Fatalf("expected self-consistent scale, got ceiling=%v intensity=%v", ceiling, intensities[0])
	}
}

func TestBuildHeatmap_Layers(t *testing.T) {
	results := []Result{
		{PostalCode: 10115, Stations: 2, Residents: 400, Score: 200},
		{PostalCode: 10117, Stations: 0, Residents: 100, Score: 100},
	}
	for _, layer := range []Layer{LayerDemand, LayerResidents, LayerStations} {
		heatmap := BuildHeatmap(results, layer)
		if heatmap.Layer != layer || len(heatmap.Points) != 2 {
			t.Fatalf("unexpected heatmap %+v", heatmap)
		}
	}
	stations := BuildHeatmap(results, LayerStations)
	if stations.Points[1].Value != 0 || stations.Points[1].Intensity != 0 {
		t.Fatalf("unexpected station point %+v", stations.Points[1])
	}
	if _, err := ParseLayer("traffic"); err == nil {
		t.Fatalf("expected unknown layer error")
	}
	if layer, err := ParseLayer(""); err != nil || layer != LayerDemand {
		t.Fatalf("expected default demand layer, got %v %v", layer, err)
	}
}
