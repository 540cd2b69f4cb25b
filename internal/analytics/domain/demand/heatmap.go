package demand

import (
	"fmt"
	"math"
	"sort"

	geography "chargemap/internal/geography/domain"
)

// DisplayPercentile caps the colour scale.
const DisplayPercentile = 95

// Layer selects the metric rendered on the map.
type Layer string

const (
	LayerResidents Layer = "residents"
	LayerStations  Layer = "stations"
	LayerDemand    Layer = "demand"
)

// ParseLayer validates a layer name; empty selects demand.
func ParseLayer(value string) (Layer, error) {
	switch Layer(value) {
	case "", LayerDemand:
		return LayerDemand, nil
	case LayerResidents, LayerStations:
		return Layer(value), nil
	}
	return "", fmt.Errorf("demand: unknown layer %q", value)
}

// Value extracts the layer metric from r.
func (l Layer) Value(r Result) float64 {
	switch l {
	case LayerResidents:
		return float64(r.Residents)
	case LayerStations:
		return float64(r.Stations)
	default:
		return r.Score
	}
}

// HeatmapPoint is a value with its colour intensity in [0,1].
type HeatmapPoint struct {
	PostalCode geography.PostalCode  `json:"postal_code"`
	Value      float64               `json:"value"`
	Intensity  float64               `json:"intensity"`
	Location   *geography.Coordinate `json:"location,omitempty"`
}

// Heatmap is a normalized layer.
type Heatmap struct {
	Layer   Layer          `json:"layer"`
	Ceiling float64        `json:"vmax"`
	Points  []HeatmapPoint `json:"points"`
}

// Percentile returns the q-th percentile of values using linear
// interpolation between closest ranks. It returns NaN for an empty input.
func Percentile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if q <= 0 {
		return sorted[0]
	}
	if q >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := q / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}

// DisplayCeiling is the 95th percentile of the strictly positive values.
// Without positive values it falls back to the maximum, or 1 when that is
// not positive.
func DisplayCeiling(values []float64) float64 {
	positive := make([]float64, 0, len(values))
	maximum := math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v > 0 && !math.IsInf(v, 0) {
			positive = append(positive, v)
		}
		if v > maximum {
			maximum = v
		}
	}
	if len(positive) > 0 {
		return Percentile(positive, DisplayPercentile)
	}
	if maximum > 0 && !math.IsInf(maximum, 0) {
		return maximum
	}
	return 1
}

// Intensity is value/ceiling clamped to [0,1].
func Intensity(value, ceiling float64) float64 {
	if ceiling <= 0 || math.IsNaN(value) || math.IsNaN(ceiling) {
		return 0
	}
	i := value / ceiling
	if i < 0 {
		return 0
	}
	if i > 1 {
		return 1
	}
	return i
}

// Normalize maps every value to its intensity against DisplayCeiling.
func Normalize(values []float64) ([]float64, float64) {
	ceiling := DisplayCeiling(values)
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = Intensity(v, ceiling)
	}
	return out, ceiling
}

// BuildHeatmap normalizes the layer metric over results.
func BuildHeatmap(results []Result, layer Layer) Heatmap {
	values := make([]float64, len(results))
	for i, r := range results {
		values[i] = layer.Value(r)
	}
	intensities, ceiling := Normalize(values)
	heatmap := Heatmap{Layer: layer, Ceiling: ceiling, Points: make([]HeatmapPoint, len(results))}
	for i, r := range results {
		point := HeatmapPoint{PostalCode: r.PostalCode, Value: values[i], Intensity: intensities[i]}
		if r.HasCentroid {
			location := r.Centroid
			point.Location = &location
		}
		heatmap.Points[i] = point
	}
	return heatmap
}
