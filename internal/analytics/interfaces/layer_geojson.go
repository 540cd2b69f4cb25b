package interfaces

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/twpayne/go-geom/encoding/geojson"

	"chargemap/internal/analytics/application"
	"chargemap/internal/analytics/domain/demand"
)

// BuildLayerGeoJSON renders one map layer as a FeatureCollection. Postal
// codes without a polygon are omitted.
func BuildLayerGeoJSON(run *application.Run, layer demand.Layer, thresholds demand.Thresholds) ([]byte, error) {
	heatmap := run.Heatmap(layer)
	collection := geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(run.Results))}
	for i, r := range run.Results {
		if r.Polygon.IsZero() {
			continue
		}
		point := heatmap.Points[i]
		collection.Features = append(collection.Features, &geojson.Feature{
			ID:       r.PostalCode.String(),
			Geometry: r.Polygon.Geometry(),
			Properties: map[string]interface{}{
				"postal_code":  r.PostalCode.String(),
				"stations":     r.Stations,
				"residents":    r.Residents,
				"demand_score": r.Score,
				"level":        thresholds.Classify(r.Score),
				"value":        point.Value,
				"intensity":    point.Intensity,
				"area_km2":     r.Polygon.AreaKm2(),
				"tooltip":      tooltip(layer, r),
			},
		})
	}
	return json.Marshal(&collection)
}

func tooltip(layer demand.Layer, r demand.Result) string {
	switch layer {
	case demand.LayerResidents:
		return fmt.Sprintf("PLZ %s: %d residents", r.PostalCode, r.Residents)
	case demand.LayerStations:
		return fmt.Sprintf("PLZ %s: %d stations", r.PostalCode, r.Stations)
	default:
		return fmt.Sprintf("PLZ %s: %.1f residents per station (%d residents, %d stations)", r.PostalCode, r.Score, r.Residents, r.Stations)
	}
}

// LayerHandler serves choropleth layers.
type LayerHandler struct {
	runHandler
}

// NewLayerHandler constructs a LayerHandler.
func NewLayerHandler(runner DemandRunner, opts Options) *LayerHandler {
	return &LayerHandler{runHandler: newRunHandler(runner, opts)}
}

// ServeHTTP handles GET /api/v1/layers/{layer}.geojson.
func (h *LayerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/v1/layers/")
	if !strings.HasSuffix(name, ".geojson") {
		http.NotFound(w, r)
		return
	}
	layer, err := demand.ParseLayer(strings.TrimSuffix(name, ".geojson"))
	if err != nil || strings.TrimSuffix(name, ".geojson") == "" {
		http.NotFound(w, r)
		return
	}
	run, ok := h.run(w, r)
	if !ok {
		return
	}
	body, err := BuildLayerGeoJSON(run, layer, h.opts.Thresholds)
	if err != nil {
		h.opts.Logger.Printf("layer geojson failed: run=%s layer=%s err=%v", run.ID, layer, err)
		http.Error(w, "layer render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(body)
}
