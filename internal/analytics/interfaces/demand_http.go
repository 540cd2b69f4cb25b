package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"chargemap/internal/analytics/application"
	"chargemap/internal/analytics/domain/demand"
	demographics "chargemap/internal/demographics/domain"
	geography "chargemap/internal/geography/domain"
	"chargemap/internal/tabular"
)

// DemandRunner runs the demand pipeline.
type DemandRunner interface {
	Run(ctx context.Context) (*application.Run, error)
}

// MapView is the initial map position sent to the renderer.
type MapView struct {
	Center geography.Coordinate `json:"center"`
	Zoom   int                  `json:"zoom"`
}

// DefaultMapView centres on Berlin.
var DefaultMapView = MapView{Center: geography.Coordinate{Latitude: 52.52, Longitude: 13.405}, Zoom: 10}

// Options carries presentation settings shared by the handlers.
type Options struct {
	Thresholds  demand.Thresholds
	ReportLimit int
	MapView     MapView
	Logger      *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Thresholds == (demand.Thresholds{}) {
		o.Thresholds = demand.DefaultThresholds
	}
	if o.ReportLimit <= 0 {
		o.ReportLimit = demand.DefaultReportLimit
	}
	if o.MapView.Zoom == 0 {
		o.MapView = DefaultMapView
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

type runHandler struct {
	runner DemandRunner
	opts   Options
}

func newRunHandler(runner DemandRunner, opts Options) runHandler {
	return runHandler{runner: runner, opts: opts.withDefaults()}
}

// run executes the pipeline and writes the error response on failure.
func (h runHandler) run(w http.ResponseWriter, r *http.Request) (*application.Run, bool) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return nil, false
	}
	if h.runner == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return nil, false
	}
	run, err := h.runner.Run(r.Context())
	if err != nil {
		h.opts.Logger.Printf("demand run failed: %v", err)
		status, message := runErrorResponse(err)
		http.Error(w, message, status)
		return nil, false
	}
	return run, true
}

// runErrorResponse maps pipeline failures to a status and a single
// readable message naming what is missing.
func runErrorResponse(err error) (int, string) {
	var formatErr *tabular.FormatError
	switch {
	case errors.Is(err, demographics.ErrDataUnavailable):
		return http.StatusServiceUnavailable, "population data unavailable: provide a postal-code population table or district totals with district boundaries"
	case errors.As(err, &formatErr):
		message := "source format not recognized: " + formatErr.Path
		if formatErr.Sheet != "" {
			message += " sheet " + formatErr.Sheet
		}
		if len(formatErr.Markers) > 0 {
			message += " (expected " + strings.Join(formatErr.Markers, ", ") + ")"
		}
		return http.StatusServiceUnavailable, message
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request cancelled"
	default:
		return http.StatusInternalServerError, "demand pipeline error"
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// DemandRow is one postal code of the demand table. Geometry is the postal
// area polygon as WKT; the same polygon is served as GeoJSON by the layer
// endpoint.
type DemandRow struct {
	PostalCode    geography.PostalCode  `json:"postal_code"`
	StationCount  int                   `json:"station_count"`
	ResidentCount int                   `json:"resident_count"`
	DemandScore   float64               `json:"demand_score"`
	Level         demand.Level          `json:"level"`
	NeedsStations bool                  `json:"needs_stations"`
	Centroid      *geography.Coordinate `json:"centroid,omitempty"`
	Geometry      string                `json:"geometry,omitempty"`
}

func demandRows(results []demand.Result, thresholds demand.Thresholds) []DemandRow {
	rows := make([]DemandRow, 0, len(results))
	for _, r := range results {
		row := DemandRow{
			PostalCode:    r.PostalCode,
			StationCount:  r.Stations,
			ResidentCount: r.Residents,
			DemandScore:   r.Score,
			Level:         thresholds.Classify(r.Score),
			NeedsStations: thresholds.NeedsStations(r.Score),
		}
		if r.HasCentroid {
			centroid := r.Centroid
			row.Centroid = &centroid
		}
		if text, err := r.Polygon.WKT(); err == nil {
			row.Geometry = text
		}
		rows = append(rows, row)
	}
	return rows
}

// DemandHandler serves the demand table.
type DemandHandler struct {
	runHandler
}

// NewDemandHandler constructs a DemandHandler.
func NewDemandHandler(runner DemandRunner, opts Options) *DemandHandler {
	return &DemandHandler{runHandler: newRunHandler(runner, opts)}
}

// ServeHTTP handles GET /api/v1/demand.
func (h *DemandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	run, ok := h.run(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{
		"run_id":              run.ID,
		"generated_at":        run.GeneratedAt,
		"population_strategy": run.Strategy,
		"rows":                demandRows(run.Results, h.opts.Thresholds),
	})
}

// HeatmapHandler serves normalized heatmap points.
type HeatmapHandler struct {
	runHandler
}

// NewHeatmapHandler constructs a HeatmapHandler.
func NewHeatmapHandler(runner DemandRunner, opts Options) *HeatmapHandler {
	return &HeatmapHandler{runHandler: newRunHandler(runner, opts)}
}

// ServeHTTP handles GET /api/v1/heatmap?layer=.
func (h *HeatmapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	layer, err := demand.ParseLayer(r.URL.Query().Get("layer"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	run, ok := h.run(w, r)
	if !ok {
		return
	}
	heatmap := run.Heatmap(layer)
	writeJSON(w, map[string]any{
		"run_id": run.ID,
		"layer":  heatmap.Layer,
		"vmax":   heatmap.Ceiling,
		"map":    h.opts.MapView,
		"points": heatmap.Points,
	})
}

// ReportHandler serves the demand report.
type ReportHandler struct {
	runHandler
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(runner DemandRunner, opts Options) *ReportHandler {
	return &ReportHandler{runHandler: newRunHandler(runner, opts)}
}

// ServeHTTP handles GET /api/v1/report.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	run, ok := h.run(w, r)
	if !ok {
		return
	}
	writeJSON(w, run.Report(h.opts.Thresholds, h.opts.ReportLimit))
}
