package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"chargemap/internal/analytics/domain/demand"
	charging "chargemap/internal/charging/domain"
	demoapp "chargemap/internal/demographics/application"
	demographics "chargemap/internal/demographics/domain"
	geography "chargemap/internal/geography/domain"
	"chargemap/internal/observability/metrics"
	"chargemap/internal/tabular"
)

// Drop sources reported by a run.
const (
	SourceRegistry    = "registry"
	SourcePostalAreas = "postal_areas"
	SourceAggregation = "aggregation"
	SourcePopulation  = "population"
)

// StationSource provides decoded registry rows.
type StationSource interface {
	Stations(ctx context.Context) ([]charging.StationRecord, tabular.Drops, error)
}

// PostalAreaSource provides postal-area polygons.
type PostalAreaSource interface {
	PostalAreas(ctx context.Context) ([]geography.PostalArea, tabular.Drops, error)
}

// PopulationResolver resolves population per postal code.
type PopulationResolver interface {
	Resolve(ctx context.Context, areas *geography.AreaIndex) (*demoapp.Resolution, error)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Run is the outcome of one pipeline invocation.
type Run struct {
	ID          string
	GeneratedAt time.Time
	Strategy    demographics.Strategy
	Results     []demand.Result
	Shares      []demographics.Share
	Drops       map[string]tabular.Drops
}

// Heatmap normalizes one layer of the run.
func (r *Run) Heatmap(layer demand.Layer) demand.Heatmap {
	return demand.BuildHeatmap(r.Results, layer)
}

// Report summarizes the run.
func (r *Run) Report(thresholds demand.Thresholds, limit int) demand.Report {
	report := demand.BuildReport(r.Results, thresholds, limit)
	report.RunID = r.ID
	report.GeneratedAt = r.GeneratedAt
	report.Strategy = string(r.Strategy)
	report.DroppedRows = make(map[string]int)
	for source, drops := range r.Drops {
		for reason, count := range drops {
			report.DroppedRows[source+"."+reason] = count
		}
	}
	return report
}

// DemandPipeline computes demand per postal code from the station
// registry, the postal-area polygons and the population sources.
type DemandPipeline struct {
	stations   StationSource
	areas      PostalAreaSource
	population PopulationResolver
	region     geography.Region
	logger     *log.Logger
	clock      Clock
}

// PipelineOption configures the pipeline.
type PipelineOption func(*DemandPipeline)

// WithRegion overrides the analysed region.
func WithRegion(region geography.Region) PipelineOption {
	return func(p *DemandPipeline) {
		p.region = region
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) PipelineOption {
	return func(p *DemandPipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock overrides the clock.
func WithClock(clock Clock) PipelineOption {
	return func(p *DemandPipeline) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// NewDemandPipeline constructs a pipeline.
func NewDemandPipeline(stations StationSource, areas PostalAreaSource, population PopulationResolver, opts ...PipelineOption) (*DemandPipeline, error) {
	if stations == nil {
		return nil, errors.New("demand pipeline: nil station source")
	}
	if areas == nil {
		return nil, errors.New("demand pipeline: nil postal area source")
	}
	if population == nil {
		return nil, errors.New("demand pipeline: nil population resolver")
	}
	p := &DemandPipeline{
		stations:   stations,
		areas:      areas,
		population: population,
		region:     geography.Berlin,
		logger:     log.Default(),
		clock:      systemClock{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run executes the pipeline once. Source format errors and missing
// population data abort the run; row-level problems are counted.
func (p *DemandPipeline) Run(ctx context.Context) (*Run, error) {
	start := time.Now()
	run, err := p.run(ctx)
	result := metrics.ResultSuccess
	switch {
	case errors.Is(err, demographics.ErrDataUnavailable):
		result = metrics.ResultUnavailable
	case err != nil:
		result = metrics.ResultError
	}
	metrics.ObservePipeline(result, time.Since(start))
	return run, err
}

func (p *DemandPipeline) run(ctx context.Context) (*Run, error) {
	run := &Run{
		ID:          uuid.NewString(),
		GeneratedAt: p.clock.Now(),
		Drops:       make(map[string]tabular.Drops),
	}

	areaList, areaDrops, err := p.areas.PostalAreas(ctx)
	if err != nil {
		return nil, fmt.Errorf("postal areas: %w", err)
	}
	if areaDrops == nil {
		areaDrops = tabular.Drops{}
	}
	areas, duplicates := geography.NewAreaIndex(areaList)
	if duplicates > 0 {
		areaDrops["postal_code_duplicate"] += duplicates
	}
	run.Drops[SourcePostalAreas] = areaDrops

	records, registryDrops, err := p.stations.Stations(ctx)
	if err != nil {
		return nil, fmt.Errorf("station registry: %w", err)
	}
	run.Drops[SourceRegistry] = registryDrops
	counts, aggregationDrops := charging.Aggregate(records, areas, p.region)
	run.Drops[SourceAggregation] = aggregationDrops

	resolution, err := p.population.Resolve(ctx, areas)
	if err != nil {
		return nil, err
	}
	run.Strategy = resolution.Strategy
	run.Shares = resolution.Shares
	run.Drops[SourcePopulation] = resolution.Drops
	metrics.IncPopulationStrategy(string(resolution.Strategy))

	run.Results = demand.Calculate(counts, resolution.Records, areas)

	covered := 0
	for _, r := range run.Results {
		if r.Stations > 0 {
			covered++
		}
	}
	metrics.SetPostalCodes(covered, len(run.Results)-covered)
	p.logDrops(run)
	residents, stations := demand.Totals(run.Results)
	p.logger.Printf("demand pipeline done: run=%s strategy=%s postal_codes=%d residents=%d stations=%d",
		run.ID, run.Strategy, len(run.Results), residents, stations)
	return run, nil
}

func (p *DemandPipeline) logDrops(run *Run) {
	for _, source := range []string{SourcePostalAreas, SourceRegistry, SourceAggregation, SourcePopulation} {
		drops := run.Drops[source]
		if drops.Total() == 0 {
			continue
		}
		parts := make([]string, 0, len(drops))
		for _, reason := range drops.Reasons() {
			metrics.AddDroppedRows(source, reason, drops[reason])
			parts = append(parts, fmt.Sprintf("%s=%d", reason, drops[reason]))
		}
		p.logger.Printf("demand pipeline drops: run=%s source=%s %s", run.ID, source, strings.Join(parts, " "))
	}
}
