package application

import (
	"context"
	"errors"
	"fmt"
	"log"

	demographics "chargemap/internal/demographics/domain"
	geography "chargemap/internal/geography/domain"
	"chargemap/internal/tabular"
)

// PostalPopulationSource provides postal-code level population rows.
type PostalPopulationSource interface {
	PostalPopulation(ctx context.Context) ([]demographics.PopulationRecord, tabular.Drops, error)
}

// DistrictPopulationSource provides district level population rows.
type DistrictPopulationSource interface {
	DistrictPopulation(ctx context.Context) ([]demographics.DistrictPopulation, tabular.Drops, error)
}

// DistrictBoundarySource provides district polygons.
type DistrictBoundarySource interface {
	Districts(ctx context.Context) (geography.Districts, tabular.Drops, error)
}

// Resolution is the resolved population table.
type Resolution struct {
	Strategy demographics.Strategy
	Records  []demographics.PopulationRecord
	Shares   []demographics.Share
	Drops    tabular.Drops
}

// Resolver resolves population per postal code, preferring the direct
// table and apportioning district totals when it is unavailable.
type Resolver struct {
	direct     PostalPopulationSource
	districts  DistrictPopulationSource
	boundaries DistrictBoundarySource
	region     geography.Region
	logger     *log.Logger
}

// ResolverOption configures the resolver.
type ResolverOption func(*Resolver)

// WithDirectSource sets the postal-code level source.
func WithDirectSource(source PostalPopulationSource) ResolverOption {
	return func(r *Resolver) {
		r.direct = source
	}
}

// WithApportionment sets the district sources used as fallback.
func WithApportionment(populations DistrictPopulationSource, boundaries DistrictBoundarySource) ResolverOption {
	return func(r *Resolver) {
		r.districts = populations
		r.boundaries = boundaries
	}
}

// WithRegion overrides the analysed region.
func WithRegion(region geography.Region) ResolverOption {
	return func(r *Resolver) {
		r.region = region
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver constructs a resolver. At least one strategy is required.
func NewResolver(opts ...ResolverOption) (*Resolver, error) {
	r := &Resolver{region: geography.Berlin, logger: log.Default()}
	for _, opt := range opts {
		opt(r)
	}
	if r.direct == nil && (r.districts == nil || r.boundaries == nil) {
		return nil, errors.New("population resolver: no population source")
	}
	return r, nil
}

// Resolve returns population per postal code for the postal areas in
// areas. It fails with ErrDataUnavailable, joined with the cause of every
// attempted strategy, when neither strategy yields a row.
func (r *Resolver) Resolve(ctx context.Context, areas *geography.AreaIndex) (*Resolution, error) {
	if r == nil {
		return nil, errors.New("population resolver: nil resolver")
	}
	var causes []error

	if r.direct != nil {
		resolution, err := r.resolveDirect(ctx, areas)
		if err == nil {
			return resolution, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Printf("population direct unavailable: %v", err)
		causes = append(causes, fmt.Errorf("direct: %w", err))
	}

	if r.districts != nil && r.boundaries != nil {
		resolution, err := r.resolveApportioned(ctx, areas)
		if err == nil {
			return resolution, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Printf("population apportionment unavailable: %v", err)
		causes = append(causes, fmt.Errorf("apportionment: %w", err))
	}

	return nil, fmt.Errorf("%w: %w", demographics.ErrDataUnavailable, errors.Join(causes...))
}

func (r *Resolver) resolveDirect(ctx context.Context, areas *geography.AreaIndex) (*Resolution, error) {
	rows, sourceDrops, err := r.direct.PostalPopulation(ctx)
	if err != nil {
		return nil, err
	}
	records, drops := demographics.SumByPostalCode(rows, areas, r.region)
	if len(records) == 0 {
		return nil, errors.New("no postal code rows inside region")
	}
	drops.Merge("source_", sourceDrops)
	return &Resolution{Strategy: demographics.StrategyDirect, Records: records, Drops: drops}, nil
}

func (r *Resolver) resolveApportioned(ctx context.Context, areas *geography.AreaIndex) (*Resolution, error) {
	populations, populationDrops, err := r.districts.DistrictPopulation(ctx)
	if err != nil {
		return nil, err
	}
	boundaries, boundaryDrops, err := r.boundaries.Districts(ctx)
	if err != nil {
		return nil, err
	}
	if len(boundaries) == 0 {
		return nil, errors.New("no district boundaries")
	}

	drops := tabular.Drops{}
	var inRegion []geography.PostalArea
	for _, area := range areas.Areas() {
		if !r.region.Contains(area.PostalCode) {
			drops.Add(demographics.DropOutsideBounds)
			continue
		}
		inRegion = append(inRegion, area)
	}

	records, shares, apportionDrops := demographics.Apportion(populations, boundaries, inRegion)
	if len(records) == 0 {
		return nil, errors.New("no district matched a postal area")
	}
	drops.Merge("", apportionDrops)
	drops.Merge("source_", populationDrops)
	drops.Merge("boundary_", boundaryDrops)
	return &Resolution{
		Strategy: demographics.StrategyApportionment,
		Records:  records,
		Shares:   shares,
		Drops:    drops,
	}, nil
}
