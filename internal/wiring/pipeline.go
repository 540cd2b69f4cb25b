package wiring

import (
	"errors"
	"log"

	"chargemap/internal/analytics/application"
	chargingcsv "chargemap/internal/charging/infrastructure/csvfile"
	"chargemap/internal/config"
	demoapp "chargemap/internal/demographics/application"
	"chargemap/internal/demographics/infrastructure/spreadsheet"
	geocsv "chargemap/internal/geography/infrastructure/csvfile"
	"chargemap/internal/tabular"
)

// NewDemandPipeline assembles the repositories, the population resolver
// and the pipeline described by cfg. Repositories share memo.
func NewDemandPipeline(cfg config.Config, memo *tabular.Memo, logger *log.Logger) (*application.DemandPipeline, error) {
	if logger == nil {
		logger = log.Default()
	}
	region := cfg.Region.Region()

	stations := chargingcsv.NewRegistryRepository(cfg.Data.Stations, chargingcsv.WithRegistryMemo(memo))
	areas := geocsv.NewPostalAreaRepository(cfg.Data.PostalAreas, geocsv.WithPostalAreaMemo(memo))

	resolver, err := NewPopulationResolver(cfg, memo, logger)
	if err != nil {
		return nil, err
	}
	return application.NewDemandPipeline(stations, areas, resolver,
		application.WithRegion(region),
		application.WithLogger(logger),
	)
}

// NewPopulationResolver picks the direct source by file type and enables
// apportionment when district totals and boundaries are configured.
func NewPopulationResolver(cfg config.Config, memo *tabular.Memo, logger *log.Logger) (*demoapp.Resolver, error) {
	opts := []demoapp.ResolverOption{
		demoapp.WithRegion(cfg.Region.Region()),
		demoapp.WithLogger(logger),
	}
	workbookOpts := []spreadsheet.WorkbookOption{
		spreadsheet.WithPostalSheet(cfg.Data.PostalSheet),
		spreadsheet.WithDistrictSheet(cfg.Data.DistrictSheet),
		spreadsheet.WithWorkbookMemo(memo),
	}

	if cfg.Data.Population != "" {
		if cfg.PopulationIsWorkbook() {
			opts = append(opts, demoapp.WithDirectSource(spreadsheet.NewWorkbookSource(cfg.Data.Population, workbookOpts...)))
		} else {
			opts = append(opts, demoapp.WithDirectSource(spreadsheet.NewCSVSource(cfg.Data.Population, memo)))
		}
	}
	if cfg.Data.DistrictPopulation != "" && cfg.Data.Districts != "" {
		totals := spreadsheet.NewWorkbookSource(cfg.Data.DistrictPopulation, workbookOpts...)
		boundaries := geocsv.NewDistrictRepository(cfg.Data.Districts, geocsv.WithDistrictMemo(memo))
		opts = append(opts, demoapp.WithApportionment(totals, boundaries))
	}
	if len(opts) == 2 {
		return nil, errors.New("wiring: no population source configured")
	}
	return demoapp.NewResolver(opts...)
}
