package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"chargemap/internal/analytics/application"
	analyticsinterfaces "chargemap/internal/analytics/interfaces"
	"chargemap/internal/config"
	"chargemap/internal/wiring"
)

type options struct {
	outDir string
	xlsx   bool
	pdf    bool
}

func main() {
	cfg, opts, err := parseFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	logger := log.New(os.Stderr, "", log.LstdFlags)

	pipeline, err := wiring.NewDemandPipeline(cfg, nil, logger)
	if err != nil {
		logger.Fatalf("demand pipeline error: %v", err)
	}
	run, err := pipeline.Run(context.Background())
	if err != nil {
		logger.Fatalf("demand run failed: %v", err)
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		logger.Fatalf("create out dir: %v", err)
	}
	written, err := writeOutputs(run, cfg, opts)
	if err != nil {
		logger.Fatalf("write outputs: %v", err)
	}
	for _, path := range written {
		fmt.Println(path)
	}
}

func writeOutputs(run *application.Run, cfg config.Config, opts options) ([]string, error) {
	report := run.Report(cfg.Thresholds, cfg.ReportLimit)
	var written []string

	csvPath := filepath.Join(opts.outDir, "plz_demand.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		return nil, err
	}
	if err := analyticsinterfaces.WriteDemandCSV(f, run.Results, cfg.Thresholds); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	written = append(written, csvPath)

	summary, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, err
	}
	summaryPath := filepath.Join(opts.outDir, "plz_demand_summary.json")
	if err := os.WriteFile(summaryPath, summary, 0o644); err != nil {
		return nil, err
	}
	written = append(written, summaryPath)

	if opts.xlsx {
		body, err := analyticsinterfaces.BuildDemandXLSX(report, run.Results, cfg.Thresholds)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(opts.outDir, "plz_demand.xlsx")
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	if opts.pdf {
		body, err := analyticsinterfaces.BuildDemandPDF(report)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(opts.outDir, "plz_demand_report.pdf")
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}

func parseFlags() (config.Config, options, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, options{}, err
	}
	var opts options
	flag.StringVar(&cfg.Data.Stations, "stations", cfg.Data.Stations, "charging station registry CSV")
	flag.StringVar(&cfg.Data.PostalAreas, "postal-areas", cfg.Data.PostalAreas, "postal-area geometry CSV")
	flag.StringVar(&cfg.Data.Population, "population", cfg.Data.Population, "population table (CSV or XLSX)")
	flag.StringVar(&cfg.Data.DistrictPopulation, "district-population", cfg.Data.DistrictPopulation, "workbook with district totals (optional)")
	flag.StringVar(&cfg.Data.Districts, "districts", cfg.Data.Districts, "district geometry CSV")
	flag.StringVar(&opts.outDir, "out", ".", "output directory")
	flag.BoolVar(&opts.xlsx, "xlsx", false, "also write plz_demand.xlsx")
	flag.BoolVar(&opts.pdf, "pdf", false, "also write plz_demand_report.pdf")
	flag.Parse()

	if cfg.Data.Stations == "" || cfg.Data.PostalAreas == "" {
		return cfg, opts, errors.New("missing --stations or --postal-areas")
	}
	if cfg.Data.Population == "" && cfg.Data.DistrictPopulation == "" {
		return cfg, opts, errors.New("missing --population or --district-population")
	}
	return cfg, opts, nil
}
