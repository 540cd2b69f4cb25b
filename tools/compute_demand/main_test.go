package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chargemap/internal/analytics/application"
	"chargemap/internal/analytics/domain/demand"
	"chargemap/internal/config"
	demographics "chargemap/internal/demographics/domain"
)

func TestWriteOutputs(t *testing.T) {
	dir := t.TempDir()
	run := &application.Run{
		ID:          "run-7",
		GeneratedAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Strategy:    demographics.StrategyApportionment,
		Results: []demand.Result{
			{PostalCode: 10115, Stations: 2, Residents: 500, Score: 250},
			{PostalCode: 10117, Stations: 0, Residents: 300, Score: 300},
		},
	}
	cfg := config.Config{Thresholds: demand.DefaultThresholds, ReportLimit: 20}

	written, err := writeOutputs(run, cfg, options{outDir: dir, pdf: true})
	if err != nil {
		t.Fatalf("write outputs: %v", err)
	}
	if len(written) != 3 {
		t.Fatalf("expected csv, summary and pdf, got %v", written)
	}

	data, err := os.ReadFile(filepath.Join(dir, "plz_demand.csv"))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "10117,") {
		t.Fatalf("unexpected csv:\n%s", data)
	}

	data, err = os.ReadFile(filepath.Join(dir, "plz_demand_summary.json"))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var report demand.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if report.RunID != "run-7" || report.Strategy != "apportionment" || report.TotalResidents != 800 {
		t.Fatalf("unexpected summary %+v", report)
	}
}
