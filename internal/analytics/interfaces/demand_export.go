package interfaces

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"chargemap/internal/analytics/application"
	"chargemap/internal/analytics/domain/demand"
	"chargemap/internal/observability/metrics"
)

var exportHeader = []string{
	"postal_code",
	"station_count",
	"resident_count",
	"demand_score",
	"level",
	"needs_stations",
	"lat",
	"lon",
}

func exportRecord(r demand.Result, thresholds demand.Thresholds) []string {
	lat, lon := "", ""
	if r.HasCentroid {
		lat = strconv.FormatFloat(r.Centroid.Latitude, 'f', 6, 64)
		lon = strconv.FormatFloat(r.Centroid.Longitude, 'f', 6, 64)
	}
	return []string{
		r.PostalCode.String(),
		strconv.Itoa(r.Stations),
		strconv.Itoa(r.Residents),
		strconv.FormatFloat(r.Score, 'f', 2, 64),
		string(thresholds.Classify(r.Score)),
		strconv.FormatBool(thresholds.NeedsStations(r.Score)),
		lat,
		lon,
	}
}

// WriteDemandCSV writes the ranked demand table.
func WriteDemandCSV(w io.Writer, results []demand.Result, thresholds demand.Thresholds) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range demand.Ranked(results) {
		if err := writer.Write(exportRecord(r, thresholds)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// BuildDemandXLSX renders the report summary and the ranked table.
func BuildDemandXLSX(report demand.Report, results []demand.Result, thresholds demand.Thresholds) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	summarySheet := "summary"
	demandSheet := "demand"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(demandSheet); err != nil {
		return nil, err
	}

	summary := [][2]any{
		{"Charging Demand Report", ""},
		{"Run", report.RunID},
		{"Generated", report.GeneratedAt.Format(time.RFC3339)},
		{"Population Strategy", report.Strategy},
		{"Postal Codes", report.PostalCodes},
		{"Total Residents", report.TotalResidents},
		{"Total Stations", report.TotalStations},
		{"Average Demand Score", report.AverageScore},
		{"High Demand Areas", report.HighDemandAreas},
		{"Areas Needing Stations", report.NeedingStations},
	}
	for i, entry := range summary {
		row := i + 1
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), entry[0])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), entry[1])
	}
	row := len(summary) + 2
	for _, level := range demand.Levels {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Level "+string(level))
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), report.LevelCounts[level])
		row++
	}

	for i, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(demandSheet, cell, title)
	}
	for i, r := range demand.Ranked(results) {
		row := i + 2
		_ = f.SetCellValue(demandSheet, fmt.Sprintf("A%d", row), r.PostalCode.String())
		_ = f.SetCellValue(demandSheet, fmt.Sprintf("B%d", row), r.Stations)
		_ = f.SetCellValue(demandSheet, fmt.Sprintf("C%d", row), r.Residents)
		_ = f.SetCellValue(demandSheet, fmt.Sprintf("D%d", row), r.Score)
		_ = f.SetCellValue(demandSheet, fmt.Sprintf("E%d", row), string(thresholds.Classify(r.Score)))
		_ = f.SetCellValue(demandSheet, fmt.Sprintf("F%d", row), thresholds.NeedsStations(r.Score))
		if r.HasCentroid {
			_ = f.SetCellValue(demandSheet, fmt.Sprintf("G%d", row), r.Centroid.Latitude)
			_ = f.SetCellValue(demandSheet, fmt.Sprintf("H%d", row), r.Centroid.Longitude)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildDemandPDF renders the report with both ranked lists.
func BuildDemandPDF(report demand.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Charging Demand Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Run: %s", report.RunID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", report.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Population strategy: %s", report.Strategy))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Postal codes: %d", report.PostalCodes))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total residents: %d", report.TotalResidents))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total stations: %d", report.TotalStations))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Average demand score: %.1f", report.AverageScore))
	pdf.Ln(5)
	levels := make([]string, 0, len(demand.Levels))
	for _, level := range demand.Levels {
		levels = append(levels, fmt.Sprintf("%s %d", level, report.LevelCounts[level]))
	}
	pdf.Cell(0, 6, "Levels: "+strings.Join(levels, ", "))
	pdf.Ln(8)

	summaryTable(pdf, "Postal codes without stations", report.TopZeroStation)
	pdf.Ln(6)
	summaryTable(pdf, "Highest residents per station", report.TopHighDemand)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func summaryTable(pdf *gofpdf.Fpdf, title string, rows []demand.AreaSummary) {
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, title)
	pdf.Ln(7)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "PLZ", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Residents", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Stations", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Demand", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Level", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, row := range rows {
		pdf.CellFormat(30, 6, row.PostalCode.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, strconv.Itoa(row.Residents), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, strconv.Itoa(row.Stations), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.1f", row.Score), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, string(row.Level), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
}

// ExportHandler serves demand exports.
type ExportHandler struct {
	runHandler
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(runner DemandRunner, opts Options) *ExportHandler {
	return &ExportHandler{runHandler: newRunHandler(runner, opts)}
}

// ServeHTTP handles GET /api/v1/exports/demand.{csv,xlsx,pdf}.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	format := strings.TrimPrefix(r.URL.Path, "/api/v1/exports/demand.")
	switch format {
	case "csv", "xlsx", "pdf":
	default:
		http.NotFound(w, r)
		return
	}
	run, ok := h.run(w, r)
	if !ok {
		return
	}

	start := time.Now()
	body, contentType, err := h.render(run, format)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ObserveExport(format, result, time.Since(start))
	if err != nil {
		h.opts.Logger.Printf("demand export failed: run=%s format=%s err=%v", run.ID, format, err)
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"plz_demand.%s\"", format))
	_, _ = w.Write(body)
}

func (h *ExportHandler) render(run *application.Run, format string) ([]byte, string, error) {
	switch format {
	case "csv":
		var buf bytes.Buffer
		if err := WriteDemandCSV(&buf, run.Results, h.opts.Thresholds); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "text/csv; charset=utf-8", nil
	case "xlsx":
		body, err := BuildDemandXLSX(run.Report(h.opts.Thresholds, h.opts.ReportLimit), run.Results, h.opts.Thresholds)
		return body, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	default:
		body, err := BuildDemandPDF(run.Report(h.opts.Thresholds, h.opts.ReportLimit))
		return body, "application/pdf", err
	}
}
