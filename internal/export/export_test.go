package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/pumpcurve/internal/forecast"
)

func newTestExporter() *ReportExporter {
	exporter := NewReportExporter(zap.NewNop())
	exporter.now = func() time.Time {
		return time.Date(2024, 6, 10, 14, 30, 0, 0, time.UTC)
	}
	return exporter
}

func TestReportExportCSV(t *testing.T) {
	exporter := newTestExporter()
	tempDir := t.TempDir()

	reports := generateTestReports()

	outputPath, err := exporter.ExportReports(reports, ExportOptions{
		Format:    FormatCSV,
		OutputDir: tempDir,
	})
	if err != nil {
		t.Fatalf("Failed to export reports: %v", err)
	}

	if filepath.Base(outputPath) != "forecast_all_20240610_143000.csv" {
		t.Errorf("Unexpected filename: %s", filepath.Base(outputPath))
	}

	file, err := os.Open(outputPath)
	if err != nil {
		t.Fatalf("Failed to open export file: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}

	// Header plus one row per step across all reports
	if len(rows) != 1+4 {
		t.Fatalf("Expected 5 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(CSVHeaders(), ",") {
		t.Errorf("Unexpected header: %v", rows[0])
	}
	if rows[1][0] != "launch" || rows[1][2] != "buy" || rows[1][5] != "1000000000" {
		t.Errorf("Unexpected first row: %v", rows[1])
	}
	if rows[1][12] != "30000" {
		t.Errorf("Market cap should be in SOL, got %s", rows[1][12])
	}
}

func TestReportExportJSON(t *testing.T) {
	exporter := newTestExporter()
	tempDir := t.TempDir()

	outputPath, err := exporter.ExportReports(generateTestReports(), ExportOptions{
		Format:    FormatJSON,
		OutputDir: tempDir,
	})
	if err != nil {
		t.Fatalf("Failed to export reports: %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read export file: %v", err)
	}

	var decoded struct {
		ScenarioCount int               `json:"scenario_count"`
		Reports       []forecast.Report `json:"reports"`
		Summary       ExportSummary     `json:"summary"`
	}
	if err := json.Unmarshal(content, &decoded); err != nil {
		t.Fatalf("Failed to decode JSON export: %v", err)
	}

	if decoded.ScenarioCount != 2 {
		t.Errorf("Expected 2 scenarios, got %d", decoded.ScenarioCount)
	}
	if decoded.Reports[1].Err == "" {
		t.Error("Failed scenario should keep its error")
	}
	if decoded.Summary.BuyCount != 3 {
		t.Errorf("Expected 3 buys in summary, got %d", decoded.Summary.BuyCount)
	}
}

func TestReportExportFilters(t *testing.T) {
	exporter := newTestExporter()
	reports := generateTestReports()

	t.Run("scenario filter", func(t *testing.T) {
		filtered := exporter.filterReports(reports, ExportOptions{ScenarioFilter: "launch"})
		if len(filtered) != 1 || filtered[0].Scenario != "launch" {
			t.Errorf("Expected only launch scenario, got %+v", filtered)
		}
	})

	t.Run("side filter", func(t *testing.T) {
		filtered := exporter.filterReports(reports, ExportOptions{SideFilter: "sell"})
		for _, r := range filtered {
			for _, s := range r.Steps {
				if s.Side != forecast.SideSell {
					t.Errorf("Found %s step in sell export", s.Side)
				}
			}
		}
		// Filtering works on copies of the input reports.
		if len(reports[0].Steps) != 3 {
			t.Errorf("Filtering modified the input reports")
		}
	})

	t.Run("skip failed", func(t *testing.T) {
		filtered := exporter.filterReports(reports, ExportOptions{SkipFailed: true})
		if len(filtered) != 1 {
			t.Errorf("Expected 1 report, got %d", len(filtered))
		}
	})

	t.Run("no match", func(t *testing.T) {
		_, err := exporter.ExportReports(reports, ExportOptions{
			Format:         FormatCSV,
			OutputDir:      t.TempDir(),
			ScenarioFilter: "missing",
		})
		if err == nil {
			t.Error("Expected error when nothing matches")
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := exporter.ExportReports(reports, ExportOptions{
			Format:    ExportFormat("xml"),
			OutputDir: t.TempDir(),
		})
		if err == nil {
			t.Error("Expected error for unsupported format")
		}
	})
}

func TestGenerateFilename(t *testing.T) {
	exporter := newTestExporter()

	tests := []struct {
		options  ExportOptions
		expected string
	}{
		{ExportOptions{Format: FormatCSV}, "forecast_all_20240610_143000.csv"},
		{ExportOptions{Format: FormatJSON, ScenarioFilter: "launch"}, "forecast_launch_20240610_143000.json"},
		{ExportOptions{Format: FormatCSV, ScenarioFilter: "launch", SideFilter: "buy"}, "forecast_launch_buy_20240610_143000.csv"},
	}

	for _, tt := range tests {
		if got := exporter.generateFilename(tt.options); got != tt.expected {
			t.Errorf("generateFilename(%+v) = %s, want %s", tt.options, got, tt.expected)
		}
	}
}

func TestCalculateSummary(t *testing.T) {
	summary := CalculateSummary(generateTestReports())

	if summary.Scenarios != 2 || summary.FailedScenarios != 1 {
		t.Errorf("Unexpected scenario counts: %+v", summary)
	}
	if summary.Steps != 4 || summary.BuyCount != 3 || summary.SellCount != 1 {
		t.Errorf("Unexpected step counts: %+v", summary)
	}
	if !summary.TotalBuyVolume.Equal(decimal.RequireFromString("3")) {
		t.Errorf("Expected 3 SOL bought, got %s", summary.TotalBuyVolume)
	}
	if !summary.TotalSellVolume.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("Expected 0.5 SOL sold, got %s", summary.TotalSellVolume)
	}
	if !summary.TotalFees.Equal(decimal.RequireFromString("0.035")) {
		t.Errorf("Expected 0.035 SOL fees, got %s", summary.TotalFees)
	}
	if !summary.TokensSold.Equal(decimal.RequireFromString("10")) {
		t.Errorf("Expected 10 tokens sold, got %s", summary.TokensSold)
	}
}

func generateTestReports() []forecast.Report {
	return []forecast.Report{
		{
			Scenario: "launch",
			Steps: []forecast.StepResult{
				{Index: 0, Side: forecast.SideBuy, Requested: 34_612_903_225_806, TokenAmount: 34_612_903_225_806,
					SolAmount: 1_000_000_000, Fee: 10_000_000, Bound: 1_060_500_000, MarketCapSOL: 30_000_000_000_000},
				{Index: 1, Side: forecast.SideBuy, Requested: 30_000_000_000_000, TokenAmount: 30_000_000_000_000,
					SolAmount: 1_000_000_000, Fee: 10_000_000, Bound: 1_060_500_000},
				{Index: 2, Side: forecast.SideSell, Requested: 10_000_000, TokenAmount: 10_000_000,
					SolAmount: 500_000_000, Fee: 5_000_000, Bound: 470_250_000},
			},
			MarketCapSOL: 31_000_000_000_000,
			SpotPrice:    decimal.RequireFromString("0.0000000289"),
		},
		{
			Scenario: "mid_curve",
			Steps: []forecast.StepResult{
				{Index: 0, Side: forecast.SideBuy, Requested: 1_000_000, TokenAmount: 1_000_000,
					SolAmount: 1_000_000_000, Fee: 10_000_000, Bound: 1_060_500_000},
			},
			Err: "step 1 (sell 5): bonding curve is complete",
		},
	}
}
