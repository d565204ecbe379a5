package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/pumpcurve/internal/dex/pumpfun"
	"github.com/rovshanmuradov/pumpcurve/internal/forecast"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format         ExportFormat
	OutputDir      string
	ScenarioFilter string // Export a single scenario by name
	SideFilter     string // Filter steps by side (buy/sell)
	SkipFailed     bool   // Drop scenarios that stopped early
}

// ReportExporter writes forecast reports to disk
type ReportExporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewReportExporter creates a new report exporter
func NewReportExporter(logger *zap.Logger) *ReportExporter {
	return &ReportExporter{
		logger: logger,
		now:    time.Now,
	}
}

// CSVHeaders returns the column names of a step row
func CSVHeaders() []string {
	return []string{
		"scenario", "step", "side", "requested", "token_amount", "sol_amount", "fee", "bound",
		"virtual_sol_reserves", "virtual_token_reserves", "real_sol_reserves", "real_token_reserves",
		"market_cap_sol",
	}
}

func stepToCSV(scenario string, s forecast.StepResult) []string {
	u := func(v uint64) string { return strconv.FormatUint(v, 10) }
	return []string{
		scenario, strconv.Itoa(s.Index), string(s.Side), u(s.Requested), u(s.TokenAmount), u(s.SolAmount),
		u(s.Fee), u(s.Bound), u(s.VirtualSolReserves), u(s.VirtualTokenReserves), u(s.RealSolReserves),
		u(s.RealTokenReserves), pumpfun.LamportsToSOL(s.MarketCapSOL).String(),
	}
}

// ExportReports exports reports based on the provided options
func (re *ReportExporter) ExportReports(reports []forecast.Report, options ExportOptions) (string, error) {
	filtered := re.filterReports(reports, options)

	if len(filtered) == 0 {
		return "", fmt.Errorf("no reports match the export criteria")
	}

	filename := re.generateFilename(options)
	outputPath := filepath.Join(options.OutputDir, filename)

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	switch options.Format {
	case FormatCSV:
		err = re.exportToCSV(filtered, outputPath)
	case FormatJSON:
		err = re.exportToJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}

	if err != nil {
		return "", err
	}

	re.logger.Info("Reports exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

// filterReports applies filters to the report list
func (re *ReportExporter) filterReports(reports []forecast.Report, options ExportOptions) []forecast.Report {
	var filtered []forecast.Report

	for _, report := range reports {
		if options.ScenarioFilter != "" && report.Scenario != options.ScenarioFilter {
			continue
		}
		if options.SkipFailed && report.Failed() {
			continue
		}

		if options.SideFilter != "" {
			var steps []forecast.StepResult
			for _, step := range report.Steps {
				if string(step.Side) == options.SideFilter {
					steps = append(steps, step)
				}
			}
			report.Steps = steps
		}

		filtered = append(filtered, report)
	}

	return filtered
}

// generateFilename creates a filename based on export options
func (re *ReportExporter) generateFilename(options ExportOptions) string {
	timestamp := re.now().Format("20060102_150405")

	prefix := "forecast_all"
	if options.ScenarioFilter != "" {
		prefix = "forecast_" + options.ScenarioFilter
	}
	if options.SideFilter != "" {
		prefix += "_" + options.SideFilter
	}

	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, options.Format)
}

// exportToCSV exports one row per simulated step
func (re *ReportExporter) exportToCSV(reports []forecast.Report, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, report := range reports {
		for _, step := range report.Steps {
			if err := writer.Write(stepToCSV(report.Scenario, step)); err != nil {
				return fmt.Errorf("failed to write step: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// exportToJSON exports reports with a summary block
func (re *ReportExporter) exportToJSON(reports []forecast.Report, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime    time.Time         `json:"export_time"`
		ScenarioCount int               `json:"scenario_count"`
		Reports       []forecast.Report `json:"reports"`
		Summary       ExportSummary     `json:"summary"`
	}{
		ExportTime:    re.now(),
		ScenarioCount: len(reports),
		Reports:       reports,
		Summary:       CalculateSummary(reports),
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// ExportSummary contains summary statistics for exported reports.
// Volumes are in SOL.
type ExportSummary struct {
	Scenarios       int             `json:"scenarios"`
	FailedScenarios int             `json:"failed_scenarios"`
	Steps           int             `json:"steps"`
	BuyCount        int             `json:"buy_count"`
	SellCount       int             `json:"sell_count"`
	TotalBuyVolume  decimal.Decimal `json:"total_buy_volume"`
	TotalSellVolume decimal.Decimal `json:"total_sell_volume"`
	TotalFees       decimal.Decimal `json:"total_fees"`
	TokensBought    decimal.Decimal `json:"tokens_bought"`
	TokensSold      decimal.Decimal `json:"tokens_sold"`
}

// CalculateSummary aggregates step volumes over all reports
func CalculateSummary(reports []forecast.Report) ExportSummary {
	summary := ExportSummary{
		Scenarios:       len(reports),
		TotalBuyVolume:  decimal.Zero,
		TotalSellVolume: decimal.Zero,
		TotalFees:       decimal.Zero,
		TokensBought:    decimal.Zero,
		TokensSold:      decimal.Zero,
	}

	for _, report := range reports {
		if report.Failed() {
			summary.FailedScenarios++
		}
		for _, step := range report.Steps {
			summary.Steps++
			sol := pumpfun.LamportsToSOL(step.SolAmount)
			tokens := pumpfun.TokenUnitsToUI(step.TokenAmount)
			summary.TotalFees = summary.TotalFees.Add(pumpfun.LamportsToSOL(step.Fee))

			switch step.Side {
			case forecast.SideBuy:
				summary.BuyCount++
				summary.TotalBuyVolume = summary.TotalBuyVolume.Add(sol)
				summary.TokensBought = summary.TokensBought.Add(tokens)
			case forecast.SideSell:
				summary.SellCount++
				summary.TotalSellVolume = summary.TotalSellVolume.Add(sol)
				summary.TokensSold = summary.TokensSold.Add(tokens)
			}
		}
	}

	return summary
}
