// ====================================
// File: cmd/curvesim/main.go
// ====================================
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/pumpcurve/internal/config"
	"github.com/rovshanmuradov/pumpcurve/internal/dex/pumpfun"
	"github.com/rovshanmuradov/pumpcurve/internal/export"
	"github.com/rovshanmuradov/pumpcurve/internal/forecast"
	"github.com/rovshanmuradov/pumpcurve/internal/utils/logger"
)

func main() {
	configPath := pflag.StringP("config", "c", "configs/curvesim.yaml", "path to the forecast config")
	noExport := pflag.Bool("no-export", false, "print the summary without writing a report file")
	pflag.Parse()

	// Setup context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	// Initialize logger
	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(ctx, cfg, log, !*noExport); err != nil {
		log.LogError("Forecast failed", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, doExport bool) error {
	done := log.TrackPerformance("forecast")
	defer done()

	scenarios, err := cfg.BuildScenarios()
	if err != nil {
		return fmt.Errorf("failed to build scenarios: %w", err)
	}
	log.Info("Starting forecast",
		zap.Int("scenarios", len(scenarios)),
		zap.Int("workers", cfg.Workers),
		zap.Uint64("fee_basis_points", cfg.Global.FeeBasisPoints))

	runner := forecast.NewRunner(log.WithComponent("runner"), cfg.Workers)
	reports, err := runner.Run(ctx, scenarios)
	if err != nil {
		return err
	}

	printSummary(reports)

	if !doExport {
		return nil
	}
	exporter := export.NewReportExporter(log.WithComponent("export"))
	path, err := exporter.ExportReports(reports, export.ExportOptions{
		Format:    export.ExportFormat(cfg.Export.Format),
		OutputDir: cfg.Export.OutputDir,
	})
	if err != nil {
		return fmt.Errorf("failed to export reports: %w", err)
	}
	fmt.Printf("\nReport written to %s\n", path)
	return nil
}

func printSummary(reports []forecast.Report) {
	for _, r := range reports {
		fmt.Printf("== %s\n", r.Scenario)
		for _, s := range r.Steps {
			fmt.Printf("  #%d %-4s tokens=%s sol=%s fee=%s bound=%s\n",
				s.Index, s.Side,
				pumpfun.TokenUnitsToUI(s.TokenAmount).String(),
				pumpfun.LamportsToSOL(s.SolAmount).String(),
				pumpfun.LamportsToSOL(s.Fee).String(),
				pumpfun.LamportsToSOL(s.Bound).String())
		}
		if r.Failed() {
			fmt.Printf("  stopped: %s\n", r.Err)
			continue
		}
		fmt.Printf("  market cap: %s SOL, spot price: %s SOL\n",
			pumpfun.LamportsToSOL(r.MarketCapSOL).String(), r.SpotPrice.String())
	}

	summary := export.CalculateSummary(reports)
	fmt.Printf("\nscenarios=%d failed=%d buys=%d (%s SOL) sells=%d (%s SOL) fees=%s SOL\n",
		summary.Scenarios, summary.FailedScenarios,
		summary.BuyCount, summary.TotalBuyVolume.String(),
		summary.SellCount, summary.TotalSellVolume.String(),
		summary.TotalFees.String())
}
