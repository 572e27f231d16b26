package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aleister1102/sitecheck/internal/config"
	"github.com/aleister1102/sitecheck/internal/logger"
	"github.com/aleister1102/sitecheck/internal/models"
	"github.com/aleister1102/sitecheck/internal/reporter"
	"github.com/aleister1102/sitecheck/internal/scanner"

	"github.com/rs/zerolog"
)

func main() {
	flags := ParseFlags()

	bootstrapLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	gCfg, err := config.LoadGlobalConfig(flags.ConfigFile, bootstrapLogger)
	if err != nil {
		log.Fatalf("[FATAL] Could not load global config using path '%s': %v", flags.ConfigFile, err)
	}

	applyFlagOverrides(gCfg, flags)

	if err := config.ValidateConfig(gCfg); err != nil {
		log.Fatalf("[FATAL] Configuration validation failed: %v", err)
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] Could not initialize logger: %v", err)
	}
	zLogger.Info().Msg("Configuration loaded and validated")

	registry := scanner.NewRegistry(gCfg, scanner.NewScanner(gCfg, zLogger), zLogger)

	scanID, err := registry.StartScan(flags.SeedURL)
	if err != nil {
		zLogger.Fatal().Err(err).Str("seed_url", flags.SeedURL).Msg("Could not start scan")
	}

	unsubscribe, err := registry.SubscribeProgress(scanID, func(event models.ProgressEvent) {
		zLogger.Info().
			Str("phase", event.Phase).
			Int("progress", event.Progress).
			Msg(event.Message)
	})
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Could not subscribe to scan progress")
	}
	defer unsubscribe()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		zLogger.Warn().Str("signal", sig.String()).Msg("Received interrupt signal, cancelling scan...")
		registry.Reset()
	}()

	result := waitForScan(registry, scanID, zLogger)
	if result.Status == models.ScanStateError {
		zLogger.Error().Str("error", result.Error).Msg("Scan failed")
		os.Exit(1)
	}

	reportPath := flags.OutputFile
	if reportPath == "" {
		reportPath = filepath.Join("reports", fmt.Sprintf("scan_report_%s.json", scanID))
	}
	if err := reporter.NewReportWriter(zLogger).WriteReportFile(result.Report, reportPath); err != nil {
		zLogger.Error().Err(err).Msg("Could not write report file")
		os.Exit(1)
	}

	zLogger.Info().
		Int("pages", result.Report.PagesFound).
		Int("defects", result.Report.TotalDefects()).
		Str("report", reportPath).
		Msg("Scan finished")
}

// applyFlagOverrides lets explicit command line flags win over the config file.
func applyFlagOverrides(gCfg *config.GlobalConfig, flags AppFlags) {
	if flags.LogLevel != "" {
		gCfg.LogConfig.LogLevel = flags.LogLevel
	}
	if flags.LogFormat != "" {
		gCfg.LogConfig.LogFormat = flags.LogFormat
	}
	if flags.HeadlessSet {
		gCfg.BrowserConfig.Headless = flags.Headless
	}
}

// waitForScan polls the registry until the scan reaches a terminal state.
// A registry reset from the signal handler surfaces here as an unknown scan.
func waitForScan(registry *scanner.Registry, scanID string, zLogger zerolog.Logger) scanner.ScanStatusResult {
	for {
		result, err := registry.GetReport(scanID)
		if err != nil {
			zLogger.Warn().Msg("Scan cancelled before completion")
			os.Exit(130)
		}
		if result.Status.IsTerminal() {
			return result
		}
		time.Sleep(200 * time.Millisecond)
	}
}
