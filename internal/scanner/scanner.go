package scanner

import (
	"context"
	"fmt"

	"github.com/aleister1102/sitecheck/internal/browser"
	"github.com/aleister1102/sitecheck/internal/common"
	"github.com/aleister1102/sitecheck/internal/config"
	"github.com/aleister1102/sitecheck/internal/crawler"
	"github.com/aleister1102/sitecheck/internal/datastore"
	"github.com/aleister1102/sitecheck/internal/models"
	"github.com/aleister1102/sitecheck/internal/prompt"
	"github.com/aleister1102/sitecheck/internal/reporter"
	"github.com/aleister1102/sitecheck/internal/rslimiter"
	"github.com/aleister1102/sitecheck/internal/tester"
	"github.com/aleister1102/sitecheck/internal/urlhandler"

	"github.com/rs/zerolog"
)

// Scanner drives one scan end to end: crawl, per-page testing, prompt
// generation, report assembly, analytics. It holds no per-scan state; every
// Run call is an independent pipeline.
type Scanner struct {
	config *config.GlobalConfig
	logger zerolog.Logger
}

// NewScanner creates a new scan pipeline
func NewScanner(cfg *config.GlobalConfig, logger zerolog.Logger) *Scanner {
	return &Scanner{
		config: cfg,
		logger: logger.With().Str("component", "Scanner").Logger(),
	}
}

// monotonicPublisher enforces non-decreasing progress at the publication
// site. A stage that would report lower than an already published value is
// clamped up to it.
type monotonicPublisher struct {
	publish func(models.ProgressEvent)
	last    int
}

func (mp *monotonicPublisher) Publish(event models.ProgressEvent) {
	if mp.publish == nil {
		return
	}
	if event.Progress < mp.last {
		event.Progress = mp.last
	}
	mp.last = event.Progress
	mp.publish(event)
}

// Run executes the full pipeline against seedURL, publishing progress events
// through publish. The context carries the whole-scan deadline; its expiry is
// the only timeout that fails the scan.
func (s *Scanner) Run(ctx context.Context, scanID, seedURL string, publish func(models.ProgressEvent)) (*models.Report, error) {
	progress := &monotonicPublisher{publish: publish}
	scanLogger := s.logger.With().Str("scan_id", scanID).Logger()

	limiter := rslimiter.NewResourceLimiter(s.config.ResourceLimiterConfig, scanLogger)
	limiter.Start()
	defer limiter.Stop()

	browserManager := browser.NewManager(s.config.BrowserConfig, scanLogger)
	if err := browserManager.Start(); err != nil {
		return nil, common.WrapError(err, "browser launch failed")
	}
	defer browserManager.Stop()

	pages, err := s.runCrawl(ctx, seedURL, browserManager, progress, scanLogger)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, common.WrapError(err, "scan aborted after crawl")
	}

	if err := s.runTesters(ctx, pages, browserManager, progress, scanLogger); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, common.WrapError(err, "scan aborted after testing")
	}

	warnings := s.runPrompts(ctx, pages, progress, scanLogger)
	if err := ctx.Err(); err != nil {
		return nil, common.WrapError(err, "scan aborted after prompt generation")
	}

	progress.Publish(models.ProgressEvent{
		Phase:    models.PhaseReport,
		Message:  "Building report...",
		Progress: 95,
	})
	report := reporter.NewReportBuilder(scanLogger).Build(seedURL, pages, warnings)

	s.emitAnalytics(scanID, seedURL, report, len(warnings) > 0, scanLogger)

	progress.Publish(models.ProgressEvent{
		Phase:    models.PhaseComplete,
		Message:  "Scan complete!",
		Progress: 100,
	})
	return report, nil
}

// runCrawl discovers the page set. The crawler's inner 0-100 progress is
// mapped onto the 0-30 band; a seed that cannot be loaded yields an empty
// page set rather than a failed scan.
func (s *Scanner) runCrawl(ctx context.Context, seedURL string, bm *browser.Manager, progress *monotonicPublisher, logger zerolog.Logger) ([]models.PageRecord, error) {
	progress.Publish(models.ProgressEvent{
		Phase:    models.PhaseCrawling,
		Message:  "Starting page discovery...",
		Progress: 0,
	})

	crawlAdapter := func(event models.ProgressEvent) {
		if event.Progress >= 100 {
			// The completion milestone is published below with the final count.
			return
		}
		event.Progress = event.Progress * 30 / 100
		progress.Publish(event)
	}

	siteCrawler, err := crawler.NewCrawlerBuilder(logger).
		WithConfig(s.config.CrawlerConfig).
		WithBrowserManager(bm).
		WithProgressCallback(crawlAdapter).
		Build()
	if err != nil {
		return nil, common.WrapError(err, "failed to build crawler")
	}

	pages, err := siteCrawler.Crawl(ctx, seedURL)
	if err != nil {
		logger.Warn().Err(err).Str("seed", seedURL).Msg("Crawl failed, continuing with empty page set")
		pages = nil
	}

	progress.Publish(models.ProgressEvent{
		Phase:    models.PhaseCrawling,
		Message:  fmt.Sprintf("Found %d page(s)", len(pages)),
		Progress: 30,
	})
	return pages, nil
}

// runTesters drives the six testers across every discovered page, filling
// each record's defect list in place.
func (s *Scanner) runTesters(ctx context.Context, pages []models.PageRecord, bm *browser.Manager, progress *monotonicPublisher, logger zerolog.Logger) error {
	if len(pages) == 0 {
		return nil
	}

	driver, err := tester.NewPageDriver(bm, s.config.TesterConfig, logger)
	if err != nil {
		return common.WrapError(err, "failed to build page driver")
	}

	total := len(pages)
	for i := range pages {
		if ctx.Err() != nil {
			return common.WrapError(ctx.Err(), "scan aborted during testing")
		}

		label := pages[i].Title
		if label == "" {
			label = pages[i].URL
		}
		progress.Publish(models.ProgressEvent{
			Phase:    models.PhaseTesting,
			Message:  fmt.Sprintf("Testing page %d/%d: %s", i+1, total, label),
			Progress: 30 + (i+1)*50/total,
		})

		driver.TestPage(ctx, &pages[i])
	}
	return nil
}

// runPrompts fills fix prompts across all pages and converts a template
// fallback into a report warning plus a 90-percent progress note.
func (s *Scanner) runPrompts(ctx context.Context, pages []models.PageRecord, progress *monotonicPublisher, logger zerolog.Logger) []string {
	progress.Publish(models.ProgressEvent{
		Phase:    models.PhasePrompts,
		Message:  "Generating fix prompts...",
		Progress: 85,
	})

	generator := prompt.NewGeneratorBuilder(logger).
		WithConfig(s.config.PromptConfig).
		Build()
	stats := generator.PopulateFixPrompts(ctx, pages)

	logger.Info().
		Int("cache_hits", stats.CacheHits).
		Int("cache_misses", stats.CacheMisses).
		Bool("used_fallback", stats.UsedFallback).
		Msg("Fix prompts generated")

	if !stats.UsedFallback {
		return nil
	}
	progress.Publish(models.ProgressEvent{
		Phase:    models.PhasePrompts,
		Message:  stats.FallbackReason,
		Progress: 90,
	})
	return []string{stats.FallbackReason}
}

// emitAnalytics writes the scan_complete record. Analytics failures are
// logged and never fail the scan.
func (s *Scanner) emitAnalytics(scanID, seedURL string, report *models.Report, usedTemplates bool, logger zerolog.Logger) {
	domain, err := urlhandler.ExtractHostname(seedURL)
	if err != nil {
		domain = seedURL
	}

	record := datastore.BuildScanAnalyticsRecord(report, domain, usedTemplates)
	store := datastore.NewAnalyticsStore(s.config.AnalyticsConfig, logger)
	if err := store.StoreScanComplete(scanID, record); err != nil {
		logger.Warn().Err(err).Msg("Failed to write scan analytics")
	}
}
