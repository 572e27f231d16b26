package tester

import (
	"context"
	"fmt"

	"github.com/aleister1102/sitecheck/internal/browser"
	"github.com/aleister1102/sitecheck/internal/common"
	"github.com/aleister1102/sitecheck/internal/config"
	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/rs/zerolog"
)

// PageDriver runs the full tester set against one page. Testers run
// sequentially, each isolated behind its own timeout; a tester failing or
// timing out contributes zero defects and never fails the page.
type PageDriver struct {
	config  config.TesterConfig
	logger  zerolog.Logger
	testers []Tester
}

// NewPageDriver wires the six testers onto a shared browser manager.
func NewPageDriver(bm *browser.Manager, cfg config.TesterConfig, logger zerolog.Logger) (*PageDriver, error) {
	checker, err := NewLinkChecker(cfg, logger)
	if err != nil {
		return nil, common.WrapError(err, "failed to create link checker")
	}

	return &PageDriver{
		config: cfg,
		logger: logger.With().Str("component", "PageDriver").Logger(),
		testers: []Tester{
			NewConsoleErrorTester(bm, cfg, logger),
			NewNetworkErrorTester(bm, cfg, logger),
			NewBrokenLinkTester(bm, cfg, checker, logger),
			NewBrokenImageTester(bm, cfg, logger),
			NewAccessibilityTester(bm, cfg, logger),
			NewResponsiveTester(bm, cfg, logger),
		},
	}, nil
}

// TestPage runs every tester against the page record's URL and fills its
// defect list, deduplicated within the page.
func (d *PageDriver) TestPage(ctx context.Context, record *models.PageRecord) {
	var defects []models.Defect
	for _, t := range d.testers {
		if ctx.Err() != nil {
			break
		}
		defects = append(defects, d.runTester(ctx, t, record.URL)...)
	}
	record.Defects = dedupWithinPage(defects)
}

// testerResult carries a tester outcome across the timeout race.
type testerResult struct {
	defects []models.Defect
	err     error
}

// runTester races one tester against its isolation timeout. Panics are
// recovered; the goroutine's page resources are bound to the raced context
// and released when it is cancelled.
func (d *PageDriver) runTester(ctx context.Context, t Tester, pageURL string) []models.Defect {
	testerCtx, cancel := context.WithTimeout(ctx, d.config.TesterTimeout())
	defer cancel()

	resultCh := make(chan testerResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- testerResult{err: fmt.Errorf("tester panicked: %v", r)}
			}
		}()
		defects, err := t.Run(testerCtx, pageURL)
		resultCh <- testerResult{defects: defects, err: err}
	}()

	select {
	case result := <-resultCh:
		if result.err != nil {
			d.logger.Warn().
				Err(result.err).
				Str("tester", string(t.Type())).
				Str("url", pageURL).
				Msg("Tester failed, dropping its defects")
			return nil
		}
		return result.defects
	case <-testerCtx.Done():
		d.logger.Warn().
			Str("tester", string(t.Type())).
			Str("url", pageURL).
			Msg("Tester timed out, dropping its defects")
		return nil
	}
}

// dedupWithinPage removes duplicate defects by fingerprint, keeping the
// first occurrence.
func dedupWithinPage(defects []models.Defect) []models.Defect {
	if len(defects) == 0 {
		return defects
	}
	seen := make(map[string]struct{}, len(defects))
	kept := defects[:0]
	for _, defect := range defects {
		fingerprint := defect.Fingerprint()
		if _, dup := seen[fingerprint]; dup {
			continue
		}
		seen[fingerprint] = struct{}{}
		kept = append(kept, defect)
	}
	return kept
}
