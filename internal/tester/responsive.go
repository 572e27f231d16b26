package tester

import (
	"context"
	"fmt"
	"time"

	"github.com/aleister1102/sitecheck/internal/browser"
	"github.com/aleister1102/sitecheck/internal/common"
	"github.com/aleister1102/sitecheck/internal/config"
	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/rs/zerolog"
)

// Viewport is one device size checked for horizontal overflow.
type Viewport struct {
	Name     string
	Width    int
	Height   int
	Severity models.Severity
}

// DefaultViewports returns the checked device sizes. Overflow on desktop is
// only informational; most layouts are authored desktop-first.
func DefaultViewports() []Viewport {
	return []Viewport{
		{Name: "Mobile", Width: 375, Height: 812, Severity: models.SeverityWarning},
		{Name: "Tablet", Width: 768, Height: 1024, Severity: models.SeverityWarning},
		{Name: "Desktop", Width: 1440, Height: 900, Severity: models.SeverityInfo},
	}
}

// ResponsiveTester loads the page at each viewport and reports layouts that
// overflow horizontally.
type ResponsiveTester struct {
	config         config.TesterConfig
	logger         zerolog.Logger
	browserManager *browser.Manager
	viewports      []Viewport
}

// NewResponsiveTester creates a new responsive layout tester
func NewResponsiveTester(bm *browser.Manager, cfg config.TesterConfig, logger zerolog.Logger) *ResponsiveTester {
	return &ResponsiveTester{
		config:         cfg,
		logger:         logger.With().Str("component", "ResponsiveTester").Logger(),
		browserManager: bm,
		viewports:      DefaultViewports(),
	}
}

// Type returns the defect type this tester produces.
func (t *ResponsiveTester) Type() models.DefectType {
	return models.DefectTypeResponsive
}

const overflowScript = `() => ({
	scrollWidth: document.documentElement.scrollWidth,
	clientWidth: document.documentElement.clientWidth,
})`

// Run checks the page at every viewport. The viewport is applied before
// navigation so the layout renders at the target size from the start.
func (t *ResponsiveTester) Run(ctx context.Context, pageURL string) ([]models.Defect, error) {
	var defects []models.Defect
	collector := &common.ErrorCollector{}

	for _, viewport := range t.viewports {
		if ctx.Err() != nil {
			break
		}
		defect, found, err := t.checkViewport(ctx, pageURL, viewport)
		if err != nil {
			collector.AddWithContext(err, "viewport "+viewport.Name)
			continue
		}
		if found {
			defects = append(defects, defect)
		}
	}

	if collector.HasErrors() {
		t.logger.Warn().Err(collector.Error()).Str("url", pageURL).Msg("Some viewport checks failed")
	}
	return defects, nil
}

func (t *ResponsiveTester) checkViewport(ctx context.Context, pageURL string, viewport Viewport) (models.Defect, bool, error) {
	page, err := t.browserManager.NewPage(ctx)
	if err != nil {
		return models.Defect{}, false, common.WrapError(err, "failed to open page")
	}
	defer func() { _ = page.Close() }()

	if err := browser.SetViewport(page, viewport.Width, viewport.Height); err != nil {
		return models.Defect{}, false, common.WrapError(err, "failed to set viewport")
	}
	if err := page.Navigate(pageURL); err != nil {
		return models.Defect{}, false, common.WrapErrorf(err, "navigation failed for %s", pageURL)
	}
	if err := page.WaitLoad(); err != nil {
		return models.Defect{}, false, common.WrapErrorf(err, "page load failed for %s", pageURL)
	}
	time.Sleep(renderSettleDelay)

	result, err := page.Eval(overflowScript)
	if err != nil {
		return models.Defect{}, false, common.WrapError(err, "overflow measurement failed")
	}
	scrollWidth := result.Value.Get("scrollWidth").Int()
	clientWidth := result.Value.Get("clientWidth").Int()

	defect, found := OverflowDefect(pageURL, viewport, scrollWidth, clientWidth)
	return defect, found, nil
}

// OverflowDefect classifies one viewport measurement. Content wider than the
// viewport's client area means a horizontal scrollbar for real users.
func OverflowDefect(pageURL string, viewport Viewport, scrollWidth, clientWidth int) (models.Defect, bool) {
	if scrollWidth <= clientWidth {
		return models.Defect{}, false
	}
	return models.Defect{
		Type:     models.DefectTypeResponsive,
		Severity: viewport.Severity,
		Title:    "Horizontal overflow at " + viewport.Name,
		Details: fmt.Sprintf(
			"Page has horizontal overflow at %dpx width. Content width: %dpx, viewport: %dpx.",
			viewport.Width, scrollWidth, viewport.Width,
		),
		Page: pageURL,
	}, true
}
