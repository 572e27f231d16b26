package tester

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/aleister1102/sitecheck/internal/browser"
	"github.com/aleister1102/sitecheck/internal/common"
	"github.com/aleister1102/sitecheck/internal/config"
	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// BrokenImageTester inspects every rendered <img> and reports the ones the
// browser finished loading with no pixel data.
type BrokenImageTester struct {
	config         config.TesterConfig
	logger         zerolog.Logger
	browserManager *browser.Manager
}

// NewBrokenImageTester creates a new broken image tester
func NewBrokenImageTester(bm *browser.Manager, cfg config.TesterConfig, logger zerolog.Logger) *BrokenImageTester {
	return &BrokenImageTester{
		config:         cfg,
		logger:         logger.With().Str("component", "BrokenImageTester").Logger(),
		browserManager: bm,
	}
}

// Type returns the defect type this tester produces.
func (t *BrokenImageTester) Type() models.DefectType {
	return models.DefectTypeBrokenImage
}

// ImageSnapshot is the per-image state captured from the rendered DOM.
type ImageSnapshot struct {
	Src          string `json:"src"`
	Alt          string `json:"alt"`
	Complete     bool   `json:"complete"`
	NaturalWidth int    `json:"naturalWidth"`
}

const imageSnapshotScript = `() => Array.from(document.querySelectorAll('img')).map(img => ({
	src: img.getAttribute('src') || '',
	alt: img.getAttribute('alt') || '',
	complete: img.complete,
	naturalWidth: img.naturalWidth,
}))`

// Run waits for DOM content plus a settle delay, snapshots every image, and
// classifies the ones that failed to load.
func (t *BrokenImageTester) Run(ctx context.Context, pageURL string) ([]models.Defect, error) {
	page, err := t.browserManager.NewPage(ctx)
	if err != nil {
		return nil, common.WrapError(err, "failed to open page")
	}
	defer func() { _ = page.Close() }()

	wait := page.WaitEvent(&proto.PageDomContentEventFired{})
	if err := page.Navigate(pageURL); err != nil {
		return nil, common.WrapErrorf(err, "navigation failed for %s", pageURL)
	}
	wait()
	time.Sleep(asyncSettleDelay)

	result, err := page.Eval(imageSnapshotScript)
	if err != nil {
		return nil, common.WrapError(err, "image snapshot failed")
	}

	var snapshots []ImageSnapshot
	data, err := result.Value.MarshalJSON()
	if err != nil {
		return nil, common.WrapError(err, "image snapshot is unreadable")
	}
	if err := json.Unmarshal(data, &snapshots); err != nil {
		return nil, common.WrapError(err, "image snapshot is unreadable")
	}

	return BrokenImageDefects(pageURL, snapshots), nil
}

// BrokenImageDefects classifies image snapshots: a completed image with a
// natural width of zero never produced pixels. Images without a source and
// inline data URIs are skipped.
func BrokenImageDefects(pageURL string, snapshots []ImageSnapshot) []models.Defect {
	var defects []models.Defect
	for _, img := range snapshots {
		src := strings.TrimSpace(img.Src)
		if src == "" || strings.HasPrefix(src, "data:") {
			continue
		}
		if !img.Complete || img.NaturalWidth > 0 {
			continue
		}

		label := strings.TrimSpace(img.Alt)
		if label == "" {
			label = src
		}
		defects = append(defects, models.Defect{
			Type:     models.DefectTypeBrokenImage,
			Severity: models.SeverityWarning,
			Title:    "Broken image: " + label,
			Details:  "Image failed to load: " + src,
			Page:     pageURL,
		})
	}
	return defects
}
