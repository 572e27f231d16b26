package tester

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/rs/zerolog"

	"github.com/aleister1102/sitecheck/internal/browser"
	"github.com/aleister1102/sitecheck/internal/common"
	"github.com/aleister1102/sitecheck/internal/config"
	"github.com/aleister1102/sitecheck/internal/models"
	"github.com/aleister1102/sitecheck/internal/urlhandler"
)

// linkExcludedSchemes lists schemes the link tester never checks.
var linkExcludedSchemes = map[string]struct{}{
	"mailto": {}, "tel": {}, "javascript": {}, "data": {}, "blob": {},
}

// BrokenLinkTester collects every anchor target on a rendered page and
// verifies each unique one with the HEAD-then-GET ladder.
type BrokenLinkTester struct {
	config         config.TesterConfig
	logger         zerolog.Logger
	browserManager *browser.Manager
	checker        *LinkChecker
}

// NewBrokenLinkTester creates a new broken link tester
func NewBrokenLinkTester(bm *browser.Manager, cfg config.TesterConfig, checker *LinkChecker, logger zerolog.Logger) *BrokenLinkTester {
	return &BrokenLinkTester{
		config:         cfg,
		logger:         logger.With().Str("component", "BrokenLinkTester").Logger(),
		browserManager: bm,
		checker:        checker,
	}
}

// Type returns the defect type this tester produces.
func (t *BrokenLinkTester) Type() models.DefectType {
	return models.DefectTypeBrokenLink
}

// Run renders the page, dismisses any consent overlay, collects link targets,
// and emits a warning defect for each definitively broken one.
func (t *BrokenLinkTester) Run(ctx context.Context, pageURL string) ([]models.Defect, error) {
	targets, err := t.collectTargets(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	var defects []models.Defect
	for _, target := range targets {
		if ctx.Err() != nil {
			break
		}
		result := t.checker.Check(ctx, target)
		if result.Verdict != LinkBroken {
			continue
		}
		defects = append(defects, models.Defect{
			Type:     models.DefectTypeBrokenLink,
			Severity: models.SeverityWarning,
			Title:    "Broken link: " + target,
			Details:  fmt.Sprintf("Link to %s: %s", target, result.Detail),
			Page:     pageURL,
		})
	}
	return defects, nil
}

// collectTargets renders the page and returns the unique checkable link
// targets, in document order, capped at MaxLinksPerPage.
func (t *BrokenLinkTester) collectTargets(ctx context.Context, pageURL string) ([]string, error) {
	page, err := t.browserManager.NewPage(ctx)
	if err != nil {
		return nil, common.WrapError(err, "failed to open page")
	}
	defer func() { _ = page.Close() }()

	if err := t.renderPage(page, pageURL); err != nil {
		return nil, err
	}
	DismissConsentOverlay(page, t.logger)

	html, err := page.HTML()
	if err != nil {
		return nil, common.WrapError(err, "failed to snapshot HTML")
	}
	hrefs, err := extractAnchorHrefs(html)
	if err != nil {
		return nil, err
	}

	parsedPage, err := url.Parse(pageURL)
	if err != nil {
		return nil, common.WrapErrorf(err, "page URL is unparsable: %s", pageURL)
	}
	return CollectLinkTargets(hrefs, parsedPage, t.config.MaxLinksPerPage), nil
}

func (t *BrokenLinkTester) renderPage(page *rod.Page, pageURL string) error {
	if err := page.Navigate(pageURL); err != nil {
		return common.WrapErrorf(err, "navigation failed for %s", pageURL)
	}
	if err := page.WaitLoad(); err != nil {
		return common.WrapErrorf(err, "page load failed for %s", pageURL)
	}
	return nil
}

// extractAnchorHrefs returns the raw href of every anchor in document order.
func extractAnchorHrefs(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, common.WrapError(err, "failed to parse page HTML")
	}

	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, exists := sel.Attr("href"); exists {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs, nil
}

// CollectLinkTargets filters raw hrefs down to checkable targets: resolved
// against the page, scheme-checked, bot-blocked hosts dropped, fragments
// stripped, deduplicated, and capped at maxLinks.
func CollectLinkTargets(hrefs []string, pageURL *url.URL, maxLinks int) []string {
	seen := make(map[string]struct{})
	var targets []string

	for _, href := range hrefs {
		if maxLinks > 0 && len(targets) >= maxLinks {
			break
		}

		trimmed := strings.TrimSpace(href)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if scheme := schemeOfHref(trimmed); scheme != "" {
			if _, excluded := linkExcludedSchemes[scheme]; excluded {
				continue
			}
		}

		resolved, err := pageURL.Parse(trimmed)
		if err != nil || !resolved.IsAbs() || resolved.Host == "" {
			continue
		}
		if scheme := strings.ToLower(resolved.Scheme); scheme != "http" && scheme != "https" {
			continue
		}
		if IsBotBlockedHost(resolved.Hostname()) {
			continue
		}

		target, err := urlhandler.StripFragment(resolved.String())
		if err != nil || target == "" {
			continue
		}
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		targets = append(targets, target)
	}
	return targets
}

// schemeOfHref extracts the scheme prefix of a raw href, if any.
func schemeOfHref(href string) string {
	colon := strings.Index(href, ":")
	if colon <= 0 {
		return ""
	}
	candidate := href[:colon]
	for _, r := range candidate {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '+' && r != '-' && r != '.' {
			return ""
		}
	}
	return strings.ToLower(candidate)
}
