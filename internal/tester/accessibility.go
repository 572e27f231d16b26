package tester

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aleister1102/sitecheck/internal/browser"
	"github.com/aleister1102/sitecheck/internal/common"
	"github.com/aleister1102/sitecheck/internal/config"
	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/rs/zerolog"
)

// AccessibilityTester runs an in-page accessibility audit inside a fresh
// incognito context so stored state never skews the results.
type AccessibilityTester struct {
	config         config.TesterConfig
	logger         zerolog.Logger
	browserManager *browser.Manager
}

// NewAccessibilityTester creates a new accessibility tester
func NewAccessibilityTester(bm *browser.Manager, cfg config.TesterConfig, logger zerolog.Logger) *AccessibilityTester {
	return &AccessibilityTester{
		config:         cfg,
		logger:         logger.With().Str("component", "AccessibilityTester").Logger(),
		browserManager: bm,
	}
}

// Type returns the defect type this tester produces.
func (t *AccessibilityTester) Type() models.DefectType {
	return models.DefectTypeAccessibility
}

// A11yViolation is one rule violation reported by the in-page audit.
type A11yViolation struct {
	ID          string   `json:"id"`
	Impact      string   `json:"impact"`
	Help        string   `json:"help"`
	Description string   `json:"description"`
	Nodes       []string `json:"nodes"`
}

// Run navigates, lets the page settle, evaluates the audit script, and maps
// the reported violations to defects, capped at MaxA11yViolations per page.
func (t *AccessibilityTester) Run(ctx context.Context, pageURL string) ([]models.Defect, error) {
	page, cleanup, err := t.browserManager.NewIncognitoPage(ctx)
	if err != nil {
		return nil, common.WrapError(err, "failed to open incognito page")
	}
	defer cleanup()

	if err := page.Navigate(pageURL); err != nil {
		return nil, common.WrapErrorf(err, "navigation failed for %s", pageURL)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, common.WrapErrorf(err, "page load failed for %s", pageURL)
	}
	time.Sleep(renderSettleDelay)

	result, err := page.Eval(accessibilityAuditScript)
	if err != nil {
		return nil, common.WrapError(err, "accessibility audit failed")
	}

	var violations []A11yViolation
	data, err := result.Value.MarshalJSON()
	if err != nil {
		return nil, common.WrapError(err, "audit result is unreadable")
	}
	if err := json.Unmarshal(data, &violations); err != nil {
		return nil, common.WrapError(err, "audit result is unreadable")
	}

	if t.config.MaxA11yViolations > 0 && len(violations) > t.config.MaxA11yViolations {
		violations = violations[:t.config.MaxA11yViolations]
	}

	defects := make([]models.Defect, 0, len(violations))
	for _, violation := range violations {
		defects = append(defects, AccessibilityDefect(pageURL, violation))
	}
	return defects, nil
}

// AccessibilityDefect maps one audit violation to a defect record.
func AccessibilityDefect(pageURL string, violation A11yViolation) models.Defect {
	nodes := violation.Nodes
	if len(nodes) > 3 {
		nodes = nodes[:3]
	}
	return models.Defect{
		Type:     models.DefectTypeAccessibility,
		Severity: ImpactSeverity(violation.Impact),
		Title:    fmt.Sprintf("%s: %s", violation.ID, violation.Help),
		Details:  fmt.Sprintf("%s. Affected elements: %s", violation.Description, strings.Join(nodes, ", ")),
		Page:     pageURL,
	}
}

// ImpactSeverity maps audit impact levels to defect severities. Anything
// below serious, including an absent impact, is informational.
func ImpactSeverity(impact string) models.Severity {
	switch strings.ToLower(impact) {
	case "critical":
		return models.SeverityCritical
	case "serious":
		return models.SeverityWarning
	default:
		return models.SeverityInfo
	}
}

// accessibilityAuditScript implements a compact axe-style rule set directly
// over the DOM. Each violation carries the rule id, impact, help line,
// description, and up to three offending element snippets.
const accessibilityAuditScript = `() => {
	const violations = [];
	const snippet = (el) => {
		const html = el.outerHTML || el.tagName || '';
		return html.length > 200 ? html.slice(0, 200) + '...' : html;
	};
	const push = (id, impact, help, description, nodes) => {
		if (nodes.length === 0) return;
		violations.push({ id, impact, help, description, nodes: nodes.slice(0, 3).map(snippet) });
	};

	push('image-alt', 'critical',
		'Images must have alternate text',
		'Ensures <img> elements have alternate text or a role of none or presentation',
		Array.from(document.querySelectorAll('img')).filter((img) => {
			if (img.hasAttribute('alt') || img.hasAttribute('aria-label')) return false;
			const role = img.getAttribute('role');
			return role !== 'presentation' && role !== 'none';
		}));

	const lang = document.documentElement.getAttribute('lang');
	if (!lang || !lang.trim()) {
		push('html-has-lang', 'serious',
			'<html> element must have a lang attribute',
			'Ensures every HTML document has a lang attribute',
			[document.documentElement]);
	}

	if (!document.title || !document.title.trim()) {
		push('document-title', 'serious',
			'Documents must have a non-empty <title> element',
			'Ensures each HTML document contains a non-empty <title> element',
			[document.documentElement]);
	}

	push('label', 'critical',
		'Form elements must have labels',
		'Ensures every form element has a label',
		Array.from(document.querySelectorAll(
			'input:not([type=hidden]):not([type=button]):not([type=submit]):not([type=reset]):not([type=image]), select, textarea'
		)).filter((el) => {
			if (el.getAttribute('aria-label') || el.getAttribute('aria-labelledby') || el.getAttribute('title')) return false;
			if (el.id && document.querySelector('label[for="' + CSS.escape(el.id) + '"]')) return false;
			return !el.closest('label');
		}));

	push('link-name', 'serious',
		'Links must have discernible text',
		'Ensures links have discernible text',
		Array.from(document.querySelectorAll('a[href]')).filter((a) => {
			if ((a.innerText || '').trim()) return false;
			if ((a.getAttribute('aria-label') || '').trim() || (a.getAttribute('title') || '').trim()) return false;
			const img = a.querySelector('img[alt]');
			return !(img && (img.getAttribute('alt') || '').trim());
		}));

	push('button-name', 'critical',
		'Buttons must have discernible text',
		'Ensures buttons have discernible text',
		Array.from(document.querySelectorAll('button')).filter((b) =>
			!(b.innerText || '').trim() &&
			!(b.getAttribute('aria-label') || '').trim() &&
			!(b.getAttribute('title') || '').trim()));

	const skipped = [];
	let previousLevel = 0;
	for (const heading of document.querySelectorAll('h1, h2, h3, h4, h5, h6')) {
		const level = parseInt(heading.tagName.charAt(1), 10);
		if (previousLevel > 0 && level > previousLevel + 1) skipped.push(heading);
		previousLevel = level;
	}
	push('heading-order', 'moderate',
		'Heading levels should only increase by one',
		'Ensures the order of headings is semantically correct',
		skipped);

	const viewport = document.querySelector('meta[name="viewport"]');
	if (viewport) {
		const content = (viewport.getAttribute('content') || '').toLowerCase();
		const maxScale = content.match(/maximum-scale\s*=\s*([0-9.]+)/);
		if (content.includes('user-scalable=no') || (maxScale && parseFloat(maxScale[1]) < 2)) {
			push('meta-viewport', 'critical',
				'Zooming and scaling must not be disabled',
				'Ensures <meta name="viewport"> does not disable text scaling and zooming',
				[viewport]);
		}
	}

	return violations;
}`
