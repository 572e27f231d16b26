package tester

import (
	"github.com/go-rod/rod"
	"github.com/rs/zerolog"
)

// consentDismissScript clicks the first visible cookie-consent control on the
// page. Matching is by accept-style button text (including common localized
// labels) and by the usual accept-all id/class and aria-label conventions.
const consentDismissScript = `() => {
	const labels = [
		'accept all', 'accept', 'ok', 'agree', 'allow all',
		'alle akzeptieren', 'akzeptieren', 'zustimmen',
		'tout accepter', 'accepter',
		'aceptar todo', 'aceptar',
		'accetta tutto', 'accetta',
		'alles accepteren', 'accepteren',
	];
	const isVisible = (el) => {
		const rect = el.getBoundingClientRect();
		if (rect.width === 0 || rect.height === 0) return false;
		const style = window.getComputedStyle(el);
		return style.display !== 'none' && style.visibility !== 'hidden' && style.opacity !== '0';
	};
	const candidates = [];
	for (const el of document.querySelectorAll('button, [role="button"], input[type="button"], input[type="submit"], a')) {
		const text = (el.innerText || el.value || '').trim().toLowerCase();
		if (labels.includes(text)) candidates.push(el);
	}
	for (const el of document.querySelectorAll('[id*="accept-all"], [class*="accept-all"], [aria-label*="Accept"][role="button"]')) {
		candidates.push(el);
	}
	for (const el of candidates) {
		if (isVisible(el)) {
			el.click();
			return true;
		}
	}
	return false;
}`

// DismissConsentOverlay tries to close a cookie-consent banner so it does not
// hide the page's real anchors. Best effort; failures are only logged.
func DismissConsentOverlay(page *rod.Page, logger zerolog.Logger) {
	result, err := page.Eval(consentDismissScript)
	if err != nil {
		logger.Debug().Err(err).Msg("Consent dismissal script failed")
		return
	}
	if result.Value.Bool() {
		logger.Debug().Msg("Dismissed cookie consent overlay")
	}
}
