package tester

import "strings"

// consoleNoisePatterns match console messages that originate from third-party
// infrastructure a site owner cannot fix.
var consoleNoisePatterns = []string{
	"favicon",
	"/cdn-cgi/",
	"googletagmanager",
	"gtag/js",
	"google-analytics.com",
	"doubleclick",
	"clarity.ms",
	"failed to load resource",
}

// networkNoisePatterns match sub-resource URLs served by analytics and edge
// vendors whose failures are not the scanned site's defects.
var networkNoisePatterns = []string{
	"favicon",
	"google-analytics.com",
	"googletagmanager",
	"gtag/js",
	"hotjar.com",
	"sentry.io",
	"sentry-cdn.com",
	"/cdn-cgi/",
	"cloudflareinsights.com",
	"clarity.ms",
	"doubleclick",
	"googlesyndication.com",
	"adsbygoogle",
}

// botBlockedHosts reject automated HEAD/GET requests, so checking links into
// them only produces false positives.
var botBlockedHosts = []string{
	"linkedin.com",
	"facebook.com",
	"instagram.com",
	"twitter.com",
	"x.com",
	"tiktok.com",
	"pinterest.com",
	"reddit.com",
	"threads.net",
}

// IsConsoleNoise reports whether a console message matches the noise set.
func IsConsoleNoise(message string) bool {
	return matchesAny(message, consoleNoisePatterns)
}

// IsNetworkNoise reports whether a sub-resource URL matches the noise set.
func IsNetworkNoise(url string) bool {
	return matchesAny(url, networkNoisePatterns)
}

// IsBotBlockedHost reports whether a hostname is a bot-blocked domain or one
// of its dotted subdomains. Exact matching only; "notlinkedin.com" is fine.
func IsBotBlockedHost(host string) bool {
	lowered := strings.ToLower(strings.TrimSpace(host))
	for _, blocked := range botBlockedHosts {
		if lowered == blocked || strings.HasSuffix(lowered, "."+blocked) {
			return true
		}
	}
	return false
}

func matchesAny(value string, patterns []string) bool {
	lowered := strings.ToLower(value)
	for _, pattern := range patterns {
		if strings.Contains(lowered, pattern) {
			return true
		}
	}
	return false
}
