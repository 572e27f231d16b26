package urlhandler

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/aleister1102/sitecheck/internal/common"
)

// Regex for cleaning filenames
var (
	unsafeFilenameCharsRegex = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)
	multipleUnderscoresRegex = regexp.MustCompile(`_+`)
)

// NormalizeURL canonicalizes a URL for visited-set keying and report output:
// the fragment is dropped, the host is lowercased, trailing slashes are
// stripped from the path (so "http://h/" becomes "http://h"), and the query
// string is preserved verbatim. The operation is idempotent.
func NormalizeURL(rawURL string) (string, error) {
	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return "", common.NewError("URL is empty or only whitespace")
	}

	// Add scheme if missing
	if !strings.Contains(trimmedURL, "://") && !strings.HasPrefix(trimmedURL, "//") {
		trimmedURL = "http://" + trimmedURL
	}

	parsedURL, err := url.Parse(trimmedURL)
	if err != nil {
		return "", common.WrapErrorf(err, "could not parse URL '%s'", trimmedURL)
	}

	if parsedURL.Host == "" {
		return "", common.NewError("URL lacks a valid hostname")
	}

	parsedURL.Host = strings.ToLower(parsedURL.Host)
	parsedURL.Fragment = ""
	parsedURL.RawFragment = ""
	parsedURL.Path = strings.TrimRight(parsedURL.Path, "/")
	if parsedURL.RawPath != "" {
		parsedURL.RawPath = strings.TrimRight(parsedURL.RawPath, "/")
	}

	return parsedURL.String(), nil
}

// ResolveURL resolves a (possibly relative) URL string against a base URL.
// The returned URL is also normalized.
func ResolveURL(href string, base *url.URL) (string, error) {
	trimmedHref := strings.TrimSpace(href)
	if trimmedHref == "" {
		return "", common.NewError("href is empty")
	}

	var resolvedURL *url.URL

	if base == nil {
		// Without a base the href must already be absolute.
		parsedHref, parseErr := url.Parse(trimmedHref)
		if parseErr != nil {
			return "", common.WrapErrorf(parseErr, "error parsing base-less href '%s'", trimmedHref)
		}
		if !parsedHref.IsAbs() {
			return "", common.NewError("cannot process relative URL '%s' without a base URL", trimmedHref)
		}
		resolvedURL = parsedHref
	} else {
		resolved, resolveErr := base.Parse(trimmedHref)
		if resolveErr != nil {
			return "", common.WrapErrorf(resolveErr, "error resolving href '%s' with base '%s'", trimmedHref, base.String())
		}
		resolvedURL = resolved
	}

	return NormalizeURL(resolvedURL.String())
}

// StripFragment removes the fragment from a URL without any further
// normalization. Link targets are deduplicated on this form.
func StripFragment(rawURL string) (string, error) {
	parsedURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", common.WrapErrorf(err, "could not parse URL '%s'", rawURL)
	}
	parsedURL.Fragment = ""
	parsedURL.RawFragment = ""
	return parsedURL.String(), nil
}

// ValidateScanURL checks a seed URL submitted to the scan entry point.
// The URL must be absolute, use http or https, and carry a hostname with at
// least two dot-separated labels whose last label is two or more characters.
func ValidateScanURL(rawURL string) error {
	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return common.NewValidationError("url", rawURL, "URL is empty")
	}

	parsedURL, err := url.Parse(trimmedURL)
	if err != nil {
		return common.NewValidationError("url", rawURL, "URL could not be parsed")
	}

	if !parsedURL.IsAbs() || parsedURL.Host == "" {
		return common.NewValidationError("url", rawURL, "URL must be absolute")
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if scheme != "http" && scheme != "https" {
		return common.NewValidationError("url", rawURL, "URL scheme must be http or https")
	}

	hostname := parsedURL.Hostname()
	labels := strings.Split(hostname, ".")
	if len(labels) < 2 {
		return common.NewValidationError("url", rawURL, "hostname must contain a domain and a TLD")
	}
	for _, label := range labels {
		if label == "" {
			return common.NewValidationError("url", rawURL, "hostname contains an empty label")
		}
	}
	if len(labels[len(labels)-1]) < 2 {
		return common.NewValidationError("url", rawURL, "hostname TLD must be at least two characters")
	}

	return nil
}

// HostsEqual compares two hostnames case-insensitively. Subdomains are not
// considered equal to their parent domain.
func HostsEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// PathExtension returns the lowercased file extension of the URL path
// without the leading dot, or "" when the path has none.
func PathExtension(u *url.URL) string {
	ext := path.Ext(u.Path)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ExtractHostname returns the lowercased hostname of a URL string.
func ExtractHostname(rawURL string) (string, error) {
	parsedURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", common.WrapErrorf(err, "could not parse URL '%s'", rawURL)
	}
	hostname := parsedURL.Hostname()
	if hostname == "" {
		return "", fmt.Errorf("URL has no hostname component: %s", rawURL)
	}
	return strings.ToLower(hostname), nil
}

// SanitizeFilename creates a safe filename string from a URL or any input string.
// It removes the protocol, replaces unsafe characters with underscores, and cleans up underscores.
func SanitizeFilename(input string) string {
	name := input
	if i := strings.Index(name, "://"); i != -1 {
		name = name[i+3:]
	}

	name = unsafeFilenameCharsRegex.ReplaceAllString(name, "_")
	name = multipleUnderscoresRegex.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if name == "" {
		return "sanitized_empty_input"
	}

	return name
}
