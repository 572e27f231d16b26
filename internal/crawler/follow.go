package crawler

import (
	"net/url"
	"strings"

	"github.com/aleister1102/sitecheck/internal/urlhandler"
)

// excludedExtensions lists download and media extensions that are never
// crawled as pages.
var excludedExtensions = map[string]struct{}{
	"pdf": {}, "zip": {}, "tar": {}, "gz": {}, "rar": {}, "7z": {},
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "svg": {}, "webp": {}, "ico": {},
	"mp3": {}, "mp4": {}, "wav": {}, "avi": {}, "mov": {},
	"doc": {}, "docx": {}, "xls": {}, "xlsx": {}, "ppt": {}, "pptx": {},
	"exe": {}, "dmg": {}, "apk": {},
}

// excludedSchemes lists URL schemes that never lead to a crawlable page.
var excludedSchemes = map[string]struct{}{
	"mailto": {}, "tel": {}, "javascript": {}, "data": {}, "blob": {}, "file": {},
}

// FollowDecision explains why a candidate URL was or was not followed.
type FollowDecision struct {
	Follow     bool
	Normalized string
	Reason     string
}

// ShouldFollow applies the crawl follow predicate to a raw href found on a
// page. The candidate must resolve absolutely against the page URL, use http
// or https, sit on the seed host exactly (subdomains are out of scope), and
// not point at a download or media file. Visited-set checks happen on the
// normalized form returned in the decision.
func ShouldFollow(href string, pageURL *url.URL, seedHost string) FollowDecision {
	trimmed := strings.TrimSpace(href)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return FollowDecision{Reason: "empty or fragment-only href"}
	}

	if scheme := schemeOf(trimmed); scheme != "" {
		if _, excluded := excludedSchemes[scheme]; excluded {
			return FollowDecision{Reason: "excluded scheme: " + scheme}
		}
	}

	resolved, err := pageURL.Parse(trimmed)
	if err != nil {
		return FollowDecision{Reason: "unresolvable href"}
	}
	if !resolved.IsAbs() || resolved.Host == "" {
		return FollowDecision{Reason: "not absolute after resolution"}
	}

	scheme := strings.ToLower(resolved.Scheme)
	if scheme != "http" && scheme != "https" {
		return FollowDecision{Reason: "scheme is not http or https"}
	}

	if !urlhandler.HostsEqual(resolved.Hostname(), seedHost) {
		return FollowDecision{Reason: "host differs from seed"}
	}

	if ext := urlhandler.PathExtension(resolved); ext != "" {
		if _, excluded := excludedExtensions[ext]; excluded {
			return FollowDecision{Reason: "excluded extension: " + ext}
		}
	}

	normalized, err := urlhandler.NormalizeURL(resolved.String())
	if err != nil {
		return FollowDecision{Reason: "normalization failed"}
	}

	return FollowDecision{Follow: true, Normalized: normalized}
}

// schemeOf extracts the scheme of a raw href without a full parse, so that
// schemes like "javascript:" are caught even when the rest of the value is
// not a valid URL.
func schemeOf(href string) string {
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
