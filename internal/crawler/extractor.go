package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/aleister1102/sitecheck/internal/common"
)

// LinkExtractor pulls candidate crawl targets out of rendered page HTML.
type LinkExtractor struct {
	logger zerolog.Logger
}

// NewLinkExtractor creates a new link extractor.
func NewLinkExtractor(logger zerolog.Logger) *LinkExtractor {
	return &LinkExtractor{
		logger: logger.With().Str("component", "LinkExtractor").Logger(),
	}
}

// ExtractFollowableLinks parses the HTML snapshot of a page and returns the
// normalized URLs of every anchor that passes the follow predicate against
// the seed host. The result preserves document order and contains no
// duplicates.
func (le *LinkExtractor) ExtractFollowableLinks(html string, pageURL *url.URL, seedHost string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, common.WrapError(err, "failed to parse page HTML")
	}

	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists {
			return
		}

		decision := ShouldFollow(href, pageURL, seedHost)
		if !decision.Follow {
			return
		}
		if _, dup := seen[decision.Normalized]; dup {
			return
		}
		seen[decision.Normalized] = struct{}{}
		links = append(links, decision.Normalized)
	})

	le.logger.Debug().
		Str("page", pageURL.String()).
		Int("links", len(links)).
		Msg("Extracted followable links")
	return links, nil
}
