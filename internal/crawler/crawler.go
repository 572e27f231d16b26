package crawler

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/aleister1102/sitecheck/internal/browser"
	"github.com/aleister1102/sitecheck/internal/common"
	"github.com/aleister1102/sitecheck/internal/config"
	"github.com/aleister1102/sitecheck/internal/models"
	"github.com/aleister1102/sitecheck/internal/urlhandler"

	"github.com/rs/zerolog"
)

// Crawler discovers same-origin pages reachable from a seed URL by following
// anchors breadth-first, bounded by MaxPages and MaxConcurrency.
type Crawler struct {
	config         config.CrawlerConfig
	logger         zerolog.Logger
	browserManager *browser.Manager
	extractor      *LinkExtractor
	progressFn     func(models.ProgressEvent)
}

// pageLoadResult carries the outcome of one page load back to the wave loop.
type pageLoadResult struct {
	target   string
	finalURL string
	record   models.PageRecord
	links    []string
	err      error
}

// Crawl walks the site starting at seedURL and returns the discovered pages
// in discovery order. Individual load failures are swallowed and logged; the
// only failing case is the seed page itself not loading.
func (c *Crawler) Crawl(ctx context.Context, seedURL string) ([]models.PageRecord, error) {
	normalizedSeed, err := urlhandler.NormalizeURL(seedURL)
	if err != nil {
		return nil, common.WrapError(err, "invalid seed URL")
	}
	seedHost, err := urlhandler.ExtractHostname(normalizedSeed)
	if err != nil {
		return nil, common.WrapError(err, "seed URL has no hostname")
	}

	c.logger.Info().
		Str("seed", normalizedSeed).
		Int("max_pages", c.config.MaxPages).
		Int("max_concurrency", c.config.MaxConcurrency).
		Msg("Starting crawl")

	visited := map[string]struct{}{normalizedSeed: {}}
	recorded := make(map[string]struct{})
	frontier := []string{normalizedSeed}
	var pages []models.PageRecord
	seedLoaded := false

	for len(frontier) > 0 && len(pages) < c.config.MaxPages {
		if ctx.Err() != nil {
			break
		}

		wave := frontier
		if len(wave) > c.config.MaxConcurrency {
			wave = wave[:c.config.MaxConcurrency]
		}
		frontier = frontier[len(wave):]

		results := c.loadWave(ctx, wave, seedHost)

		for _, result := range results {
			if result.err != nil {
				c.logger.Warn().Err(result.err).Str("url", result.target).Msg("Page load failed, dropping URL")
				if result.target == normalizedSeed && !seedLoaded {
					return nil, common.WrapErrorf(result.err, "seed page could not be loaded: %s", normalizedSeed)
				}
				continue
			}
			if result.target == normalizedSeed {
				seedLoaded = true
			}

			// Pages are keyed by their normalized final URL so a redirect
			// chain lands in the output exactly once.
			if _, dup := recorded[result.finalURL]; dup {
				continue
			}
			if len(pages) >= c.config.MaxPages {
				break
			}
			recorded[result.finalURL] = struct{}{}
			visited[result.finalURL] = struct{}{}
			pages = append(pages, result.record)

			c.publishProgress(len(pages))

			for _, link := range result.links {
				if _, seen := visited[link]; seen {
					continue
				}
				visited[link] = struct{}{}
				frontier = append(frontier, link)
			}
		}
	}

	if c.progressFn != nil {
		c.progressFn(models.ProgressEvent{
			Phase:    models.PhaseCrawling,
			Message:  fmt.Sprintf("Found %d page(s)", len(pages)),
			Progress: 100,
		})
	}

	c.logger.Info().Int("pages", len(pages)).Msg("Crawl finished")
	return pages, nil
}

// loadWave loads up to MaxConcurrency pages in parallel and returns their
// results in wave order.
func (c *Crawler) loadWave(ctx context.Context, wave []string, seedHost string) []pageLoadResult {
	results := make([]pageLoadResult, len(wave))
	var wg sync.WaitGroup

	for i, target := range wave {
		wg.Add(1)
		go func(slot int, pageURL string) {
			defer wg.Done()
			results[slot] = c.loadPage(ctx, pageURL, seedHost)
		}(i, target)
	}

	wg.Wait()
	return results
}

// loadPage drives the browser through one page: navigate, wait for load,
// capture title and final URL, snapshot the HTML, and extract followable
// links. The whole handler runs under the page timeout budget.
func (c *Crawler) loadPage(ctx context.Context, target, seedHost string) pageLoadResult {
	handlerCtx, cancel := context.WithTimeout(ctx, c.config.PageTimeout())
	defer cancel()

	page, err := c.browserManager.NewPage(handlerCtx)
	if err != nil {
		return pageLoadResult{target: target, err: common.WrapError(err, "failed to open page")}
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			c.logger.Debug().Err(closeErr).Str("url", target).Msg("Failed to close crawl page")
		}
	}()

	start := time.Now()
	navPage := page.Timeout(c.config.NavigationTimeout())
	if err := navPage.Navigate(target); err != nil {
		return pageLoadResult{target: target, err: common.WrapErrorf(err, "navigation failed for %s", target)}
	}
	if err := navPage.WaitLoad(); err != nil {
		return pageLoadResult{target: target, err: common.WrapErrorf(err, "page load timed out for %s", target)}
	}
	loadTime := time.Since(start).Milliseconds()

	// Let client-side rendering settle before snapshotting; best effort.
	_ = page.WaitDOMStable(300*time.Millisecond, 0.1)

	info, err := page.Info()
	if err != nil {
		return pageLoadResult{target: target, err: common.WrapError(err, "failed to read page info")}
	}

	finalURL, err := urlhandler.NormalizeURL(info.URL)
	if err != nil {
		finalURL = target
	}
	parsedFinal, err := url.Parse(finalURL)
	if err != nil {
		return pageLoadResult{target: target, err: common.WrapError(err, "final URL is unparsable")}
	}

	html, err := page.HTML()
	if err != nil {
		return pageLoadResult{target: target, err: common.WrapError(err, "failed to snapshot HTML")}
	}

	links, err := c.extractor.ExtractFollowableLinks(html, parsedFinal, seedHost)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", finalURL).Msg("Link extraction failed")
	}

	return pageLoadResult{
		target:   target,
		finalURL: finalURL,
		record: models.PageRecord{
			URL:        finalURL,
			Title:      info.Title,
			LoadTimeMS: loadTime,
		},
		links: links,
	}
}

// publishProgress reports crawl progress as a share of the page budget,
// capped below 100 until the crawl actually finishes.
func (c *Crawler) publishProgress(found int) {
	if c.progressFn == nil {
		return
	}
	c.progressFn(models.ProgressEvent{
		Phase:    models.PhaseCrawling,
		Message:  fmt.Sprintf("Found %d page(s)", found),
		Progress: CrawlProgressPercent(found, c.config.MaxPages),
	})
}

// CrawlProgressPercent maps the number of found pages onto the crawl phase's
// 0-90 progress band.
func CrawlProgressPercent(found, maxPages int) int {
	if maxPages <= 0 {
		return 90
	}
	percent := 90 * found / maxPages
	if percent > 90 {
		percent = 90
	}
	return percent
}
