package crawler

import (
	"github.com/aleister1102/sitecheck/internal/browser"
	"github.com/aleister1102/sitecheck/internal/common"
	"github.com/aleister1102/sitecheck/internal/config"
	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/rs/zerolog"
)

// CrawlerBuilder builds Crawler instances with fluent interface
type CrawlerBuilder struct {
	config         config.CrawlerConfig
	logger         zerolog.Logger
	browserManager *browser.Manager
	progressFn     func(models.ProgressEvent)
}

// NewCrawlerBuilder creates a new CrawlerBuilder with default configuration
func NewCrawlerBuilder(logger zerolog.Logger) *CrawlerBuilder {
	return &CrawlerBuilder{
		config: config.NewDefaultCrawlerConfig(),
		logger: logger,
	}
}

// WithConfig sets the crawler configuration
func (cb *CrawlerBuilder) WithConfig(cfg config.CrawlerConfig) *CrawlerBuilder {
	cb.config = cfg
	return cb
}

// WithBrowserManager sets the browser manager used for page loads
func (cb *CrawlerBuilder) WithBrowserManager(bm *browser.Manager) *CrawlerBuilder {
	cb.browserManager = bm
	return cb
}

// WithProgressCallback sets the callback invoked with crawl progress events
func (cb *CrawlerBuilder) WithProgressCallback(fn func(models.ProgressEvent)) *CrawlerBuilder {
	cb.progressFn = fn
	return cb
}

// Build creates and returns a new Crawler
func (cb *CrawlerBuilder) Build() (*Crawler, error) {
	if cb.browserManager == nil {
		return nil, common.NewError("crawler requires a browser manager")
	}
	if cb.config.MaxPages <= 0 {
		cb.config.MaxPages = config.DefaultCrawlerMaxPages
	}
	if cb.config.MaxConcurrency <= 0 {
		cb.config.MaxConcurrency = config.DefaultCrawlerMaxConcurrency
	}

	scopedLogger := cb.logger.With().Str("component", "Crawler").Logger()
	return &Crawler{
		config:         cb.config,
		logger:         scopedLogger,
		browserManager: cb.browserManager,
		extractor:      NewLinkExtractor(cb.logger),
		progressFn:     cb.progressFn,
	}, nil
}
