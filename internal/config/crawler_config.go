package config

import "time"

// CrawlerConfig bounds page discovery.
type CrawlerConfig struct {
	MaxPages              int `json:"max_pages,omitempty" yaml:"max_pages,omitempty" validate:"omitempty,min=1"`
	MaxConcurrency        int `json:"max_concurrency,omitempty" yaml:"max_concurrency,omitempty" validate:"omitempty,min=1"`
	NavigationTimeoutSecs int `json:"navigation_timeout_secs,omitempty" yaml:"navigation_timeout_secs,omitempty" validate:"omitempty,min=1"`
	PageTimeoutSecs       int `json:"page_timeout_secs,omitempty" yaml:"page_timeout_secs,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultCrawlerConfig creates a CrawlerConfig with default values.
func NewDefaultCrawlerConfig() CrawlerConfig {
	return CrawlerConfig{
		MaxPages:              DefaultCrawlerMaxPages,
		MaxConcurrency:        DefaultCrawlerMaxConcurrency,
		NavigationTimeoutSecs: DefaultCrawlerNavigationTimeoutSecs,
		PageTimeoutSecs:       DefaultCrawlerPageTimeoutSecs,
	}
}

// NavigationTimeout returns the per-page navigation budget.
func (c CrawlerConfig) NavigationTimeout() time.Duration {
	return time.Duration(c.NavigationTimeoutSecs) * time.Second
}

// PageTimeout returns the whole-handler budget for one page load.
func (c CrawlerConfig) PageTimeout() time.Duration {
	return time.Duration(c.PageTimeoutSecs) * time.Second
}
