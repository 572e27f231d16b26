package config

import "time"

// TesterConfig bounds the per-page defect testers.
type TesterConfig struct {
	TesterTimeoutSecs    int `json:"tester_timeout_secs,omitempty" yaml:"tester_timeout_secs,omitempty" validate:"omitempty,min=1"`
	LinkCheckTimeoutSecs int `json:"link_check_timeout_secs,omitempty" yaml:"link_check_timeout_secs,omitempty" validate:"omitempty,min=1"`
	MaxLinksPerPage      int `json:"max_links_per_page,omitempty" yaml:"max_links_per_page,omitempty" validate:"omitempty,min=1"`
	MaxA11yViolations    int `json:"max_a11y_violations,omitempty" yaml:"max_a11y_violations,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultTesterConfig creates default tester configuration
func NewDefaultTesterConfig() TesterConfig {
	return TesterConfig{
		TesterTimeoutSecs:    DefaultTesterTimeoutSecs,
		LinkCheckTimeoutSecs: DefaultLinkCheckTimeoutSecs,
		MaxLinksPerPage:      DefaultMaxLinksPerPage,
		MaxA11yViolations:    DefaultMaxA11yViolationsPerPage,
	}
}

// TesterTimeout returns the isolation budget for a single tester run.
func (c TesterConfig) TesterTimeout() time.Duration {
	return time.Duration(c.TesterTimeoutSecs) * time.Second
}

// LinkCheckTimeout returns the budget for each HEAD or GET link check.
func (c TesterConfig) LinkCheckTimeout() time.Duration {
	return time.Duration(c.LinkCheckTimeoutSecs) * time.Second
}
