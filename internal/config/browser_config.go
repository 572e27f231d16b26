package config

// BrowserConfig controls the headless browser instance shared by a scan.
type BrowserConfig struct {
	Headless bool `json:"headless" yaml:"headless"`
	// ChromePath points at a browser binary. Empty lets the launcher
	// resolve one from the environment.
	ChromePath string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`
	UserAgent  string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

// NewDefaultBrowserConfig creates default browser configuration
func NewDefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:  DefaultBrowserHeadless,
		UserAgent: DefaultBrowserUserAgent,
	}
}
