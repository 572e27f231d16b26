package config

// Environment variables recognized by the application.
const (
	// EnvConfigPath points at an explicit configuration file.
	EnvConfigPath = "SITECHECK_CONFIG_PATH"
	// EnvLLMAPIKey carries the credential for the external prompt tier.
	// When absent, remediation hints come from deterministic templates.
	EnvLLMAPIKey = "SITECHECK_LLM_API_KEY"
	// EnvAdminKey is read for the HTTP surface; the scan core ignores it.
	EnvAdminKey = "SITECHECK_ADMIN_KEY"
)

const (
	// Scanner Defaults
	DefaultScanTimeoutSecs = 300

	// Crawler Defaults
	DefaultCrawlerMaxPages              = 20
	DefaultCrawlerMaxConcurrency        = 3
	DefaultCrawlerNavigationTimeoutSecs = 15
	DefaultCrawlerPageTimeoutSecs       = 30

	// Browser Defaults
	DefaultBrowserHeadless  = true
	DefaultBrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Tester Defaults
	DefaultTesterTimeoutSecs        = 30
	DefaultLinkCheckTimeoutSecs     = 8
	DefaultMaxLinksPerPage          = 50
	DefaultMaxA11yViolationsPerPage = 10

	// Prompt Defaults
	DefaultPromptModel              = "claude-3-5-haiku-latest"
	DefaultPromptMaxTokens          = 1024
	DefaultPromptRequestTimeoutSecs = 30
	DefaultPromptCacheFile          = "data/prompt_cache.json"

	// Analytics Defaults
	DefaultAnalyticsEnabled          = true
	DefaultAnalyticsOutputDir        = "data/analytics"
	DefaultAnalyticsCompressionCodec = "zstd"

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Resource Limiter Defaults
	DefaultResourceLimiterEnabled           = true
	DefaultResourceLimiterMaxMemoryMB       = 1024
	DefaultResourceLimiterCheckIntervalSecs = 5
)
