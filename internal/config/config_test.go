package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultGlobalConfig(t *testing.T) {
	cfg := NewDefaultGlobalConfig()

	assert.Equal(t, DefaultCrawlerMaxPages, cfg.CrawlerConfig.MaxPages)
	assert.Equal(t, DefaultCrawlerMaxConcurrency, cfg.CrawlerConfig.MaxConcurrency)
	assert.Equal(t, DefaultCrawlerNavigationTimeoutSecs, cfg.CrawlerConfig.NavigationTimeoutSecs)
	assert.Equal(t, DefaultCrawlerPageTimeoutSecs, cfg.CrawlerConfig.PageTimeoutSecs)
	assert.Equal(t, DefaultScanTimeoutSecs, cfg.ScannerConfig.ScanTimeoutSecs)
	assert.Equal(t, DefaultTesterTimeoutSecs, cfg.TesterConfig.TesterTimeoutSecs)
	assert.Equal(t, DefaultLinkCheckTimeoutSecs, cfg.TesterConfig.LinkCheckTimeoutSecs)
	assert.Equal(t, DefaultMaxLinksPerPage, cfg.TesterConfig.MaxLinksPerPage)
	assert.Equal(t, DefaultMaxA11yViolationsPerPage, cfg.TesterConfig.MaxA11yViolations)
	assert.Equal(t, DefaultLogLevel, cfg.LogConfig.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.LogConfig.LogFormat)
	assert.True(t, cfg.BrowserConfig.Headless)
	assert.True(t, cfg.AnalyticsConfig.Enabled)
	assert.Empty(t, cfg.PromptConfig.APIKey)
}

func TestLoadGlobalConfig_YAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
crawler_config:
  max_pages: 5
  max_concurrency: 2
log_config:
  log_level: debug
prompt_config:
  model: test-model
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := LoadGlobalConfig(path, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.CrawlerConfig.MaxPages)
	assert.Equal(t, 2, cfg.CrawlerConfig.MaxConcurrency)
	assert.Equal(t, "debug", cfg.LogConfig.LogLevel)
	assert.Equal(t, "test-model", cfg.PromptConfig.Model)
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultScanTimeoutSecs, cfg.ScannerConfig.ScanTimeoutSecs)
}

func TestLoadGlobalConfig_EnvOverrides(t *testing.T) {
	t.Setenv(EnvLLMAPIKey, "sk-test-123")
	t.Setenv(EnvAdminKey, "admin-456")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	cfg, err := LoadGlobalConfig(path, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "sk-test-123", cfg.PromptConfig.APIKey)
	assert.Equal(t, "admin-456", cfg.AdminKey)
}

func TestLoadGlobalConfig_FileAPIKeyWinsOverEnv(t *testing.T) {
	t.Setenv(EnvLLMAPIKey, "sk-env")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("prompt_config:\n  api_key: sk-file\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := LoadGlobalConfig(path, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "sk-file", cfg.PromptConfig.APIKey)
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crawler_config: ["), 0644))

	_, err := LoadGlobalConfig(path, zerolog.Nop())
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *GlobalConfig)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(cfg *GlobalConfig) {},
			wantErr: false,
		},
		{
			name:    "bad log level",
			mutate:  func(cfg *GlobalConfig) { cfg.LogConfig.LogLevel = "loud" },
			wantErr: true,
		},
		{
			name:    "bad log format",
			mutate:  func(cfg *GlobalConfig) { cfg.LogConfig.LogFormat = "xml" },
			wantErr: true,
		},
		{
			name:    "negative crawler pages",
			mutate:  func(cfg *GlobalConfig) { cfg.CrawlerConfig.MaxPages = -1 },
			wantErr: true,
		},
		{
			name:    "unknown compression codec",
			mutate:  func(cfg *GlobalConfig) { cfg.AnalyticsConfig.CompressionCodec = "lzma" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultGlobalConfig()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
