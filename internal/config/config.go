package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/sitecheck/internal/common"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// GlobalConfig is the root configuration for the scanner, composed of
// per-component sections. Every section has usable defaults; a config file
// only needs to override what differs.
type GlobalConfig struct {
	AnalyticsConfig       AnalyticsConfig       `json:"analytics_config,omitempty" yaml:"analytics_config,omitempty"`
	BrowserConfig         BrowserConfig         `json:"browser_config,omitempty" yaml:"browser_config,omitempty"`
	CrawlerConfig         CrawlerConfig         `json:"crawler_config,omitempty" yaml:"crawler_config,omitempty"`
	LogConfig             LogConfig             `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	PromptConfig          PromptConfig          `json:"prompt_config,omitempty" yaml:"prompt_config,omitempty"`
	ResourceLimiterConfig ResourceLimiterConfig `json:"resource_limiter_config,omitempty" yaml:"resource_limiter_config,omitempty"`
	ScannerConfig         ScannerConfig         `json:"scanner_config,omitempty" yaml:"scanner_config,omitempty"`
	TesterConfig          TesterConfig          `json:"tester_config,omitempty" yaml:"tester_config,omitempty"`

	// AdminKey is populated from the environment for the HTTP surface.
	// The scan core never reads it.
	AdminKey string `json:"-" yaml:"-"`
}

// NewDefaultGlobalConfig returns a GlobalConfig with every section defaulted.
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		AnalyticsConfig:       NewDefaultAnalyticsConfig(),
		BrowserConfig:         NewDefaultBrowserConfig(),
		CrawlerConfig:         NewDefaultCrawlerConfig(),
		LogConfig:             NewDefaultLogConfig(),
		PromptConfig:          NewDefaultPromptConfig(),
		ResourceLimiterConfig: NewDefaultResourceLimiterConfig(),
		ScannerConfig:         NewDefaultScannerConfig(),
		TesterConfig:          NewDefaultTesterConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath, supports both JSON
// and YAML formats, and finishes by applying environment overrides. A missing
// file is not an error when no explicit path was given.
func LoadGlobalConfig(providedPath string, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	fileManager := common.NewFileManager(logger)
	if !fileManager.FileExists(filePath) {
		return nil, common.NewValidationError("config_file", filePath, "config file does not exist")
	}

	data, err := loadConfigFileContent(fileManager, filePath)
	if err != nil {
		return nil, common.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, common.WrapError(err, "failed to parse config content")
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides fills credential fields from the process environment.
// Values already present from the config file keep precedence for the API
// key so that explicit configuration wins.
func applyEnvOverrides(cfg *GlobalConfig) {
	if cfg.PromptConfig.APIKey == "" {
		cfg.PromptConfig.APIKey = os.Getenv(EnvLLMAPIKey)
	}
	cfg.AdminKey = os.Getenv(EnvAdminKey)
}

// loadConfigFileContent reads the config file using FileManager
func loadConfigFileContent(fileManager *common.FileManager, filePath string) ([]byte, error) {
	opts := common.DefaultFileReadOptions()
	opts.MaxSize = 10 * 1024 * 1024 // 10MB max config file size

	return fileManager.ReadFile(filePath, opts)
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if isYAMLFile(ext) {
		return parseYAMLConfig(data, filePath, cfg)
	}
	return parseJSONConfig(data, filePath, cfg)
}

// isYAMLFile checks if the file extension indicates a YAML file
func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

// parseYAMLConfig parses YAML configuration
func parseYAMLConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
	}
	return nil
}

// parseJSONConfig parses JSON configuration
func parseJSONConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}
