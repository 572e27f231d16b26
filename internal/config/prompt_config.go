package config

import "time"

// PromptConfig controls remediation-hint generation.
type PromptConfig struct {
	// APIKey enables the external LLM tier. Usually injected from the
	// environment; an empty key forces template hints.
	APIKey             string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model              string  `json:"model,omitempty" yaml:"model,omitempty"`
	MaxTokens          int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty" validate:"omitempty,min=1"`
	Temperature        float64 `json:"temperature,omitempty" yaml:"temperature,omitempty" validate:"omitempty,min=0,max=1"`
	RequestTimeoutSecs int     `json:"request_timeout_secs,omitempty" yaml:"request_timeout_secs,omitempty" validate:"omitempty,min=1"`
	CacheFilePath      string  `json:"cache_file_path,omitempty" yaml:"cache_file_path,omitempty"`
}

// NewDefaultPromptConfig creates default prompt configuration
func NewDefaultPromptConfig() PromptConfig {
	return PromptConfig{
		Model:              DefaultPromptModel,
		MaxTokens:          DefaultPromptMaxTokens,
		Temperature:        0.2,
		RequestTimeoutSecs: DefaultPromptRequestTimeoutSecs,
		CacheFilePath:      DefaultPromptCacheFile,
	}
}

// RequestTimeout returns the budget for one external LLM call.
func (c PromptConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}
