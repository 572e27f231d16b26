package config

// AnalyticsConfig controls the write-only scan analytics sink.
type AnalyticsConfig struct {
	Enabled          bool   `json:"enabled" yaml:"enabled"`
	OutputDir        string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	CompressionCodec string `json:"compression_codec,omitempty" yaml:"compression_codec,omitempty" validate:"omitempty,oneof=zstd gzip snappy none"`
}

// NewDefaultAnalyticsConfig creates default analytics configuration
func NewDefaultAnalyticsConfig() AnalyticsConfig {
	return AnalyticsConfig{
		Enabled:          DefaultAnalyticsEnabled,
		OutputDir:        DefaultAnalyticsOutputDir,
		CompressionCodec: DefaultAnalyticsCompressionCodec,
	}
}
