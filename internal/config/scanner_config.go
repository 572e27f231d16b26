package config

import "time"

// ScannerConfig bounds the end-to-end scan pipeline.
type ScannerConfig struct {
	// ScanTimeoutSecs is the whole-scan deadline. Its expiry is the only
	// timeout that fails a scan.
	ScanTimeoutSecs int `json:"scan_timeout_secs,omitempty" yaml:"scan_timeout_secs,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultScannerConfig creates default scanner configuration
func NewDefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		ScanTimeoutSecs: DefaultScanTimeoutSecs,
	}
}

// ScanTimeout returns the whole-scan deadline.
func (c ScannerConfig) ScanTimeout() time.Duration {
	return time.Duration(c.ScanTimeoutSecs) * time.Second
}
