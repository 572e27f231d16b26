package config

import "time"

// ResourceLimiterConfig holds configuration for resource monitoring while a
// scan is running. Browser-driven scans are memory heavy; the limiter warns
// and nudges the runtime before the process is at risk.
type ResourceLimiterConfig struct {
	Enabled            bool    `json:"enabled" yaml:"enabled"`
	MaxMemoryMB        int64   `json:"max_memory_mb,omitempty" yaml:"max_memory_mb,omitempty" validate:"omitempty,min=100"`
	CheckIntervalSecs  int     `json:"check_interval_secs,omitempty" yaml:"check_interval_secs,omitempty" validate:"omitempty,min=1"`
	SystemMemThreshold float64 `json:"system_mem_threshold,omitempty" yaml:"system_mem_threshold,omitempty" validate:"omitempty,min=0.1,max=1.0"`
}

// NewDefaultResourceLimiterConfig creates default resource limiter configuration
func NewDefaultResourceLimiterConfig() ResourceLimiterConfig {
	return ResourceLimiterConfig{
		Enabled:            DefaultResourceLimiterEnabled,
		MaxMemoryMB:        DefaultResourceLimiterMaxMemoryMB,
		CheckIntervalSecs:  DefaultResourceLimiterCheckIntervalSecs,
		SystemMemThreshold: 0.85,
	}
}

// CheckInterval returns the sampling interval.
func (c ResourceLimiterConfig) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalSecs) * time.Second
}
