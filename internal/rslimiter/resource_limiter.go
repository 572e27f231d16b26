package rslimiter

import (
	"runtime"
	"sync"
	"time"

	"github.com/aleister1102/sitecheck/internal/config"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"
)

// MemorySample is one resource check: process heap usage plus system memory
// pressure.
type MemorySample struct {
	ProcessAllocMB   int64
	SystemUsedRatio  float64
	OverProcessLimit bool
	OverSystemLimit  bool
}

// ResourceLimiter watches memory while a scan runs. Browser-driven scans are
// memory heavy; the limiter warns and forces a GC when usage crosses the
// configured watermarks. It never aborts the scan.
type ResourceLimiter struct {
	config config.ResourceLimiterConfig
	logger zerolog.Logger

	mu        sync.Mutex
	isRunning bool
	stopCh    chan struct{}
	done      chan struct{}
}

// NewResourceLimiter creates a new resource limiter
func NewResourceLimiter(cfg config.ResourceLimiterConfig, logger zerolog.Logger) *ResourceLimiter {
	return &ResourceLimiter{
		config: cfg,
		logger: logger.With().Str("component", "ResourceLimiter").Logger(),
	}
}

// Start begins the sampling loop. A no-op when disabled or already running.
func (rl *ResourceLimiter) Start() {
	if !rl.config.Enabled {
		return
	}

	rl.mu.Lock()
	if rl.isRunning {
		rl.mu.Unlock()
		return
	}
	rl.isRunning = true
	rl.stopCh = make(chan struct{})
	rl.done = make(chan struct{})
	rl.mu.Unlock()

	go rl.monitorLoop(rl.stopCh, rl.done)

	rl.logger.Info().
		Int64("max_memory_mb", rl.config.MaxMemoryMB).
		Dur("check_interval", rl.config.CheckInterval()).
		Float64("system_mem_threshold", rl.config.SystemMemThreshold).
		Msg("Resource limiter started")
}

// Stop halts the sampling loop and waits for it to exit. Safe to call twice.
func (rl *ResourceLimiter) Stop() {
	rl.mu.Lock()
	if !rl.isRunning {
		rl.mu.Unlock()
		return
	}
	rl.isRunning = false
	stopCh, done := rl.stopCh, rl.done
	rl.mu.Unlock()

	close(stopCh)
	<-done
	rl.logger.Info().Msg("Resource limiter stopped")
}

// IsRunning reports whether the sampling loop is active.
func (rl *ResourceLimiter) IsRunning() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.isRunning
}

func (rl *ResourceLimiter) monitorLoop(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(rl.config.CheckInterval())
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			rl.checkOnce()
		}
	}
}

// checkOnce samples memory and reacts to watermark violations with a warning
// and a forced GC.
func (rl *ResourceLimiter) checkOnce() {
	sample := rl.Sample()

	if sample.OverProcessLimit {
		rl.logger.Warn().
			Int64("alloc_mb", sample.ProcessAllocMB).
			Int64("limit_mb", rl.config.MaxMemoryMB).
			Msg("Process memory over limit, forcing GC")
		runtime.GC()
		return
	}

	if sample.OverSystemLimit {
		rl.logger.Warn().
			Float64("system_used_ratio", sample.SystemUsedRatio).
			Float64("threshold", rl.config.SystemMemThreshold).
			Msg("System memory pressure high, forcing GC")
		runtime.GC()
	}
}

// Sample reads current process and system memory usage and evaluates it
// against the configured watermarks.
func (rl *ResourceLimiter) Sample() MemorySample {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	sample := MemorySample{
		ProcessAllocMB: int64(stats.Alloc / 1024 / 1024),
	}
	sample.OverProcessLimit = rl.config.MaxMemoryMB > 0 && sample.ProcessAllocMB > rl.config.MaxMemoryMB

	if vm, err := mem.VirtualMemory(); err == nil {
		sample.SystemUsedRatio = vm.UsedPercent / 100
		sample.OverSystemLimit = rl.config.SystemMemThreshold > 0 &&
			sample.SystemUsedRatio > rl.config.SystemMemThreshold
	} else {
		rl.logger.Debug().Err(err).Msg("Failed to read system memory stats")
	}

	return sample
}
