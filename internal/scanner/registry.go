package scanner

import (
	"context"
	"sync"

	"github.com/aleister1102/sitecheck/internal/common"
	"github.com/aleister1102/sitecheck/internal/config"
	"github.com/aleister1102/sitecheck/internal/models"
	"github.com/aleister1102/sitecheck/internal/progress"
	"github.com/aleister1102/sitecheck/internal/urlhandler"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ScanExecutor runs one scan pipeline. Scanner implements it; tests swap in
// fakes.
type ScanExecutor interface {
	Run(ctx context.Context, scanID, seedURL string, publish func(models.ProgressEvent)) (*models.Report, error)
}

// ScanStatusResult is the queryable terminal (or in-flight) state of a scan.
type ScanStatusResult struct {
	Status models.ScanState `json:"status"`
	Report *models.Report   `json:"report,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// scanEntry is the registry's record of one scan. Entries are added and
// transitioned, never removed.
type scanEntry struct {
	id      string
	seedURL string
	state   models.ScanState
	report  *models.Report
	errMsg  string
	bus     *progress.Bus
	cancel  context.CancelFunc
}

// Registry is the process-wide scan service: it enforces the single-running-
// scan rule, owns every scan's progress bus, and keeps terminal results
// queryable for the process lifetime.
type Registry struct {
	config   *config.GlobalConfig
	logger   zerolog.Logger
	executor ScanExecutor

	mu        sync.Mutex
	scans     map[string]*scanEntry
	runningID string
}

// NewRegistry creates a new scan registry
func NewRegistry(cfg *config.GlobalConfig, executor ScanExecutor, logger zerolog.Logger) *Registry {
	return &Registry{
		config:   cfg,
		logger:   logger.With().Str("component", "ScanRegistry").Logger(),
		executor: executor,
		scans:    make(map[string]*scanEntry),
	}
}

// StartScan validates the seed URL, enforces the one-running-scan rule, and
// spawns the pipeline in the background under the whole-scan deadline.
// Returns the new scan's id.
func (r *Registry) StartScan(seedURL string) (string, error) {
	if err := urlhandler.ValidateScanURL(seedURL); err != nil {
		return "", err
	}

	r.mu.Lock()
	if r.runningID != "" {
		running := r.runningID
		r.mu.Unlock()
		return "", common.NewConflictError("scan", "another scan is already running: "+running)
	}

	scanID := uuid.NewString()
	ctx, cancel := context.WithTimeout(context.Background(), r.config.ScannerConfig.ScanTimeout())
	entry := &scanEntry{
		id:      scanID,
		seedURL: seedURL,
		state:   models.ScanStateRunning,
		bus:     progress.NewBus(r.logger),
		cancel:  cancel,
	}
	r.scans[scanID] = entry
	r.runningID = scanID
	r.mu.Unlock()

	r.logger.Info().Str("scan_id", scanID).Str("seed_url", seedURL).Msg("Scan started")
	go r.runScan(ctx, entry)
	return scanID, nil
}

// runScan executes the pipeline and records the terminal state. Transitions
// are one-way; the entry never leaves the registry.
func (r *Registry) runScan(ctx context.Context, entry *scanEntry) {
	defer entry.cancel()

	report, err := r.executor.Run(ctx, entry.id, entry.seedURL, entry.bus.Publish)

	r.mu.Lock()
	if err != nil {
		entry.state = models.ScanStateError
		entry.errMsg = err.Error()
	} else {
		entry.state = models.ScanStateComplete
		entry.report = report
	}
	if r.runningID == entry.id {
		r.runningID = ""
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.Error().Err(err).Str("scan_id", entry.id).Msg("Scan failed")
		return
	}
	r.logger.Info().
		Str("scan_id", entry.id).
		Int("defects", report.TotalDefects()).
		Msg("Scan completed")
}

// SubscribeProgress attaches a progress callback to a scan and returns an
// idempotent detach function. Late subscribers receive no replay; terminal
// state is queryable through GetReport.
func (r *Registry) SubscribeProgress(scanID string, fn func(models.ProgressEvent)) (func(), error) {
	r.mu.Lock()
	entry, found := r.scans[scanID]
	r.mu.Unlock()

	if !found {
		return nil, common.NewError("unknown scan id: %s", scanID)
	}
	return entry.bus.Subscribe(fn), nil
}

// GetReport returns the scan's status, with the report when complete and a
// human-readable message when failed.
func (r *Registry) GetReport(scanID string) (ScanStatusResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, found := r.scans[scanID]
	if !found {
		return ScanStatusResult{}, common.NewError("unknown scan id: %s", scanID)
	}
	return ScanStatusResult{
		Status: entry.state,
		Report: entry.report,
		Error:  entry.errMsg,
	}, nil
}

// IsScanRunning reports whether any scan is currently in the running state.
func (r *Registry) IsScanRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runningID != ""
}

// Reset cancels any running scan and forgets all entries. Used at process
// shutdown and in tests; a live registry otherwise never removes entries.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.scans {
		entry.cancel()
	}
	r.scans = make(map[string]*scanEntry)
	r.runningID = ""
}
