package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aleister1102/sitecheck/internal/common"
	"github.com/aleister1102/sitecheck/internal/config"
	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor scripts the pipeline for registry tests. Run blocks until
// release is closed, then publishes the scripted events and returns.
type fakeExecutor struct {
	release chan struct{}
	events  []models.ProgressEvent
	report  *models.Report
	err     error
	started chan string
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		release: make(chan struct{}),
		report:  &models.Report{SeedURL: "https://example.com", Summary: models.NewReportSummary()},
		started: make(chan string, 1),
	}
}

func (f *fakeExecutor) Run(ctx context.Context, scanID, seedURL string, publish func(models.ProgressEvent)) (*models.Report, error) {
	f.started <- scanID
	select {
	case <-f.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	for _, event := range f.events {
		publish(event)
	}
	return f.report, f.err
}

func newTestRegistry(executor ScanExecutor) *Registry {
	return NewRegistry(config.NewDefaultGlobalConfig(), executor, zerolog.Nop())
}

func waitForState(t *testing.T, registry *Registry, scanID string, state models.ScanState) ScanStatusResult {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		result, err := registry.GetReport(scanID)
		require.NoError(t, err)
		if result.Status == state {
			return result
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("scan %s never reached state %s", scanID, state)
	return ScanStatusResult{}
}

func TestRegistry_RejectsInvalidSeedURL(t *testing.T) {
	registry := newTestRegistry(newFakeExecutor())

	tests := []string{
		"",
		"not a url",
		"ftp://example.com",
		"/relative/path",
		"https://localhost",
		"https://example.c",
	}
	for _, seed := range tests {
		_, err := registry.StartScan(seed)
		require.Error(t, err, seed)
		var validationErr *common.ValidationError
		assert.True(t, errors.As(err, &validationErr), seed)
	}
}

func TestRegistry_RejectsConcurrentScan(t *testing.T) {
	executor := newFakeExecutor()
	registry := newTestRegistry(executor)

	scanID, err := registry.StartScan("https://example.com")
	require.NoError(t, err)
	<-executor.started

	_, err = registry.StartScan("https://other.example.com")
	require.Error(t, err)
	var conflictErr *common.ConflictError
	assert.True(t, errors.As(err, &conflictErr))

	close(executor.release)
	waitForState(t, registry, scanID, models.ScanStateComplete)

	// A finished scan frees the slot.
	second := newFakeExecutor()
	registry.executor = second
	nextID, err := registry.StartScan("https://example.com")
	require.NoError(t, err)
	assert.NotEqual(t, scanID, nextID)
	close(second.release)
	waitForState(t, registry, nextID, models.ScanStateComplete)
}

func TestRegistry_ScanIDsAreUUIDs(t *testing.T) {
	executor := newFakeExecutor()
	registry := newTestRegistry(executor)

	scanID, err := registry.StartScan("https://example.com")
	require.NoError(t, err)
	_, err = uuid.Parse(scanID)
	assert.NoError(t, err)

	close(executor.release)
	waitForState(t, registry, scanID, models.ScanStateComplete)
}

func TestRegistry_CompleteLifecycle(t *testing.T) {
	executor := newFakeExecutor()
	registry := newTestRegistry(executor)

	scanID, err := registry.StartScan("https://example.com")
	require.NoError(t, err)

	result, err := registry.GetReport(scanID)
	require.NoError(t, err)
	assert.Equal(t, models.ScanStateRunning, result.Status)
	assert.Nil(t, result.Report)

	close(executor.release)
	result = waitForState(t, registry, scanID, models.ScanStateComplete)
	require.NotNil(t, result.Report)
	assert.Equal(t, "https://example.com", result.Report.SeedURL)
	assert.Empty(t, result.Error)
}

func TestRegistry_ErrorLifecycle(t *testing.T) {
	executor := newFakeExecutor()
	executor.report = nil
	executor.err = errors.New("browser launch failed")
	registry := newTestRegistry(executor)

	scanID, err := registry.StartScan("https://example.com")
	require.NoError(t, err)
	close(executor.release)

	result := waitForState(t, registry, scanID, models.ScanStateError)
	assert.Nil(t, result.Report)
	assert.Contains(t, result.Error, "browser launch failed")
	assert.False(t, registry.IsScanRunning())
}

func TestRegistry_SubscribeProgressDeliversEvents(t *testing.T) {
	executor := newFakeExecutor()
	executor.events = []models.ProgressEvent{
		{Phase: models.PhaseCrawling, Message: "Starting page discovery...", Progress: 0},
		{Phase: models.PhaseComplete, Message: "Scan complete!", Progress: 100},
	}
	registry := newTestRegistry(executor)

	scanID, err := registry.StartScan("https://example.com")
	require.NoError(t, err)

	received := make(chan models.ProgressEvent, 8)
	unsubscribe, err := registry.SubscribeProgress(scanID, func(event models.ProgressEvent) {
		received <- event
	})
	require.NoError(t, err)
	defer unsubscribe()

	close(executor.release)
	waitForState(t, registry, scanID, models.ScanStateComplete)

	close(received)
	var events []models.ProgressEvent
	for event := range received {
		events = append(events, event)
	}
	require.Len(t, events, 2)
	assert.Equal(t, models.PhaseCrawling, events[0].Phase)
	assert.Equal(t, 100, events[1].Progress)

	// Detach is idempotent.
	unsubscribe()
	unsubscribe()
}

func TestRegistry_SubscribeUnknownScan(t *testing.T) {
	registry := newTestRegistry(newFakeExecutor())
	_, err := registry.SubscribeProgress("nope", func(models.ProgressEvent) {})
	assert.Error(t, err)

	_, err = registry.GetReport("nope")
	assert.Error(t, err)
}

func TestRegistry_Reset(t *testing.T) {
	executor := newFakeExecutor()
	registry := newTestRegistry(executor)

	scanID, err := registry.StartScan("https://example.com")
	require.NoError(t, err)
	<-executor.started

	registry.Reset()
	assert.False(t, registry.IsScanRunning())
	_, err = registry.GetReport(scanID)
	assert.Error(t, err)
}
