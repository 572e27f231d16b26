package tester

import (
	"context"
	"testing"
	"time"

	"github.com/aleister1102/sitecheck/internal/config"
	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// fakeTester scripts one tester outcome for driver tests.
type fakeTester struct {
	defectType models.DefectType
	defects    []models.Defect
	err        error
	panics     bool
	delay      time.Duration
}

func (f *fakeTester) Type() models.DefectType { return f.defectType }

func (f *fakeTester) Run(ctx context.Context, pageURL string) ([]models.Defect, error) {
	if f.panics {
		panic("scripted panic")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.defects, f.err
}

func newTestDriver(testers ...Tester) *PageDriver {
	cfg := config.NewDefaultTesterConfig()
	cfg.TesterTimeoutSecs = 1
	return &PageDriver{
		config:  cfg,
		logger:  zerolog.Nop(),
		testers: testers,
	}
}

func consoleDefect(title string) models.Defect {
	return models.Defect{
		Type:     models.DefectTypeConsoleError,
		Severity: models.SeverityWarning,
		Title:    title,
		Details:  title,
		Page:     "https://example.com",
	}
}

func TestPageDriver_CollectsAcrossTesters(t *testing.T) {
	driver := newTestDriver(
		&fakeTester{defectType: models.DefectTypeConsoleError, defects: []models.Defect{consoleDefect("a")}},
		&fakeTester{defectType: models.DefectTypeNetworkError, defects: []models.Defect{consoleDefect("b")}},
	)

	record := models.PageRecord{URL: "https://example.com"}
	driver.TestPage(context.Background(), &record)

	assert.Len(t, record.Defects, 2)
	assert.Equal(t, "a", record.Defects[0].Title)
	assert.Equal(t, "b", record.Defects[1].Title)
}

func TestPageDriver_FailedTesterContributesNothing(t *testing.T) {
	driver := newTestDriver(
		&fakeTester{defectType: models.DefectTypeConsoleError, err: assert.AnError},
		&fakeTester{defectType: models.DefectTypeNetworkError, defects: []models.Defect{consoleDefect("kept")}},
	)

	record := models.PageRecord{URL: "https://example.com"}
	driver.TestPage(context.Background(), &record)

	assert.Len(t, record.Defects, 1)
	assert.Equal(t, "kept", record.Defects[0].Title)
}

func TestPageDriver_PanickingTesterIsIsolated(t *testing.T) {
	driver := newTestDriver(
		&fakeTester{defectType: models.DefectTypeConsoleError, panics: true},
		&fakeTester{defectType: models.DefectTypeNetworkError, defects: []models.Defect{consoleDefect("survivor")}},
	)

	record := models.PageRecord{URL: "https://example.com"}
	driver.TestPage(context.Background(), &record)

	assert.Len(t, record.Defects, 1)
	assert.Equal(t, "survivor", record.Defects[0].Title)
}

func TestPageDriver_TimedOutTesterContributesNothing(t *testing.T) {
	driver := newTestDriver(
		&fakeTester{defectType: models.DefectTypeBrokenLink, delay: 3 * time.Second, defects: []models.Defect{consoleDefect("late")}},
		&fakeTester{defectType: models.DefectTypeNetworkError, defects: []models.Defect{consoleDefect("on time")}},
	)

	record := models.PageRecord{URL: "https://example.com"}
	start := time.Now()
	driver.TestPage(context.Background(), &record)

	assert.Less(t, time.Since(start), 3*time.Second)
	assert.Len(t, record.Defects, 1)
	assert.Equal(t, "on time", record.Defects[0].Title)
}

func TestPageDriver_CancelledContextStopsRemainingTesters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	driver := newTestDriver(
		&fakeTester{defectType: models.DefectTypeConsoleError, defects: []models.Defect{consoleDefect("never")}},
	)

	record := models.PageRecord{URL: "https://example.com"}
	driver.TestPage(ctx, &record)
	assert.Empty(t, record.Defects)
}

func TestDedupWithinPage(t *testing.T) {
	first := consoleDefect("dup")
	second := consoleDefect("dup")
	second.Severity = models.SeverityCritical // severity is not part of the fingerprint
	unique := consoleDefect("unique")

	kept := dedupWithinPage([]models.Defect{first, second, unique})
	assert.Len(t, kept, 2)
	assert.Equal(t, "dup", kept[0].Title)
	assert.Equal(t, models.SeverityWarning, kept[0].Severity)
	assert.Equal(t, "unique", kept[1].Title)
}
