package datastore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aleister1102/sitecheck/internal/config"
	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *models.Report {
	summary := models.NewReportSummary()
	summary.TotalDefects = 4
	summary.ByType[models.DefectTypeConsoleError] = 2
	summary.ByType[models.DefectTypeBrokenLink] = 1
	summary.ByType[models.DefectTypeResponsive] = 1
	summary.BySeverity[models.SeverityCritical] = 1
	summary.BySeverity[models.SeverityWarning] = 2
	summary.BySeverity[models.SeverityInfo] = 1

	return &models.Report{
		SeedURL:    "https://example.com",
		PagesFound: 5,
		Summary:    summary,
	}
}

func TestBuildScanAnalyticsRecord(t *testing.T) {
	record := BuildScanAnalyticsRecord(sampleReport(), "example.com", true)

	assert.Equal(t, "scan_complete", record.Event)
	assert.Equal(t, "example.com", record.Domain)
	assert.Equal(t, int32(5), record.PagesScanned)
	assert.Equal(t, int32(4), record.TotalBugs)
	assert.Equal(t, int32(2), record.BugsConsoleError)
	assert.Equal(t, int32(1), record.BugsBrokenLink)
	assert.Equal(t, int32(0), record.BugsNetworkError)
	assert.Equal(t, int32(1), record.BugsCritical)
	assert.Equal(t, int32(2), record.BugsWarning)
	assert.Equal(t, int32(1), record.BugsInfo)
	assert.True(t, record.UsedTemplates)
	assert.NotZero(t, record.Timestamp)
}

func TestAnalyticsStore_WritesOneFilePerScan(t *testing.T) {
	cfg := config.NewDefaultAnalyticsConfig()
	cfg.OutputDir = t.TempDir()
	store := NewAnalyticsStore(cfg, zerolog.Nop())

	record := BuildScanAnalyticsRecord(sampleReport(), "example.com", false)
	require.NoError(t, store.StoreScanComplete("scan-1", record))

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Regexp(t, `^scan_complete_scan-1_\d+\.parquet$`, entries[0].Name())

	file, err := os.Open(filepath.Join(cfg.OutputDir, entries[0].Name()))
	require.NoError(t, err)
	defer file.Close()

	info, err := file.Stat()
	require.NoError(t, err)
	rows, err := parquet.Read[ScanAnalyticsRecord](file, info.Size())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "scan_complete", rows[0].Event)
	assert.Equal(t, int32(4), rows[0].TotalBugs)
	assert.False(t, rows[0].UsedTemplates)
}

func TestAnalyticsStore_DisabledIsNoOp(t *testing.T) {
	dir := t.TempDir()
	store := NewAnalyticsStore(config.AnalyticsConfig{Enabled: false, OutputDir: dir}, zerolog.Nop())

	record := BuildScanAnalyticsRecord(sampleReport(), "example.com", false)
	require.NoError(t, store.StoreScanComplete("scan-1", record))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAnalyticsStore_MissingOutputDirIsAnError(t *testing.T) {
	store := NewAnalyticsStore(config.AnalyticsConfig{Enabled: true}, zerolog.Nop())
	record := BuildScanAnalyticsRecord(sampleReport(), "example.com", false)
	assert.Error(t, store.StoreScanComplete("scan-1", record))
}
