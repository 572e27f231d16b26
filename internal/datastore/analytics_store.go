package datastore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/sitecheck/internal/common"
	"github.com/aleister1102/sitecheck/internal/config"
	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
	"github.com/rs/zerolog"
)

// ScanAnalyticsRecord is one scan_complete event as persisted to parquet.
type ScanAnalyticsRecord struct {
	Event             string `parquet:"event"`
	Domain            string `parquet:"domain"`
	PagesScanned      int32  `parquet:"pages_scanned"`
	TotalBugs         int32  `parquet:"total_bugs"`
	BugsConsoleError  int32  `parquet:"bugs_console_error"`
	BugsNetworkError  int32  `parquet:"bugs_network_error"`
	BugsBrokenLink    int32  `parquet:"bugs_broken_link"`
	BugsBrokenImage   int32  `parquet:"bugs_broken_image"`
	BugsAccessibility int32  `parquet:"bugs_accessibility"`
	BugsResponsive    int32  `parquet:"bugs_responsive"`
	BugsCritical      int32  `parquet:"bugs_critical"`
	BugsWarning       int32  `parquet:"bugs_warning"`
	BugsInfo          int32  `parquet:"bugs_info"`
	UsedTemplates     bool   `parquet:"used_templates"`
	Timestamp         int64  `parquet:"ts"`
}

// BuildScanAnalyticsRecord derives the scan_complete record from a finished
// report. usedTemplates reflects the prompt generator's fallback flag.
func BuildScanAnalyticsRecord(report *models.Report, domain string, usedTemplates bool) ScanAnalyticsRecord {
	summary := report.Summary
	return ScanAnalyticsRecord{
		Event:             "scan_complete",
		Domain:            domain,
		PagesScanned:      int32(report.PagesFound),
		TotalBugs:         int32(summary.TotalDefects),
		BugsConsoleError:  int32(summary.ByType[models.DefectTypeConsoleError]),
		BugsNetworkError:  int32(summary.ByType[models.DefectTypeNetworkError]),
		BugsBrokenLink:    int32(summary.ByType[models.DefectTypeBrokenLink]),
		BugsBrokenImage:   int32(summary.ByType[models.DefectTypeBrokenImage]),
		BugsAccessibility: int32(summary.ByType[models.DefectTypeAccessibility]),
		BugsResponsive:    int32(summary.ByType[models.DefectTypeResponsive]),
		BugsCritical:      int32(summary.BySeverity[models.SeverityCritical]),
		BugsWarning:       int32(summary.BySeverity[models.SeverityWarning]),
		BugsInfo:          int32(summary.BySeverity[models.SeverityInfo]),
		UsedTemplates:     usedTemplates,
		Timestamp:         time.Now().UTC().Unix(),
	}
}

// AnalyticsStore writes scan analytics records to parquet files, one file
// per scan. It is write-only; the admin view reads the files offline.
type AnalyticsStore struct {
	config config.AnalyticsConfig
	logger zerolog.Logger
}

// NewAnalyticsStore creates a new analytics store
func NewAnalyticsStore(cfg config.AnalyticsConfig, logger zerolog.Logger) *AnalyticsStore {
	return &AnalyticsStore{
		config: cfg,
		logger: logger.With().Str("component", "AnalyticsStore").Logger(),
	}
}

// StoreScanComplete persists one record as
// scan_complete_<scanid>_<ts>.parquet under the analytics directory.
// Callers log the returned error and move on; analytics never fail a scan.
func (as *AnalyticsStore) StoreScanComplete(scanID string, record ScanAnalyticsRecord) error {
	if !as.config.Enabled {
		return nil
	}
	if as.config.OutputDir == "" {
		return common.NewValidationError("output_dir", as.config.OutputDir, "analytics output directory is not configured")
	}

	if err := os.MkdirAll(as.config.OutputDir, 0755); err != nil {
		return common.WrapError(err, "failed to create analytics directory: "+as.config.OutputDir)
	}

	fileName := fmt.Sprintf("scan_complete_%s_%d.parquet", scanID, record.Timestamp)
	filePath := filepath.Join(as.config.OutputDir, fileName)

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return common.WrapError(err, "failed to create analytics parquet file: "+filePath)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[ScanAnalyticsRecord](file, parquet.Compression(as.compressionCodec()))
	if _, err := writer.Write([]ScanAnalyticsRecord{record}); err != nil {
		_ = writer.Close()
		return common.WrapError(err, "failed to write analytics record")
	}
	if err := writer.Close(); err != nil {
		return common.WrapError(err, "failed to finalize analytics parquet file")
	}

	as.logger.Info().
		Str("file_path", filePath).
		Str("domain", record.Domain).
		Int32("total_bugs", record.TotalBugs).
		Msg("Scan analytics record written")
	return nil
}

func (as *AnalyticsStore) compressionCodec() compress.Codec {
	switch as.config.CompressionCodec {
	case "gzip":
		return &parquet.Gzip
	case "snappy":
		return &parquet.Snappy
	case "none":
		return &parquet.Uncompressed
	default:
		return &parquet.Zstd
	}
}
