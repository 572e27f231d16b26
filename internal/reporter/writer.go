package reporter

import (
	"encoding/json"

	"github.com/aleister1102/sitecheck/internal/common"
	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/rs/zerolog"
)

// ReportWriter persists finished reports as indented JSON files.
type ReportWriter struct {
	fileManager *common.FileManager
	logger      zerolog.Logger
}

// NewReportWriter creates a new report writer
func NewReportWriter(logger zerolog.Logger) *ReportWriter {
	return &ReportWriter{
		fileManager: common.NewFileManager(logger),
		logger:      logger.With().Str("component", "ReportWriter").Logger(),
	}
}

// WriteReportFile writes the report to path, creating parent directories.
func (rw *ReportWriter) WriteReportFile(report *models.Report, path string) error {
	if report == nil {
		return common.NewError("cannot write a nil report")
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return common.WrapError(err, "failed to encode report")
	}

	opts := common.DefaultFileWriteOptions()
	opts.Atomic = true
	if err := rw.fileManager.WriteFile(path, data, opts); err != nil {
		return common.WrapErrorf(err, "failed to write report to %s", path)
	}

	rw.logger.Info().Str("path", path).Int("bytes", len(data)).Msg("Report written")
	return nil
}
