package logger

import (
	"io"
	stdlog "log" // Standard Go log package, aliased to avoid conflict with zerolog field
	"os"
	"path/filepath"

	"github.com/aleister1102/sitecheck/internal/common"
	"github.com/aleister1102/sitecheck/internal/config"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggerBuilder provides fluent interface for building loggers
type LoggerBuilder struct {
	config LoggerConfig
}

// NewLoggerBuilder creates a new logger builder
func NewLoggerBuilder() *LoggerBuilder {
	return &LoggerBuilder{
		config: DefaultLoggerConfig(),
	}
}

// WithConfig sets the logger configuration
func (lb *LoggerBuilder) WithConfig(cfg config.LogConfig) *LoggerBuilder {
	lb.config = convertConfig(cfg)
	return lb
}

// WithScanID sets the scan ID for organizing logs by scan session
func (lb *LoggerBuilder) WithScanID(scanID string) *LoggerBuilder {
	lb.config.ScanID = scanID
	return lb
}

// Build creates the logger instance
func (lb *LoggerBuilder) Build() (*Logger, error) {
	if err := lb.validateConfig(); err != nil {
		return nil, err
	}

	writers := lb.createWriters()
	if len(writers) == 0 {
		return nil, common.NewError("no output writers configured")
	}

	multiWriter := zerolog.MultiLevelWriter(writers...)
	zerologInstance := zerolog.New(multiWriter).
		Level(lb.config.Level).
		With().
		Timestamp().
		Logger()
	if lb.config.ScanID != "" {
		zerologInstance = zerologInstance.With().Str("scan_id", lb.config.ScanID).Logger()
	}

	// Configure global settings
	zerolog.SetGlobalLevel(lb.config.Level)
	lb.configureStandardLog(zerologInstance)

	return &Logger{
		zerolog: zerologInstance,
		config:  lb.config,
	}, nil
}

// validateConfig validates the logger configuration
func (lb *LoggerBuilder) validateConfig() error {
	if lb.config.EnableFile && lb.config.FilePath == "" {
		return common.NewValidationError("file_path", lb.config.FilePath, "file path required when file logging enabled")
	}

	if lb.config.MaxSizeMB <= 0 {
		return common.NewValidationError("max_size_mb", lb.config.MaxSizeMB, "max size must be positive")
	}

	return nil
}

// createWriters creates the appropriate writers based on configuration
func (lb *LoggerBuilder) createWriters() []io.Writer {
	var writers []io.Writer

	if lb.config.EnableConsole {
		writers = append(writers, lb.createConsoleWriter())
	}

	if lb.config.EnableFile {
		writers = append(writers, lb.createFileWriter())
	}

	return writers
}

// createConsoleWriter creates the stderr writer for the configured format.
func (lb *LoggerBuilder) createConsoleWriter() io.Writer {
	if lb.config.Format == FormatJSON {
		return os.Stderr
	}
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
}

// createFileWriter creates a rotating file writer, organized per scan when
// a scan ID is present.
func (lb *LoggerBuilder) createFileWriter() io.Writer {
	finalPath := lb.buildLogPath()

	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		// If directory creation fails, use original path
		finalPath = lb.config.FilePath
	}

	rotating := &lumberjack.Logger{
		Filename:   finalPath,
		MaxSize:    lb.config.MaxSizeMB,
		MaxBackups: lb.config.MaxBackups,
		Compress:   lb.config.Compress,
		LocalTime:  true,
	}

	if lb.config.Format == FormatConsole {
		return zerolog.ConsoleWriter{Out: rotating, NoColor: true, TimeFormat: "15:04:05"}
	}
	return rotating
}

// buildLogPath constructs the final log file path with per-scan subdirectories
func (lb *LoggerBuilder) buildLogPath() string {
	if !lb.config.UseSubdirs || lb.config.ScanID == "" {
		return lb.config.FilePath
	}

	baseDir := filepath.Dir(lb.config.FilePath)
	fileName := filepath.Base(lb.config.FilePath)
	return filepath.Join(baseDir, "scans", lb.config.ScanID, fileName)
}

// configureStandardLog configures standard Go log package
func (lb *LoggerBuilder) configureStandardLog(logger zerolog.Logger) {
	stdlog.SetOutput(logger)
	stdlog.SetFlags(0)
}
