package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aleister1102/sitecheck/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLevel(tt.input), tt.input)
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatJSON, ParseFormat(" JSON "))
	assert.Equal(t, FormatConsole, ParseFormat("console"))
	assert.Equal(t, FormatConsole, ParseFormat(""))
	assert.Equal(t, FormatConsole, ParseFormat("text"))
}

func TestNew_DefaultConfig(t *testing.T) {
	log, err := New(config.NewDefaultLogConfig())
	require.NoError(t, err)
	log.Info().Msg("logger works")
}

func TestNew_FileLogging(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewDefaultLogConfig()
	cfg.LogFile = filepath.Join(dir, "sitecheck.log")
	cfg.LogFormat = "json"

	log, err := New(cfg)
	require.NoError(t, err)
	log.Info().Msg("written to file")

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestNewWithScanID_UsesScanSubdirectory(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewDefaultLogConfig()
	cfg.LogFile = filepath.Join(dir, "sitecheck.log")
	cfg.LogFormat = "json"

	log, err := NewWithScanID(cfg, "scan-123")
	require.NoError(t, err)
	log.Info().Msg("scan scoped entry")

	scanPath := filepath.Join(dir, "scans", "scan-123", "sitecheck.log")
	data, err := os.ReadFile(scanPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scan scoped entry")
	assert.Contains(t, string(data), "scan-123")
}

func TestBuilder_RejectsInvalidMaxSize(t *testing.T) {
	builder := NewLoggerBuilder()
	builder.config.MaxSizeMB = 0
	_, err := builder.Build()
	assert.Error(t, err)
}
