package reporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportWriter_WritesIndentedJSON(t *testing.T) {
	report := NewReportBuilder(zerolog.Nop()).Build("https://example.com", []models.PageRecord{
		{URL: "https://example.com", Title: "Example"},
	}, nil)

	path := filepath.Join(t.TempDir(), "out", "report.json")
	require.NoError(t, NewReportWriter(zerolog.Nop()).WriteReportFile(report, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"seedUrl\"")

	var decoded models.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "https://example.com", decoded.SeedURL)
	assert.Equal(t, 1, decoded.PagesFound)
}

func TestReportWriter_RejectsNilReport(t *testing.T) {
	err := NewReportWriter(zerolog.Nop()).WriteReportFile(nil, filepath.Join(t.TempDir(), "report.json"))
	assert.Error(t, err)
}
