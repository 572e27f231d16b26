package reporter

import (
	"testing"
	"time"

	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defect(dt models.DefectType, severity models.Severity, title, details, page string) models.Defect {
	return models.Defect{
		Type:     dt,
		Severity: severity,
		Title:    title,
		Details:  details,
		Page:     page,
	}
}

func TestReportBuilder_DedupAcrossPagesKeepsFirstOccurrence(t *testing.T) {
	shared := defect(models.DefectTypeConsoleError, models.SeverityWarning,
		"Console error: analytics blocked", "analytics blocked", "https://example.com")
	onSecond := shared
	onSecond.Page = "https://example.com/about"

	pages := []models.PageRecord{
		{URL: "https://example.com", Defects: []models.Defect{shared}},
		{URL: "https://example.com/about", Defects: []models.Defect{
			onSecond,
			defect(models.DefectTypeBrokenImage, models.SeverityWarning,
				"Broken image: /a.png", "Image failed to load: /a.png", "https://example.com/about"),
		}},
	}

	report := NewReportBuilder(zerolog.Nop()).Build("https://example.com", pages, nil)

	assert.Len(t, report.Pages[0].Defects, 1)
	assert.Len(t, report.Pages[1].Defects, 1)
	assert.Equal(t, "Console error: analytics blocked", report.Pages[0].Defects[0].Title)
	assert.Equal(t, "Broken image: /a.png", report.Pages[1].Defects[0].Title)
	assert.Equal(t, 2, report.Summary.TotalDefects)
}

func TestReportBuilder_AssignsUniqueIDs(t *testing.T) {
	pages := []models.PageRecord{
		{URL: "https://example.com", Defects: []models.Defect{
			defect(models.DefectTypeConsoleError, models.SeverityWarning, "a", "a", "https://example.com"),
			defect(models.DefectTypeNetworkError, models.SeverityCritical, "b", "b", "https://example.com"),
		}},
	}

	report := NewReportBuilder(zerolog.Nop()).Build("https://example.com", pages, nil)

	ids := make(map[string]struct{})
	for _, page := range report.Pages {
		for _, d := range page.Defects {
			_, err := uuid.Parse(d.ID)
			require.NoError(t, err)
			_, dup := ids[d.ID]
			assert.False(t, dup, "duplicate id %s", d.ID)
			ids[d.ID] = struct{}{}
		}
	}
	assert.Len(t, ids, 2)
}

func TestReportBuilder_SeveritySortIsStable(t *testing.T) {
	pages := []models.PageRecord{
		{URL: "https://example.com", Defects: []models.Defect{
			defect(models.DefectTypeResponsive, models.SeverityInfo, "info-1", "d1", "https://example.com"),
			defect(models.DefectTypeConsoleError, models.SeverityWarning, "warn-1", "d2", "https://example.com"),
			defect(models.DefectTypeNetworkError, models.SeverityCritical, "crit-1", "d3", "https://example.com"),
			defect(models.DefectTypeBrokenLink, models.SeverityWarning, "warn-2", "d4", "https://example.com"),
		}},
	}

	report := NewReportBuilder(zerolog.Nop()).Build("https://example.com", pages, nil)

	titles := make([]string, 0, 4)
	for _, d := range report.Pages[0].Defects {
		titles = append(titles, d.Title)
	}
	assert.Equal(t, []string{"crit-1", "warn-1", "warn-2", "info-1"}, titles)
}

func TestReportBuilder_SummaryCarriesAllTypeKeys(t *testing.T) {
	report := NewReportBuilder(zerolog.Nop()).Build("https://example.com", []models.PageRecord{
		{URL: "https://example.com", Defects: []models.Defect{
			defect(models.DefectTypeBrokenLink, models.SeverityWarning, "t", "d", "https://example.com"),
		}},
	}, nil)

	assert.Len(t, report.Summary.ByType, len(models.AllDefectTypes()))
	assert.Equal(t, 1, report.Summary.ByType[models.DefectTypeBrokenLink])
	assert.Equal(t, 0, report.Summary.ByType[models.DefectTypeResponsive])
	assert.Equal(t, 1, report.Summary.BySeverity[models.SeverityWarning])
	assert.Equal(t, 0, report.Summary.BySeverity[models.SeverityCritical])
}

func TestReportBuilder_SummaryEqualsKeptDefects(t *testing.T) {
	dup := defect(models.DefectTypeConsoleError, models.SeverityWarning, "same", "same", "https://example.com")
	pages := []models.PageRecord{
		{URL: "https://example.com", Defects: []models.Defect{dup, dup}},
		{URL: "https://example.com/a", Defects: []models.Defect{dup}},
	}

	report := NewReportBuilder(zerolog.Nop()).Build("https://example.com", pages, nil)

	kept := 0
	for _, page := range report.Pages {
		kept += len(page.Defects)
	}
	assert.Equal(t, kept, report.Summary.TotalDefects)
	assert.Equal(t, 1, report.Summary.TotalDefects)
}

func TestReportBuilder_PagesFoundAndTimestamp(t *testing.T) {
	pages := []models.PageRecord{
		{URL: "https://example.com"},
		{URL: "https://example.com/a"},
		{URL: "https://example.com/b"},
	}

	report := NewReportBuilder(zerolog.Nop()).Build("https://example.com", pages, []string{"prompt generation used templates"})

	assert.Equal(t, 3, report.PagesFound)
	assert.Equal(t, []string{"prompt generation used templates"}, report.Warnings)

	generatedAt, err := time.Parse(time.RFC3339, report.GeneratedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), generatedAt, time.Minute)
}

func TestReportBuilder_EmptyPageSet(t *testing.T) {
	report := NewReportBuilder(zerolog.Nop()).Build("https://example.com", nil, nil)

	assert.Equal(t, 0, report.PagesFound)
	assert.Empty(t, report.Pages)
	assert.Equal(t, 0, report.Summary.TotalDefects)
	assert.Len(t, report.Summary.ByType, len(models.AllDefectTypes()))
}

func TestReportBuilder_DoesNotMutateInput(t *testing.T) {
	pages := []models.PageRecord{
		{URL: "https://example.com", Defects: []models.Defect{
			defect(models.DefectTypeConsoleError, models.SeverityWarning, "t", "d", "https://example.com"),
		}},
	}

	_ = NewReportBuilder(zerolog.Nop()).Build("https://example.com", pages, nil)
	assert.Empty(t, pages[0].Defects[0].ID)
}
