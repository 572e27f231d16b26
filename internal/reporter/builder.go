package reporter

import (
	"sort"
	"time"

	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReportBuilder assembles the consolidated report out of crawled pages with
// populated defect lists.
type ReportBuilder struct {
	logger zerolog.Logger
}

// NewReportBuilder creates a new report builder
func NewReportBuilder(logger zerolog.Logger) *ReportBuilder {
	return &ReportBuilder{
		logger: logger.With().Str("component", "ReportBuilder").Logger(),
	}
}

// Build produces the final report: cross-page fingerprint dedup keeping the
// first occurrence, fresh UUID per kept defect, stable severity sort within
// each page, and a complete summary. Pages are never mutated; the report
// carries its own copies.
func (rb *ReportBuilder) Build(seedURL string, pages []models.PageRecord, warnings []string) *models.Report {
	summary := models.NewReportSummary()
	seen := make(map[string]struct{})

	reportPages := make([]models.PageRecord, len(pages))
	for i, page := range pages {
		kept := make([]models.Defect, 0, len(page.Defects))
		for _, defect := range page.Defects {
			fingerprint := defect.Fingerprint()
			if _, dup := seen[fingerprint]; dup {
				continue
			}
			seen[fingerprint] = struct{}{}

			defect.ID = uuid.NewString()
			kept = append(kept, defect)

			summary.TotalDefects++
			summary.BySeverity[defect.Severity]++
			summary.ByType[defect.Type]++
		}

		sort.SliceStable(kept, func(a, b int) bool {
			return kept[a].Severity.Rank() < kept[b].Severity.Rank()
		})

		reportPages[i] = models.PageRecord{
			URL:        page.URL,
			Title:      page.Title,
			LoadTimeMS: page.LoadTimeMS,
			Defects:    kept,
		}
	}

	report := &models.Report{
		SeedURL:     seedURL,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		PagesFound:  len(pages),
		Pages:       reportPages,
		Summary:     summary,
		Warnings:    warnings,
	}

	rb.logger.Info().
		Str("seed_url", seedURL).
		Int("pages", report.PagesFound).
		Int("defects", summary.TotalDefects).
		Msg("Report assembled")
	return report
}
