package models

// ReportSummary aggregates defect counts for a finished report.
// ByType always contains every defect type, zero-valued when absent,
// so consumers never need to probe for missing keys.
type ReportSummary struct {
	TotalDefects int                `json:"totalDefects"`
	BySeverity   map[Severity]int   `json:"bySeverity"`
	ByType       map[DefectType]int `json:"byType"`
}

// NewReportSummary returns an empty summary with every severity and
// defect type key present.
func NewReportSummary() ReportSummary {
	bySeverity := map[Severity]int{
		SeverityCritical: 0,
		SeverityWarning:  0,
		SeverityInfo:     0,
	}
	byType := make(map[DefectType]int, len(AllDefectTypes()))
	for _, dt := range AllDefectTypes() {
		byType[dt] = 0
	}
	return ReportSummary{BySeverity: bySeverity, ByType: byType}
}

// Report is the consolidated result of one scan. It is materialized once
// by the report builder and immutable afterwards.
type Report struct {
	SeedURL     string        `json:"seedUrl"`
	GeneratedAt string        `json:"generatedAt"`
	PagesFound  int           `json:"pagesFound"`
	Pages       []PageRecord  `json:"pages"`
	Summary     ReportSummary `json:"summary"`
	Warnings    []string      `json:"warnings,omitempty"`
}

// TotalDefects returns the summary defect count.
func (r *Report) TotalDefects() int {
	if r == nil {
		return 0
	}
	return r.Summary.TotalDefects
}
