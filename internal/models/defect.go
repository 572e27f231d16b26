package models

import "fmt"

// DefectType classifies a defect by the tester that discovers it.
type DefectType string

const (
	DefectTypeConsoleError  DefectType = "console-error"
	DefectTypeNetworkError  DefectType = "network-error"
	DefectTypeBrokenLink    DefectType = "broken-link"
	DefectTypeBrokenImage   DefectType = "broken-image"
	DefectTypeAccessibility DefectType = "accessibility"
	DefectTypeResponsive    DefectType = "responsive"
)

// AllDefectTypes returns the closed set of defect types in canonical order.
// Report summaries carry a count for every entry of this set.
func AllDefectTypes() []DefectType {
	return []DefectType{
		DefectTypeConsoleError,
		DefectTypeNetworkError,
		DefectTypeBrokenLink,
		DefectTypeBrokenImage,
		DefectTypeAccessibility,
		DefectTypeResponsive,
	}
}

// IsValid reports whether dt is a member of the closed defect type set.
func (dt DefectType) IsValid() bool {
	switch dt {
	case DefectTypeConsoleError, DefectTypeNetworkError, DefectTypeBrokenLink,
		DefectTypeBrokenImage, DefectTypeAccessibility, DefectTypeResponsive:
		return true
	}
	return false
}

// ParseDefectType converts an external string into a DefectType,
// rejecting values outside the closed set.
func ParseDefectType(s string) (DefectType, error) {
	dt := DefectType(s)
	if !dt.IsValid() {
		return "", fmt.Errorf("unknown defect type: %q", s)
	}
	return dt, nil
}

// Severity grades a defect. The total order is critical < warning < info.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Rank returns the position of the severity in the total order,
// critical first. Unknown severities sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	default:
		return 3
	}
}

// IsValid reports whether s is one of the three known severities.
func (s Severity) IsValid() bool {
	return s.Rank() < 3
}

// Defect is a single observable problem found on a page.
// ID is assigned late by the report builder and is unique within a report.
// FixPrompt is populated exactly once by the prompt stage.
type Defect struct {
	ID        string     `json:"id"`
	Type      DefectType `json:"type"`
	Severity  Severity   `json:"severity"`
	Title     string     `json:"title"`
	Details   string     `json:"details"`
	Page      string     `json:"page"`
	FixPrompt string     `json:"fixPrompt"`
}

// Fingerprint identifies a defect for cross-page deduplication.
// Two defects with equal fingerprints describe the same problem.
func (d *Defect) Fingerprint() string {
	return fmt.Sprintf("%s::%s::%s", d.Type, d.Title, d.Details)
}
