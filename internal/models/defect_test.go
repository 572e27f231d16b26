package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefectType(t *testing.T) {
	for _, dt := range AllDefectTypes() {
		parsed, err := ParseDefectType(string(dt))
		require.NoError(t, err)
		assert.Equal(t, dt, parsed)
	}

	_, err := ParseDefectType("typo-error")
	assert.Error(t, err)
	_, err = ParseDefectType("")
	assert.Error(t, err)
}

func TestSeverityOrder(t *testing.T) {
	assert.Less(t, SeverityCritical.Rank(), SeverityWarning.Rank())
	assert.Less(t, SeverityWarning.Rank(), SeverityInfo.Rank())

	assert.True(t, SeverityCritical.IsValid())
	assert.True(t, SeverityWarning.IsValid())
	assert.True(t, SeverityInfo.IsValid())
	assert.False(t, Severity("fatal").IsValid())
}

func TestDefectFingerprint(t *testing.T) {
	first := Defect{
		Type:    DefectTypeBrokenLink,
		Title:   "Broken link: https://example.com/missing",
		Details: "Returned 404",
		Page:    "https://example.com/",
	}
	// The same problem on another page shares a fingerprint.
	second := first
	second.Page = "https://example.com/about"
	assert.Equal(t, first.Fingerprint(), second.Fingerprint())

	third := first
	third.Details = "Returned 410"
	assert.NotEqual(t, first.Fingerprint(), third.Fingerprint())
}

func TestNewReportSummaryHasAllKeys(t *testing.T) {
	summary := NewReportSummary()
	assert.Len(t, summary.ByType, len(AllDefectTypes()))
	for _, dt := range AllDefectTypes() {
		count, found := summary.ByType[dt]
		assert.True(t, found)
		assert.Zero(t, count)
	}
	assert.Len(t, summary.BySeverity, 3)
	assert.Zero(t, summary.TotalDefects)
}
