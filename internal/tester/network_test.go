package tester

import (
	"testing"

	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/stretchr/testify/assert"
)

const testPage = "https://example.com/pricing"

func TestResponseDefect(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		status   int
		want     bool
		severity models.Severity
		title    string
	}{
		{
			name:   "successful response",
			url:    "https://example.com/app.js",
			status: 200,
			want:   false,
		},
		{
			name:   "redirect",
			url:    "https://example.com/old",
			status: 301,
			want:   false,
		},
		{
			name:     "client error",
			url:      "https://example.com/assets/app.js",
			status:   404,
			want:     true,
			severity: models.SeverityWarning,
			title:    "Client error 404 on /assets/app.js",
		},
		{
			name:     "server error",
			url:      "https://example.com/api/data",
			status:   503,
			want:     true,
			severity: models.SeverityCritical,
			title:    "Server error 503 on /api/data",
		},
		{
			name:   "page document itself",
			url:    testPage,
			status: 500,
			want:   false,
		},
		{
			name:   "page document with trailing slash",
			url:    testPage + "/",
			status: 500,
			want:   false,
		},
		{
			name:   "noise URL",
			url:    "https://www.google-analytics.com/collect",
			status: 404,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defect, ok := ResponseDefect(testPage, "GET", tt.url, tt.status)
			assert.Equal(t, tt.want, ok)
			if !tt.want {
				return
			}
			assert.Equal(t, models.DefectTypeNetworkError, defect.Type)
			assert.Equal(t, tt.severity, defect.Severity)
			assert.Equal(t, tt.title, defect.Title)
			assert.Contains(t, defect.Details, tt.url)
		})
	}
}

func TestResponseDefect_DetailsFormat(t *testing.T) {
	defect, ok := ResponseDefect(testPage, "POST", "https://example.com/api/submit", 422)
	assert.True(t, ok)
	assert.Equal(t, "POST https://example.com/api/submit returned 422", defect.Details)
}

func TestFailureDefect(t *testing.T) {
	defect, ok := FailureDefect(testPage, "GET", "https://example.com/fonts/brand.woff2", "net::ERR_CONNECTION_RESET")
	assert.True(t, ok)
	assert.Equal(t, models.SeverityCritical, defect.Severity)
	assert.Equal(t, "Request failed: /fonts/brand.woff2", defect.Title)
	assert.Equal(t, "GET https://example.com/fonts/brand.woff2 failed: net::ERR_CONNECTION_RESET", defect.Details)
}

func TestFailureDefect_UnknownError(t *testing.T) {
	defect, ok := FailureDefect(testPage, "GET", "https://example.com/x.js", "")
	assert.True(t, ok)
	assert.Contains(t, defect.Details, "failed: unknown error")
}

func TestFailureDefect_FiltersNoise(t *testing.T) {
	_, ok := FailureDefect(testPage, "GET", "https://static.hotjar.com/h.js", "net::ERR_FAILED")
	assert.False(t, ok)
}

func TestNetworkCapture_CorrelatesFailuresByRequestID(t *testing.T) {
	capture := newNetworkCapture()
	capture.addRequest("req-1", "GET", "https://example.com/a.css")
	capture.addRequest("req-2", "GET", "https://example.com/b.js")
	capture.addFailure("req-2", "net::ERR_CONNECTION_RESET", false)
	capture.addFailure("req-3", "net::ERR_FAILED", false) // never sent, ignored
	capture.addFailure("req-1", "net::ERR_ABORTED", true) // canceled, ignored

	defects := capture.Defects(testPage)
	assert.Len(t, defects, 1)
	assert.Equal(t, "Request failed: /b.js", defects[0].Title)
}
