package tester

import (
	"context"
	"time"

	"github.com/aleister1102/sitecheck/internal/models"
)

// Tester is one defect detector. Each run gets the target URL and drives its
// own fresh browser page; returned defects have Page set and ID left blank.
type Tester interface {
	Type() models.DefectType
	Run(ctx context.Context, pageURL string) ([]models.Defect, error)
}

// Settle delays applied after navigation before inspecting page state.
// Console and network errors fire asynchronously and need the longer one.
const (
	asyncSettleDelay  = 500 * time.Millisecond
	renderSettleDelay = 300 * time.Millisecond
)

// firstLine returns the text up to the first line break.
func firstLine(text string) string {
	for i, r := range text {
		if r == '\n' || r == '\r' {
			return text[:i]
		}
	}
	return text
}

// truncate shortens a string to at most limit runes.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
