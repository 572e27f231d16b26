package tester

import (
	"testing"

	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBrokenImageDefects(t *testing.T) {
	snapshots := []ImageSnapshot{
		{Src: "/logo.png", Alt: "Logo", Complete: true, NaturalWidth: 200},
		{Src: "/missing.png", Alt: "", Complete: true, NaturalWidth: 0},
		{Src: "/hero.jpg", Alt: "Hero banner", Complete: true, NaturalWidth: 0},
		{Src: "/slow.png", Complete: false, NaturalWidth: 0},
		{Src: "data:image/png;base64,AAAA", Complete: true, NaturalWidth: 0},
		{Src: "", Complete: true, NaturalWidth: 0},
	}

	defects := BrokenImageDefects("https://example.com", snapshots)
	assert.Len(t, defects, 2)

	assert.Equal(t, models.DefectTypeBrokenImage, defects[0].Type)
	assert.Equal(t, models.SeverityWarning, defects[0].Severity)
	assert.Equal(t, "Broken image: /missing.png", defects[0].Title)
	assert.Equal(t, "Image failed to load: /missing.png", defects[0].Details)

	// Alt text is preferred over the source for the title.
	assert.Equal(t, "Broken image: Hero banner", defects[1].Title)
	assert.Equal(t, "Image failed to load: /hero.jpg", defects[1].Details)
}

func TestBrokenImageDefects_EmptyInput(t *testing.T) {
	assert.Empty(t, BrokenImageDefects("https://example.com", nil))
}
