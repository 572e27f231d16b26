package scanner

import (
	"testing"

	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestMonotonicPublisher_ClampsRegressions(t *testing.T) {
	var published []int
	publisher := &monotonicPublisher{publish: func(event models.ProgressEvent) {
		published = append(published, event.Progress)
	}}

	for _, progress := range []int{0, 27, 30, 28, 55, 55, 40, 100} {
		publisher.Publish(models.ProgressEvent{Phase: models.PhaseTesting, Progress: progress})
	}

	assert.Equal(t, []int{0, 27, 30, 30, 55, 55, 55, 100}, published)
}

func TestMonotonicPublisher_NilSinkIsSafe(t *testing.T) {
	publisher := &monotonicPublisher{}
	publisher.Publish(models.ProgressEvent{Progress: 50})
}
