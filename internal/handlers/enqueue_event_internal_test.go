package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bulk-payment-backend/internal/models"
)

func TestEnqueueEventNeverDropsTerminal(t *testing.T) {
	events := make(chan models.ProgressEvent, 2)

	enqueueEvent(events, models.ProgressEvent{Processed: 1, Status: models.JobStatusProcessing})
	enqueueEvent(events, models.ProgressEvent{Processed: 2, Status: models.JobStatusProcessing})

	// Buffer is full: another progress event is dropped silently.
	enqueueEvent(events, models.ProgressEvent{Processed: 3, Status: models.JobStatusProcessing})
	assert.Len(t, events, 2)

	// The terminal event evicts the oldest buffered one instead.
	enqueueEvent(events, models.ProgressEvent{Processed: 5, Status: models.JobStatusCompleted})
	require.Len(t, events, 2)

	first := <-events
	last := <-events
	assert.Equal(t, 2, first.Processed)
	assert.Equal(t, models.JobStatusCompleted, last.Status)
}
