package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bulk-payment-backend/internal/models"
)

func TestPublishReachesOnlyJobSubscribers(t *testing.T) {
	ch := NewChannel()

	var gotA, gotB []models.ProgressEvent
	ch.Subscribe("job-a", func(ev models.ProgressEvent) { gotA = append(gotA, ev) })
	ch.Subscribe("job-b", func(ev models.ProgressEvent) { gotB = append(gotB, ev) })

	ch.Publish("job-a", models.ProgressEvent{JobID: "job-a", Processed: 1})
	ch.Publish("job-a", models.ProgressEvent{JobID: "job-a", Processed: 2})

	assert.Len(t, gotA, 2)
	assert.Empty(t, gotB)
}

func TestNoReplayForLateSubscriber(t *testing.T) {
	ch := NewChannel()

	ch.Publish("job-a", models.ProgressEvent{JobID: "job-a", Processed: 1})

	var got []models.ProgressEvent
	ch.Subscribe("job-a", func(ev models.ProgressEvent) { got = append(got, ev) })

	assert.Empty(t, got)
}

func TestUnsubscribe(t *testing.T) {
	ch := NewChannel()

	var got int
	unsub := ch.Subscribe("job-a", func(models.ProgressEvent) { got++ })

	ch.Publish("job-a", models.ProgressEvent{})
	unsub()
	unsub() // second call is a no-op
	ch.Publish("job-a", models.ProgressEvent{})

	assert.Equal(t, 1, got)
}

func TestHandlerMayUnsubscribeDuringDelivery(t *testing.T) {
	ch := NewChannel()

	var unsub func()
	var got int
	unsub = ch.Subscribe("job-a", func(ev models.ProgressEvent) {
		got++
		if ev.Status == models.JobStatusCompleted {
			unsub()
		}
	})

	ch.Publish("job-a", models.ProgressEvent{Status: models.JobStatusCompleted})
	ch.Publish("job-a", models.ProgressEvent{})

	assert.Equal(t, 1, got)
}
