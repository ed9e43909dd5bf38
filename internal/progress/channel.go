// Package progress is the process-local publish/subscribe channel for live
// job updates. One topic per job id, synchronous delivery, no buffering and
// no replay: an observer that connects late recovers state by polling.
package progress

import (
	"sync"

	"bulk-payment-backend/internal/models"
)

// Handler receives published events for one subscription.
type Handler func(models.ProgressEvent)

// Channel is safe for concurrent use. It holds no history and does not
// survive a process restart.
type Channel struct {
	mu   sync.Mutex
	subs map[string]map[int]Handler
	next int
}

func NewChannel() *Channel {
	return &Channel{subs: make(map[string]map[int]Handler)}
}

// Subscribe registers a handler for a job's events and returns an
// unsubscribe func. Unsubscribing twice is a no-op.
func (c *Channel) Subscribe(jobID string, h Handler) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.subs[jobID] == nil {
		c.subs[jobID] = make(map[int]Handler)
	}
	id := c.next
	c.next++
	c.subs[jobID][id] = h

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if handlers, ok := c.subs[jobID]; ok {
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(c.subs, jobID)
			}
		}
	}
}

// Publish delivers the event to every current subscriber of the job id and
// returns once all handlers have run. Handlers are invoked outside the
// registry lock so they may unsubscribe.
func (c *Channel) Publish(jobID string, ev models.ProgressEvent) {
	c.mu.Lock()
	handlers := make([]Handler, 0, len(c.subs[jobID]))
	for _, h := range c.subs[jobID] {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}
