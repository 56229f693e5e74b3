package testutil

import (
	"sync"

	"gamehub/internal/model"
)

// RecordingConn is a hub connection that records delivered events for
// assertions. Safe for concurrent delivery.
type RecordingConn struct {
	ConnID model.ConnectionID

	mu        sync.Mutex
	delivered []RecordedEvent
}

// RecordedEvent is one delivered event
type RecordedEvent struct {
	Event   model.EventName
	Payload any
}

// NewRecordingConn creates a recording connection with the given id
func NewRecordingConn(id string) *RecordingConn {
	return &RecordingConn{ConnID: model.ConnectionID(id)}
}

// ID returns the connection id
func (c *RecordingConn) ID() model.ConnectionID {
	return c.ConnID
}

// Deliver records the event and always succeeds
func (c *RecordingConn) Deliver(event model.EventName, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delivered = append(c.delivered, RecordedEvent{Event: event, Payload: payload})
	return nil
}

// Close is a no-op
func (c *RecordingConn) Close() error {
	return nil
}

// Events returns a copy of everything delivered so far
func (c *RecordingConn) Events() []RecordedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RecordedEvent, len(c.delivered))
	copy(out, c.delivered)
	return out
}

// EventsNamed returns delivered events matching the given name
func (c *RecordingConn) EventsNamed(name model.EventName) []RecordedEvent {
	var out []RecordedEvent
	for _, e := range c.Events() {
		if e.Event == name {
			out = append(out, e)
		}
	}
	return out
}
