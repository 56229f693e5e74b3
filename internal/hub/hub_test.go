package hub

import (
	"sync"

	"gamehub/internal/model"
)

// fakeConn records delivered events for assertions
type fakeConn struct {
	id model.ConnectionID

	mu        sync.Mutex
	delivered []deliveredEvent
	failWith  error
	closed    bool
}

type deliveredEvent struct {
	Event   model.EventName
	Payload any
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: model.ConnectionID(id)}
}

func (c *fakeConn) ID() model.ConnectionID {
	return c.id
}

func (c *fakeConn) Deliver(event model.EventName, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return c.failWith
	}
	c.delivered = append(c.delivered, deliveredEvent{Event: event, Payload: payload})
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) events() []deliveredEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]deliveredEvent, len(c.delivered))
	copy(out, c.delivered)
	return out
}
