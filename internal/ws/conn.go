package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gamehub/internal/hub"
	"gamehub/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong before the connection is dropped
	pongWait = 60 * time.Second

	// Time between keepalive pings; must be shorter than pongWait
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Envelope is the wire frame for hub events in both directions
type Envelope struct {
	Event model.EventName `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

var errSendBufferFull = errors.New("send buffer full")

// Conn adapts a websocket connection to the hub's Conn interface. Outbound
// events go through a buffered channel drained by the write pump, so Deliver
// never blocks: a full buffer drops the message and reports the failure.
type Conn struct {
	id   model.ConnectionID
	sock *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	closed    chan struct{}

	logger *slog.Logger
}

// Ensure Conn implements the hub interface
var _ hub.Conn = (*Conn)(nil)

func newConn(id model.ConnectionID, sock *websocket.Conn, logger *slog.Logger) *Conn {
	return &Conn{
		id:     id,
		sock:   sock,
		send:   make(chan []byte, sendBufferSize),
		closed: make(chan struct{}),
		logger: logger,
	}
}

// ID returns the connection's identity
func (c *Conn) ID() model.ConnectionID {
	return c.id
}

// Deliver queues an event for this client. It never blocks; when the client
// cannot keep up the message is dropped and an error returned, which the
// router logs and swallows.
func (c *Conn) Deliver(event model.EventName, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return err
	}

	select {
	case <-c.closed:
		return errors.New("connection closed")
	default:
	}

	select {
	case c.send <- frame:
		return nil
	default:
		sendBufferDropped.Inc()
		return errSendBufferFull
	}
}

// Close tears down the connection and stops the write pump
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
	return c.sock.Close()
}

// writePump drains the send channel to the socket, pinging on an interval.
// One goroutine per connection; exits when the connection closes.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}
