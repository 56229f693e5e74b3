package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// wsEnvelope mirrors the hub's wire frame
type wsEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// dialHub connects to the hub endpoint with the given role
func dialHub(role string) (*websocket.Conn, error) {
	u := cfg.WebsocketURL() + "?clientType=" + url.QueryEscape(role)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(u, nil)
	if err != nil {
		return nil, fmt.Errorf("hub connection failed: %w", err)
	}
	return conn, nil
}

// requestHub sends one event and waits for the named response event,
// skipping unrelated broadcasts that arrive in between.
func requestHub(requestEvent, responseEvent string, result any) error {
	conn, err := dialHub("dashboard")
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	frame, err := json.Marshal(wsEnvelope{Event: requestEvent, Data: json.RawMessage("{}")})
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	deadline := time.Now().Add(10 * time.Second)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return err
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		var env wsEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}

		switch env.Event {
		case responseEvent:
			return json.Unmarshal(env.Data, result)
		case "Error":
			var errPayload struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(env.Data, &errPayload); err == nil && errPayload.Message != "" {
				return fmt.Errorf("hub error: %s", errPayload.Message)
			}
			return fmt.Errorf("hub error")
		}
	}
}
