// Package ws is the realtime channel: named JSON events over WebSocket with
// per-connection delivery and server-to-all broadcast.
package ws

import (
	"encoding/json"
	"fmt"
)

// Event is the wire frame exchanged with clients: a name plus an opaque
// JSON payload.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// encodeFrame marshals an event name and payload into a wire frame.
func encodeFrame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	frame, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s frame: %w", event, err)
	}
	return frame, nil
}
