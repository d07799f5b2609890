// Package realtime carries live seat-state traffic for one screening over
// a Redis pub/sub topic. Every client subscribed to a screening sees every
// select/deselect intent and server-pushed update; messages this client
// published itself are filtered out on receipt.
package realtime

import (
	"encoding/json"
	"fmt"

	"cineclic-tui/model"
	"cineclic-tui/seatmap"
)

type MessageType string

const (
	TypeSelect   MessageType = "seat:select"
	TypeDeselect MessageType = "seat:deselect"
	TypeUpdate   MessageType = "seat:update"
)

// Message is the wire shape shared by intents and updates. State is set on
// updates; intents imply it from their type.
type Message struct {
	Type        MessageType   `json:"type"`
	ScreeningID int64         `json:"screeningId"`
	Seat        model.SeatRef `json:"seat"`
	State       string        `json:"state,omitempty"`
	ClientID    string        `json:"clientId,omitempty"`
}

// SeatState resolves the seat state a message asserts. An explicit state
// wins; otherwise a select intent means another client holds the seat and
// a deselect means it is open again.
func (m Message) SeatState() seatmap.SeatState {
	if m.State != "" {
		return seatmap.ParseState(m.State)
	}
	switch m.Type {
	case TypeSelect:
		return seatmap.SeatSelected
	case TypeDeselect:
		return seatmap.SeatAvailable
	default:
		return seatmap.SeatAvailable
	}
}

// Topic names the pub/sub channel for one screening's seat traffic.
func Topic(screeningID int64) string {
	return fmt.Sprintf("screening:%d:seats", screeningID)
}

func encodeMessage(m Message) ([]byte, error) {
	return json.Marshal(m)
}

func decodeMessage(payload string) (Message, error) {
	var m Message
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return Message{}, fmt.Errorf("decode seat message: %w", err)
	}
	return m, nil
}
