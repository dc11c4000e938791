// Package protocol defines the event envelope exchanged between the step
// server and its clients. Both directions use the same envelope; payload
// decoding is left to the receiver.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EventType names an event on the wire.
type EventType string

// Client to server.
const (
	EventStartSort  EventType = "startSort"
	EventPauseSort  EventType = "pauseSort"
	EventResumeSort EventType = "resumeSort"
)

// Server to client.
const (
	EventSortStep     EventType = "sortStep"
	EventSortComplete EventType = "sortComplete"
	EventSortError    EventType = "sortError"
)

// Speed presets understood by the server. Any other value falls back to the
// default delay.
const (
	SpeedSlow   = "slow"
	SpeedMedium = "medium"
	SpeedFast   = "fast"
)

// ErrInvalidPayload wraps every payload decoding or validation failure.
var ErrInvalidPayload = errors.New("invalid payload")

// Message is the envelope for all events. Seq is stamped by the sending
// transport and increases by one per message on a connection.
type Message struct {
	Type    EventType       `json:"type"`
	Seq     uint64          `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// StartSortPayload asks the server to begin a run.
type StartSortPayload struct {
	Algorithm string `json:"algorithm"`
	Array     []int  `json:"array"`
	Speed     string `json:"speed"`
}

// SortCompletePayload carries the authoritative sorted array.
type SortCompletePayload struct {
	Array []int `json:"array"`
}

// SortErrorPayload reports an aborted run.
type SortErrorPayload struct {
	Message string `json:"message"`
}

// NewMessage marshals payload into a message of type t. A nil payload
// produces a message without one.
func NewMessage(t EventType, payload any) (Message, error) {
	msg := Message{Type: t}
	if payload == nil {
		return msg, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	msg.Payload = data
	return msg, nil
}

// Decode unmarshals the payload of m into a T.
func Decode[T any](m Message) (T, error) {
	var v T
	if len(m.Payload) == 0 {
		return v, fmt.Errorf("%s: missing payload: %w", m.Type, ErrInvalidPayload)
	}
	if err := json.Unmarshal(m.Payload, &v); err != nil {
		return v, fmt.Errorf("%s: %v: %w", m.Type, err, ErrInvalidPayload)
	}
	return v, nil
}

// StepMessage builds a sortStep message from any JSON-encodable step value.
func StepMessage(step any) (Message, error) {
	return NewMessage(EventSortStep, step)
}

// CompleteMessage builds a sortComplete message.
func CompleteMessage(array []int) (Message, error) {
	if array == nil {
		array = []int{}
	}
	return NewMessage(EventSortComplete, SortCompletePayload{Array: array})
}

// ErrorMessage builds a sortError message.
func ErrorMessage(text string) Message {
	// A struct holding one string always marshals.
	msg, _ := NewMessage(EventSortError, SortErrorPayload{Message: text})
	return msg
}
