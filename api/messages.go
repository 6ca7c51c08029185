package api

import (
	"encoding/json"
	"errors"

	"github.com/imjasonh/kingcapture/chess"
)

// MessageType represents the different kinds of messages sent over the game socket
type MessageType string

const (
	MessageTypeMove   MessageType = "move"
	MessageTypeState  MessageType = "state"
	MessageTypeUpdate MessageType = "update"
	MessageTypeError  MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

var errMissingSquare = errors.New("move needs both from and to squares")

type moveRequest struct {
	From *chess.Square `json:"from"`
	To   *chess.Square `json:"to"`
}

func (r moveRequest) squares() (chess.Square, chess.Square, error) {
	if r.From == nil || r.To == nil {
		return chess.Square{}, chess.Square{}, errMissingSquare
	}
	return *r.From, *r.To, nil
}

// errorPayload carries the outcome too when the error is a rejected move.
type errorPayload struct {
	Error   string             `json:"error"`
	Outcome *chess.MoveOutcome `json:"outcome,omitempty"`
}

func newMessage(t MessageType, v any) (Message, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: b}, nil
}
