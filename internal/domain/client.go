package domain

import (
	"context"
)

type messageType byte

const (
	CommandMessage = messageType(iota)
	ResponseMessage
)

// Message is the WebSocket frame wrapping one protocol line.
type Message struct {
	Type    messageType
	Payload any
}

type LinePayload struct {
	Line string
}

// Client is one connection. WriteMessage may be called from goroutines other than
// the one reading, so implementations serialize writes.
type Client interface {
	WriteMessage(line string) error
	ReadMessage() (string, error)
	Uuid() string
}

type CommandUseCase interface {
	Handle(ctx context.Context, client Client) error
}
