package ws

import (
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kiryu-dev/crossword/internal/domain"
	"github.com/kiryu-dev/crossword/pkg/utils"
	"github.com/pkg/errors"
)

var ErrUnexpectedMessage = errors.New("expected a command message")

type client struct {
	conn *websocket.Conn
	uuid string
	mu   sync.Mutex
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn, uuid: uuid.NewString()}
}

func (c *client) WriteMessage(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := domain.Message{
		Type:    domain.ResponseMessage,
		Payload: domain.LinePayload{Line: line},
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return errors.WithMessage(err, "websocket conn write json")
	}
	return nil
}

func (c *client) ReadMessage() (string, error) {
	var msg domain.Message
	if err := c.conn.ReadJSON(&msg); err != nil {
		if isClosed(err) {
			return "", domain.ErrConnectionClosed
		}
		return "", errors.WithMessage(err, "websocket conn read json")
	}
	if msg.Type != domain.CommandMessage {
		return "", errors.WithMessagef(ErrUnexpectedMessage, "got type %d", msg.Type)
	}
	payload, err := utils.DecodePayload[domain.LinePayload](msg.Payload)
	if err != nil {
		return "", errors.WithMessage(err, "decode command payload")
	}
	return payload.Line, nil
}

func (c *client) Uuid() string {
	return c.uuid
}

func (c *client) Close() {
	_ = c.conn.Close()
}

func isClosed(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived, websocket.CloseAbnormalClosure) || errors.Is(err, net.ErrClosed)
}
