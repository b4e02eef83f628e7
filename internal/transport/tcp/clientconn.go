package tcp

import (
	"bufio"
	"net"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/kiryu-dev/crossword/internal/domain"
	"github.com/pkg/errors"
)

type client struct {
	conn    net.Conn
	uuid    string
	scanner *bufio.Scanner
	mu      sync.Mutex
	w       *bufio.Writer
}

func newClient(conn net.Conn) *client {
	return &client{
		conn:    conn,
		uuid:    uuid.NewString(),
		scanner: bufio.NewScanner(conn),
		w:       bufio.NewWriter(conn),
	}
}

func (c *client) WriteMessage(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.w.WriteString(line + "\n"); err != nil {
		return errors.WithMessage(err, "tcp conn write")
	}
	if err := c.w.Flush(); err != nil {
		return errors.WithMessage(err, "tcp conn flush")
	}
	return nil
}

// ReadMessage returns the next line without its terminator. A closed peer yields
// domain.ErrConnectionClosed.
func (c *client) ReadMessage() (string, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
			return "", errors.WithMessage(err, "tcp conn read")
		}
		return "", domain.ErrConnectionClosed
	}
	return strings.TrimRight(c.scanner.Text(), "\r"), nil
}

func (c *client) Uuid() string {
	return c.uuid
}

func (c *client) Close() {
	_ = c.conn.Close()
}
