package tcp

import (
	"context"
	"net"
	"sync"

	"github.com/kiryu-dev/crossword/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// server accepts text protocol connections, one goroutine per client.
type server struct {
	addr        string
	command     domain.CommandUseCase
	logger      *zap.Logger
	connections *atomic.Int64

	mu       sync.Mutex
	listener net.Listener
	clients  map[*client]struct{}
	closed   bool
	wg       sync.WaitGroup
	ready    chan struct{}
}

func New(addr string, command domain.CommandUseCase, logger *zap.Logger) *server {
	return &server{
		addr:        addr,
		command:     command,
		logger:      logger,
		connections: atomic.NewInt64(0),
		clients:     make(map[*client]struct{}),
		ready:       make(chan struct{}),
	}
}

// ListenAndServe blocks until Shutdown is called, ctx is done or the listener fails.
func (s *server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		close(s.ready)
		return errors.WithMessagef(err, "listen tcp '%s'", s.addr)
	}
	s.mu.Lock()
	s.listener = l
	closed := s.closed
	s.mu.Unlock()
	close(s.ready)
	if closed {
		_ = l.Close()
		return nil
	}
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = l.Close()
		case <-stop:
		}
	}()
	s.logger.Info("starting listening address: " + l.Addr().String())
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return errors.WithMessage(err, "accept tcp conn")
		}
		s.serve(ctx, newClient(conn))
	}
}

func (s *server) serve(ctx context.Context, c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		c.Close()
		return
	}
	s.clients[c] = struct{}{}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.clients, c)
			s.mu.Unlock()
			c.Close()
			s.connections.Dec()
		}()
		s.connections.Inc()
		s.logger.Info("new connection", zap.String("client", c.Uuid()), zap.String("remote", c.conn.RemoteAddr().String()))
		if err := s.command.Handle(ctx, c); err != nil {
			s.logger.Error(err.Error(), zap.String("client", c.Uuid()))
		}
	}()
}

// Addr is the bound address once ListenAndServe is running, nil if binding failed.
func (s *server) Addr() net.Addr {
	<-s.ready
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *server) Connections() int64 {
	return s.connections.Load()
}

// Shutdown stops accepting, closes every open connection and waits for their sessions.
func (s *server) Shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	var err error
	if s.listener != nil {
		if err = s.listener.Close(); errors.Is(err, net.ErrClosed) {
			err = nil
		}
	}
	for c := range s.clients {
		c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	return err
}
