package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/kiryu-dev/crossword/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type server struct {
	srv         *http.Server
	game        domain.GameUseCase
	command     domain.CommandUseCase
	upgrader    websocket.Upgrader
	connections *atomic.Int64
	logger      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	conns  map[*client]struct{}
	closed bool
	wg     sync.WaitGroup
}

func New(addr string, game domain.GameUseCase, command domain.CommandUseCase, logger *zap.Logger) *server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &server{
		game:    game,
		command: command,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		connections: atomic.NewInt64(0),
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		conns:       make(map[*client]struct{}),
	}
	s.srv = &http.Server{Addr: addr, Handler: s.Handler()}
	return s
}

func (s *server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/play", s.serveWs)
	mux.HandleFunc("GET /health", s.healthCheck)
	mux.HandleFunc("GET /matches", s.availableMatches)
	return mux
}

func (s *server) ListenAndServe() error {
	s.logger.Info("starting listening address: " + s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithMessage(err, "listen and serve http")
	}
	return nil
}

// Shutdown stops the HTTP server and closes the hijacked websocket connections,
// which http.Server.Shutdown leaves alone.
func (s *server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	s.mu.Lock()
	s.closed = true
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
	return err
}

func (s *server) track(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[c] = struct{}{}
	s.wg.Add(1)
	s.connections.Inc()
	return true
}

func (s *server) untrack(c *client) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	c.Close()
	s.connections.Dec()
	s.wg.Done()
}
