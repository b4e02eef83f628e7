package tcp

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/kiryu-dev/crossword/internal/domain"
	"github.com/kiryu-dev/crossword/internal/usecase/command"
	"github.com/kiryu-dev/crossword/internal/usecase/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startServer(t *testing.T) (*server, domain.GameUseCase) {
	t.Helper()
	puzzle := domain.NewPuzzle("Tiny", "one word", []domain.Entry{
		{Word: "go", Clue: "a language", Orientation: domain.Across},
	})
	proto := domain.DefaultProtocol()
	game := hub.New(map[string]domain.Puzzle{"Tiny": puzzle}, proto, zap.NewNop())
	srv := New("127.0.0.1:0", command.New(game, proto, zap.NewNop()), zap.NewNop())
	served := make(chan error, 1)
	go func() {
		served <- srv.ListenAndServe(context.Background())
	}()
	t.Cleanup(func() {
		require.NoError(t, srv.Shutdown())
		require.NoError(t, <-served)
	})
	return srv, game
}

type peer struct {
	conn   net.Conn
	reader *bufio.Reader
}

func dial(t *testing.T, srv *server) *peer {
	t.Helper()
	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	return &peer{conn: conn, reader: bufio.NewReader(conn)}
}

func (p *peer) roundTrip(t *testing.T, line string) string {
	t.Helper()
	_, err := p.conn.Write([]byte(line + "\r\n"))
	require.NoError(t, err)
	require.NoError(t, p.conn.SetReadDeadline(time.Now().Add(time.Second)))
	resp, err := p.reader.ReadString('\n')
	require.NoError(t, err)
	return resp[:len(resp)-1]
}

func TestLineProtocol(t *testing.T) {
	srv, game := startServer(t)
	p := dial(t, srv)

	assert.Equal(t, "VLOGIN cs2fd Tiny cs2fd ", p.roundTrip(t, "alice LOGIN"))
	assert.Equal(t, "VNEW cs2fd ", p.roundTrip(t, `alice NEW m Tiny "first match"`))
	assert.Equal(t, "IPLAY cs2fd "+domain.ErrAlreadyInMatch.Error(), p.roundTrip(t, "alice PLAY m"))
	assert.Equal(t, int64(1), srv.Connections())

	require.NoError(t, p.conn.Close())
	require.Eventually(t, func() bool {
		return !game.IsLoggedIn("alice") && srv.Connections() == 0
	}, time.Second, 10*time.Millisecond)
	assert.Empty(t, game.AvailableMatches())
}

func TestShutdownClosesSessions(t *testing.T) {
	srv, game := startServer(t)
	p := dial(t, srv)
	assert.Equal(t, "VLOGIN cs2fd Tiny cs2fd ", p.roundTrip(t, "bob LOGIN"))

	require.NoError(t, srv.Shutdown())
	assert.False(t, game.IsLoggedIn("bob"))
	require.NoError(t, p.conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, err := p.reader.ReadString('\n')
	require.Error(t, err)
}

func TestShutdownBeforeListen(t *testing.T) {
	srv := New("127.0.0.1:0", nil, zap.NewNop())
	require.NoError(t, srv.Shutdown())
	served := make(chan error, 1)
	go func() {
		served <- srv.ListenAndServe(context.Background())
	}()
	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.FailNow(t, "server kept accepting after shutdown")
	}
}

func TestContextStopsAccepting(t *testing.T) {
	srv := New("127.0.0.1:0", nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	served := make(chan error, 1)
	go func() {
		served <- srv.ListenAndServe(ctx)
	}()
	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.FailNow(t, "server ignored a cancelled context")
	}
	require.NoError(t, srv.Shutdown())
}

func TestListenFailureReleasesAddr(t *testing.T) {
	srv := New("256.0.0.1:bad", nil, zap.NewNop())
	require.Error(t, srv.ListenAndServe(context.Background()))
	assert.Nil(t, srv.Addr())
}
