package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/crossword/internal/domain"
	"github.com/kiryu-dev/crossword/internal/usecase/command"
	"github.com/kiryu-dev/crossword/internal/usecase/hub"
	"github.com/kiryu-dev/crossword/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startServer(t *testing.T) (*server, *httptest.Server) {
	t.Helper()
	puzzle := domain.NewPuzzle("Tiny", "one word", []domain.Entry{
		{Word: "go", Clue: "a language", Orientation: domain.Across},
	})
	proto := domain.DefaultProtocol()
	game := hub.New(map[string]domain.Puzzle{"Tiny": puzzle}, proto, zap.NewNop())
	srv := New("", game, command.New(game, proto, zap.NewNop()), zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		require.NoError(t, srv.Shutdown(context.Background()))
		ts.Close()
	})
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/play", nil)
	require.NoError(t, err)
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, line string) string {
	t.Helper()
	require.NoError(t, conn.WriteJSON(domain.Message{
		Type:    domain.CommandMessage,
		Payload: domain.LinePayload{Line: line},
	}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var msg domain.Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, domain.ResponseMessage, msg.Type)
	payload, err := utils.DecodePayload[domain.LinePayload](msg.Payload)
	require.NoError(t, err)
	return payload.Line
}

func getJson[T any](t *testing.T, url string) T {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v T
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestPlayOverWebsocket(t *testing.T) {
	srv, ts := startServer(t)
	conn := dial(t, ts)

	assert.Equal(t, "VLOGIN cs2fd Tiny cs2fd ", roundTrip(t, conn, "carol LOGIN"))
	assert.Equal(t, "VNEW cs2fd ", roundTrip(t, conn, `carol NEW g1 Tiny "quick one"`))

	health := getJson[domain.HealthCheckResponse](t, ts.URL+"/health")
	assert.Equal(t, domain.HealthCheckResponse{
		Stats:       domain.Stats{Puzzles: 1, Players: 1, Matches: 1, Waiting: 1},
		Connections: 1,
	}, health)
	assert.Equal(t, []domain.MatchInfo{{MatchID: "g1", Puzzle: "Tiny", Description: "quick one"}},
		getJson[[]domain.MatchInfo](t, ts.URL+"/matches"))

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.Eventually(t, func() bool {
		return srv.connections.Load() == 0
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, domain.Stats{Puzzles: 1}, getJson[domain.HealthCheckResponse](t, ts.URL+"/health").Stats)
}

func TestRejectsResponseFrames(t *testing.T) {
	_, ts := startServer(t)
	conn := dial(t, ts)
	require.NoError(t, conn.WriteJSON(domain.Message{
		Type:    domain.ResponseMessage,
		Payload: domain.LinePayload{Line: "me LOGIN"},
	}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "server drops the connection")
}
