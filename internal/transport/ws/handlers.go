package ws

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/crossword/internal/domain"
	"go.uber.org/zap"
)

func (s *server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error(err.Error())
		return
	}
	client := newClient(conn)
	if !s.track(client) {
		client.Close()
		return
	}
	defer s.untrack(client)
	s.logger.Info("new connection", zap.String("client", client.Uuid()), zap.String("remote", r.RemoteAddr))
	if err := s.command.Handle(s.ctx, client); err != nil {
		s.logger.Error(err.Error(), zap.String("client", client.Uuid()))
	}
}

func (s *server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	s.logger.Debug("health checking...")
	resp := domain.HealthCheckResponse{
		Stats:       s.game.Stats(),
		Connections: s.connections.Load(),
	}
	s.writeJson(w, resp)
}

func (s *server) availableMatches(w http.ResponseWriter, _ *http.Request) {
	s.writeJson(w, s.game.AvailableMatches())
}

func (s *server) writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := jsoniter.NewEncoder(w).Encode(v); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		s.logger.Warn(err.Error())
	}
}
