package command

import (
	"context"
	"sync"

	"github.com/kiryu-dev/crossword/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type useCase struct {
	game   domain.GameUseCase
	proto  domain.Protocol
	logger *zap.Logger
}

func New(game domain.GameUseCase, proto domain.Protocol, logger *zap.Logger) *useCase {
	return &useCase{
		game:   game,
		proto:  proto,
		logger: logger,
	}
}

// session is the per-connection state. player is the id this connection logged in,
// empty until LOGIN succeeds.
type session struct {
	client domain.Client
	player *atomic.String
	wg     sync.WaitGroup
	logger *zap.Logger
}

// Handle serves one connection until it is closed or sends QUIT. The bound player is
// logged out on the way out and pending listeners are cancelled.
func (u *useCase) Handle(ctx context.Context, client domain.Client) error {
	ctx, cancel := context.WithCancel(ctx)
	s := &session{
		client: client,
		player: atomic.NewString(""),
		logger: u.logger.With(zap.String("client", client.Uuid())),
	}
	s.logger.Info("session started")
	defer func() {
		if playerID := s.player.Load(); playerID != "" {
			if err := u.game.Logout(playerID); err != nil {
				s.logger.Debug("logout on disconnect", zap.String("player", playerID), zap.Error(err))
			}
		}
		cancel()
		s.wg.Wait()
		s.logger.Info("session closed")
	}()
	for {
		line, err := client.ReadMessage()
		if err != nil {
			if errors.Is(err, domain.ErrConnectionClosed) {
				return nil
			}
			return errors.WithMessage(err, "read command")
		}
		if line == "" {
			continue
		}
		if u.dispatch(ctx, s, line) {
			return nil
		}
	}
}

// dispatch executes one request line and reports whether the connection should close.
func (u *useCase) dispatch(ctx context.Context, s *session, line string) bool {
	req, err := parseRequest(line)
	if err != nil {
		s.write(u.proto.Invalid("", err))
		return false
	}
	if err := u.authorize(s, req); err != nil {
		s.write(u.proto.Invalid(req.command, err))
		return false
	}
	body, err := u.execute(ctx, s, req)
	switch {
	case err != nil:
		s.logger.Debug("command rejected",
			zap.String("player", req.playerID), zap.String("command", req.command), zap.Error(err))
		s.write(u.proto.Invalid(req.command, err))
	case body != nil:
		s.write(u.proto.Valid(req.command, *body))
	}
	return err == nil && req.command == quit
}

// authorize ties the connection to a single player: only LOGIN may name a new one.
func (u *useCase) authorize(s *session, req request) error {
	bound := s.player.Load()
	switch {
	case req.command == quit:
		return nil
	case bound == "" && req.command == login:
		return nil
	case bound == "":
		return domain.ErrNotLoggedIn
	case bound != req.playerID:
		return domain.ErrNotInSession
	default:
		return nil
	}
}

// execute returns the body of the immediate response, or nil when the answer arrives
// later through a listener.
func (u *useCase) execute(ctx context.Context, s *session, req request) (*string, error) {
	var (
		body string
		err  error
	)
	id := req.playerID
	switch req.command {
	case login:
		if err = req.expect(0); err != nil {
			break
		}
		if err = u.game.Login(id); err != nil {
			break
		}
		s.player.Store(id)
		body = u.proto.Sections(u.game.PuzzlesForResponse(), u.game.AvailableMatchesForResponse())
	case logout:
		if err = u.game.Logout(id); err == nil {
			s.player.Store("")
		}
	case puzzles:
		switch len(req.args) {
		case 0:
			body = u.game.PuzzlesForResponse()
		case 1:
			body, err = u.game.PuzzleForResponse(req.args[0])
		default:
			err = req.expect(1)
		}
	case matches:
		body = u.game.AvailableMatchesForResponse()
	case newMatch:
		if len(req.args) == 2 {
			req.args = append(req.args, "")
		}
		if err = req.expect(3); err == nil {
			err = u.game.CreateMatch(id, req.args[0], req.args[1], req.args[2])
		}
	case play:
		if err = req.expect(1); err != nil {
			break
		}
		body, err = u.game.JoinMatch(id, req.args[0])
	case watch:
		u.await(ctx, s, u.game.AddWatchListener(), func(domain.Event) bool {
			return u.game.IsLoggedIn(id)
		})
		return nil, nil
	case wait:
		return nil, u.awaitMatch(ctx, s, id, u.game.AddWaitListener)
	case waitPlay:
		return nil, u.awaitMatch(ctx, s, id, u.game.AddPlayListener)
	case try, challenge:
		var (
			wordID int
			word   string
		)
		if wordID, word, err = req.wordArgs(); err != nil {
			break
		}
		if req.command == try {
			body, err = u.game.TryWord(id, wordID, word)
		} else {
			body, err = u.game.ChallengeWord(id, wordID, word)
		}
	case show:
		body, err = u.game.ShowScore(id)
	case exitWait:
		err = u.game.ExitWait(id)
	case exitPlay:
		body, err = u.game.ExitPlay(id)
	case quit:
	default:
		err = errors.WithMessagef(domain.ErrUnknownCommand, "'%s'", req.command)
	}
	if err != nil {
		return nil, err
	}
	return &body, nil
}

// awaitMatch registers a match listener whose event is delivered only while the
// player is still seated in the match that fired it.
func (u *useCase) awaitMatch(ctx context.Context, s *session, playerID string,
	add func(playerID string) (domain.Listener, error)) error {
	l, err := add(playerID)
	if err != nil {
		return err
	}
	u.await(ctx, s, l, func(ev domain.Event) bool {
		matchID, _, ok := u.game.CurrentMatch(playerID)
		return ok && matchID == ev.MatchID
	})
	return nil
}

func (u *useCase) await(ctx context.Context, s *session, l domain.Listener, deliver func(ev domain.Event) bool) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case ev, ok := <-l.Events():
			if !ok {
				return
			}
			if !deliver(ev) {
				s.logger.Debug("dropping stale event", zap.Stringer("kind", ev.Kind), zap.String("match", ev.MatchID))
				return
			}
			s.write(u.proto.Valid(ev.Kind.String(), ev.Body))
		case <-ctx.Done():
			u.game.CancelListener(l)
		}
	}()
}

func (s *session) write(line string) {
	if err := s.client.WriteMessage(line); err != nil {
		s.logger.Debug("write response", zap.Error(err))
	}
}
