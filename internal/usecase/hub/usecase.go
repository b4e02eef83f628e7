package hub

import (
	"regexp"
	"sort"
	"sync"

	"github.com/kiryu-dev/crossword/internal/domain"
	"github.com/kiryu-dev/crossword/internal/usecase/match"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

type listener struct {
	id       uint64
	kind     domain.EventKind
	playerID string
	ch       chan domain.Event
}

func (l *listener) Events() <-chan domain.Event {
	return l.ch
}

// useCase is the game registry. mu is held for the whole of every mutating call,
// including listener fan-out, so each mutation and the events it fires are observed
// atomically and in one global order.
type useCase struct {
	mu          sync.Mutex
	puzzles     map[string]domain.Puzzle
	players     map[string]struct{}
	matches     map[string]*match.Match
	playerMatch map[string]string
	watchers    map[*listener]struct{}
	waiters     map[string]*listener
	playing     map[string]*listener
	listenerSeq *atomic.Uint64
	proto       domain.Protocol
	logger      *zap.Logger
}

func New(puzzles map[string]domain.Puzzle, proto domain.Protocol, logger *zap.Logger) *useCase {
	templates := make(map[string]domain.Puzzle, len(puzzles))
	for name, p := range puzzles {
		if !p.IsConsistent() {
			logger.Warn("skipping inconsistent puzzle", zap.String("puzzle", name))
			continue
		}
		templates[name] = p
	}
	return &useCase{
		puzzles:     templates,
		players:     make(map[string]struct{}),
		matches:     make(map[string]*match.Match),
		playerMatch: make(map[string]string),
		watchers:    make(map[*listener]struct{}),
		waiters:     make(map[string]*listener),
		playing:     make(map[string]*listener),
		listenerSeq: atomic.NewUint64(0),
		proto:       proto,
		logger:      logger,
	}
}

func (u *useCase) Login(playerID string) error {
	if !ValidID(playerID) {
		return domain.ErrInvalidID
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.players[playerID]; ok {
		return domain.ErrAlreadyLoggedIn
	}
	u.players[playerID] = struct{}{}
	u.logger.Info("player logged in", zap.String("player", playerID))
	return nil
}

// Logout releases the player: a waiting match is withdrawn, an ongoing one is forfeited.
func (u *useCase) Logout(playerID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.players[playerID]; !ok {
		return domain.ErrNotLoggedIn
	}
	if m, ok := u.matchOf(playerID); ok {
		switch m.State() {
		case domain.Waiting:
			u.removeMatch(m)
			u.fireWatchers()
		case domain.Ongoing:
			_ = m.Forfeit()
			u.cancel(u.playing[playerID])
			u.firePlay(m)
			u.logger.Info("match forfeited on logout", zap.String("match", m.ID()), zap.String("player", playerID))
		}
		u.detach(playerID)
	}
	u.cancel(u.waiters[playerID])
	u.cancel(u.playing[playerID])
	delete(u.players, playerID)
	u.logger.Info("player logged out", zap.String("player", playerID))
	return nil
}

func (u *useCase) CreateMatch(playerID, matchID, puzzleName, description string) error {
	if !ValidID(matchID) {
		return domain.ErrInvalidID
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.checkFree(playerID); err != nil {
		return err
	}
	if _, ok := u.matches[matchID]; ok {
		return domain.ErrMatchExists
	}
	template, ok := u.puzzles[puzzleName]
	if !ok {
		return errors.WithMessagef(domain.ErrUnknownPuzzle, "puzzle '%s'", puzzleName)
	}
	u.matches[matchID] = match.New(matchID, description, template, playerID)
	u.playerMatch[playerID] = matchID
	u.logger.Info("match created",
		zap.String("match", matchID), zap.String("puzzle", puzzleName), zap.String("player", playerID))
	u.fireWatchers()
	return nil
}

// JoinMatch seats the player and returns the play view of the freshly started match.
func (u *useCase) JoinMatch(playerID, matchID string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.checkFree(playerID); err != nil {
		return "", err
	}
	m, ok := u.matches[matchID]
	if !ok {
		return "", domain.ErrMatchNotFound
	}
	if err := m.Join(playerID); err != nil {
		return "", err
	}
	u.playerMatch[playerID] = matchID
	u.logger.Info("match started", zap.String("match", matchID),
		zap.String("player one", m.PlayerOne()), zap.String("player two", playerID))
	u.fireWatchers()
	body := u.playBody(m)
	if l, ok := u.waiters[m.PlayerOne()]; ok {
		delete(u.waiters, m.PlayerOne())
		u.fire(l, matchID, body)
	}
	return body, nil
}

// TryWord returns the guesses view produced by this move.
func (u *useCase) TryWord(playerID string, wordID int, word string) (string, error) {
	return u.play(playerID, func(m *match.Match) error {
		return m.TryWord(playerID, wordID, word)
	})
}

func (u *useCase) ChallengeWord(playerID string, wordID int, word string) (string, error) {
	return u.play(playerID, func(m *match.Match) error {
		return m.ChallengeWord(playerID, wordID, word)
	})
}

func (u *useCase) Forfeit(playerID string) error {
	_, err := u.play(playerID, func(m *match.Match) error {
		return m.Forfeit()
	})
	return err
}

// play runs one board mutation and, if it succeeded, wakes both seats' play listeners
// with the guesses view it also returns.
func (u *useCase) play(playerID string, mutate func(m *match.Match) error) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	m, ok := u.matchOf(playerID)
	if !ok {
		return "", domain.ErrNotInMatch
	}
	if err := mutate(m); err != nil {
		u.logger.Debug("move rejected", zap.String("match", m.ID()), zap.String("player", playerID), zap.Error(err))
		return "", err
	}
	if m.IsDone() {
		u.logger.Info("match finished", zap.String("match", m.ID()))
	}
	return u.firePlay(m), nil
}

// ExitWait withdraws the player's match while it still waits for an opponent.
func (u *useCase) ExitWait(playerID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	m, ok := u.matchOf(playerID)
	if !ok {
		return domain.ErrNotInMatch
	}
	if !m.IsWaiting() {
		return domain.ErrMatchNotWaiting
	}
	if m.PlayerOne() != playerID {
		return domain.ErrNotMatchOwner
	}
	u.cancel(u.waiters[playerID])
	u.removeMatch(m)
	u.detach(playerID)
	u.fireWatchers()
	return nil
}

// ExitPlay leaves the current match, forfeiting it if it is still being played.
func (u *useCase) ExitPlay(playerID string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	m, ok := u.matchOf(playerID)
	if !ok {
		return "", domain.ErrNotInMatch
	}
	if m.IsWaiting() {
		return "", domain.ErrMatchNotOngoing
	}
	u.cancel(u.playing[playerID])
	if err := m.Forfeit(); err == nil {
		u.logger.Info("match forfeited", zap.String("match", m.ID()), zap.String("player", playerID))
		u.firePlay(m)
	}
	score := m.ShowScore(u.proto)
	u.detach(playerID)
	return score, nil
}

func (u *useCase) AddWatchListener() domain.Listener {
	u.mu.Lock()
	defer u.mu.Unlock()
	l := u.newListener(domain.WatchEvent, "")
	u.watchers[l] = struct{}{}
	return l
}

// AddWaitListener fires once the player's waiting match gets an opponent,
// immediately if it already has one.
func (u *useCase) AddWaitListener(playerID string) (domain.Listener, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	m, ok := u.matchOf(playerID)
	if !ok {
		return nil, domain.ErrNotInMatch
	}
	l := u.newListener(domain.WaitEvent, playerID)
	if !m.IsWaiting() {
		u.fire(l, m.ID(), u.playBody(m))
		return l, nil
	}
	u.cancel(u.waiters[playerID])
	u.waiters[playerID] = l
	return l, nil
}

// AddPlayListener fires on the next board change of the player's match,
// immediately if the match is already done.
func (u *useCase) AddPlayListener(playerID string) (domain.Listener, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	m, ok := u.matchOf(playerID)
	if !ok {
		return nil, domain.ErrNotInMatch
	}
	if m.IsWaiting() {
		return nil, domain.ErrMatchNotOngoing
	}
	l := u.newListener(domain.PlayEvent, playerID)
	if m.IsDone() {
		u.fire(l, m.ID(), m.GuessesForResponse(u.proto))
		return l, nil
	}
	u.cancel(u.playing[playerID])
	u.playing[playerID] = l
	return l, nil
}

// CancelListener revokes a registration that has not fired yet and closes its channel.
func (u *useCase) CancelListener(dl domain.Listener) {
	l, ok := dl.(*listener)
	if !ok || l == nil {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.cancel(l)
}

func (u *useCase) IsLoggedIn(playerID string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, ok := u.players[playerID]
	return ok
}

func (u *useCase) CurrentMatch(playerID string) (string, domain.MatchState, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	m, ok := u.matchOf(playerID)
	if !ok {
		return "", "", false
	}
	return m.ID(), m.State(), true
}

func (u *useCase) PuzzleNames() []string {
	names := make([]string, 0, len(u.puzzles))
	for name := range u.puzzles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (u *useCase) AvailableMatches() []domain.MatchInfo {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.availableMatches()
}

func (u *useCase) availableMatches() []domain.MatchInfo {
	infos := make([]domain.MatchInfo, 0)
	for _, m := range u.matches {
		if !m.IsWaiting() {
			continue
		}
		infos = append(infos, domain.MatchInfo{
			MatchID:     m.ID(),
			Puzzle:      m.PuzzleName(),
			Description: m.Description(),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].MatchID < infos[j].MatchID
	})
	return infos
}

func (u *useCase) Stats() domain.Stats {
	u.mu.Lock()
	defer u.mu.Unlock()
	return domain.Stats{
		Puzzles: len(u.puzzles),
		Players: len(u.players),
		Matches: len(u.matches),
		Waiting: len(u.availableMatches()),
	}
}

func (u *useCase) checkFree(playerID string) error {
	if _, ok := u.players[playerID]; !ok {
		return domain.ErrNotLoggedIn
	}
	if _, ok := u.playerMatch[playerID]; ok {
		return domain.ErrAlreadyInMatch
	}
	return nil
}

func (u *useCase) matchOf(playerID string) (*match.Match, bool) {
	matchID, ok := u.playerMatch[playerID]
	if !ok {
		return nil, false
	}
	m, ok := u.matches[matchID]
	return m, ok
}

// detach unseats the player; the match is dropped once nobody is left in it.
func (u *useCase) detach(playerID string) {
	matchID, ok := u.playerMatch[playerID]
	if !ok {
		return
	}
	delete(u.playerMatch, playerID)
	for _, other := range u.playerMatch {
		if other == matchID {
			return
		}
	}
	delete(u.matches, matchID)
}

func (u *useCase) removeMatch(m *match.Match) {
	delete(u.matches, m.ID())
	u.logger.Info("match withdrawn", zap.String("match", m.ID()))
}

func (u *useCase) newListener(kind domain.EventKind, playerID string) *listener {
	l := &listener{
		id:       u.listenerSeq.Inc(),
		kind:     kind,
		playerID: playerID,
		ch:       make(chan domain.Event, 1),
	}
	u.logger.Debug("listener registered",
		zap.Uint64("listener", l.id), zap.Stringer("kind", kind), zap.String("player", playerID))
	return l
}

// fire delivers the single event of l and closes it. Callers hold mu and have
// already removed l from its table or never stored it.
func (u *useCase) fire(l *listener, matchID, body string) {
	l.ch <- domain.Event{Kind: l.kind, MatchID: matchID, Body: body}
	close(l.ch)
}

func (u *useCase) fireWatchers() {
	if len(u.watchers) == 0 {
		return
	}
	body := u.matchesBody()
	for l := range u.watchers {
		delete(u.watchers, l)
		u.fire(l, "", body)
	}
}

func (u *useCase) firePlay(m *match.Match) string {
	body := m.GuessesForResponse(u.proto)
	for _, playerID := range []string{m.PlayerOne(), m.PlayerTwo()} {
		if l, ok := u.playing[playerID]; ok {
			delete(u.playing, playerID)
			u.fire(l, m.ID(), body)
		}
	}
	return body
}

// cancel removes l from whichever table still holds it and closes it.
func (u *useCase) cancel(l *listener) {
	if l == nil {
		return
	}
	switch {
	case l.kind == domain.WatchEvent:
		if _, ok := u.watchers[l]; !ok {
			return
		}
		delete(u.watchers, l)
	case l.kind == domain.WaitEvent && u.waiters[l.playerID] == l:
		delete(u.waiters, l.playerID)
	case l.kind == domain.PlayEvent && u.playing[l.playerID] == l:
		delete(u.playing, l.playerID)
	default:
		return
	}
	close(l.ch)
}
