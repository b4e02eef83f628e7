package hub

import (
	"github.com/kiryu-dev/crossword/internal/domain"
	"github.com/kiryu-dev/crossword/internal/usecase/match"
	"github.com/pkg/errors"
)

func (u *useCase) PuzzlesForResponse() string {
	return u.proto.Entries(u.PuzzleNames())
}

func (u *useCase) PuzzleForResponse(name string) (string, error) {
	template, ok := u.puzzles[name]
	if !ok {
		return "", errors.WithMessagef(domain.ErrUnknownPuzzle, "puzzle '%s'", name)
	}
	return match.RenderPuzzle(template, u.proto), nil
}

func (u *useCase) AvailableMatchesForResponse() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.matchesBody()
}

// PlayForResponse renders the blank puzzle followed by the current guesses.
func (u *useCase) PlayForResponse(playerID string) (string, error) {
	return u.render(playerID, u.playBody)
}

func (u *useCase) GuessesForResponse(playerID string) (string, error) {
	return u.render(playerID, func(m *match.Match) string {
		return m.GuessesForResponse(u.proto)
	})
}

func (u *useCase) ShowScore(playerID string) (string, error) {
	return u.render(playerID, func(m *match.Match) string {
		return m.ShowScore(u.proto)
	})
}

func (u *useCase) render(playerID string, fn func(m *match.Match) string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	m, ok := u.matchOf(playerID)
	if !ok {
		return "", domain.ErrNotInMatch
	}
	return fn(m), nil
}

func (u *useCase) playBody(m *match.Match) string {
	return u.proto.Sections(m.PuzzleForResponse(u.proto), m.GuessesForResponse(u.proto))
}

func (u *useCase) matchesBody() string {
	infos := u.availableMatches()
	rendered := make([]string, 0, len(infos))
	for _, info := range infos {
		rendered = append(rendered, u.proto.Fields(info.MatchID, info.Puzzle, info.Description))
	}
	return u.proto.Entries(rendered)
}
