package match

import (
	"strconv"
	"sync"

	"github.com/kiryu-dev/crossword/internal/domain"
	"github.com/pkg/errors"
)

const (
	correctChallengeBonus     = 2
	incorrectChallengePenalty = -1
)

// Match is a head-to-head game over one template. WAITING -> ONGOING -> DONE.
type Match struct {
	mu          sync.Mutex
	matchID     string
	description string
	puzzle      domain.Puzzle
	board       *Board
	playerOne   *domain.Player
	playerTwo   *domain.Player
	state       domain.MatchState
}

func New(matchID, description string, template domain.Puzzle, playerOneID string) *Match {
	return &Match{
		matchID:     matchID,
		description: description,
		puzzle:      template,
		board:       NewBoard(template),
		playerOne:   domain.NewPlayer(playerOneID),
		playerTwo:   domain.EmptyPlayer(),
		state:       domain.Waiting,
	}
}

func (m *Match) ID() string {
	return m.matchID
}

func (m *Match) Description() string {
	return m.description
}

func (m *Match) PuzzleName() string {
	return m.puzzle.Name()
}

func (m *Match) State() domain.MatchState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Match) IsWaiting() bool {
	return m.State() == domain.Waiting
}

func (m *Match) IsOngoing() bool {
	return m.State() == domain.Ongoing
}

func (m *Match) IsDone() bool {
	return m.State() == domain.Done
}

func (m *Match) PlayerOne() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playerOne.ID
}

func (m *Match) PlayerTwo() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playerTwo.ID
}

// Opponent returns the other seated real player, if any.
func (m *Match) Opponent(playerID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var other *domain.Player
	switch playerID {
	case m.playerOne.ID:
		other = m.playerTwo
	case m.playerTwo.ID:
		other = m.playerOne
	default:
		return "", false
	}
	if other.IsEmpty() {
		return "", false
	}
	return other.ID, true
}

func (m *Match) Join(playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != domain.Waiting {
		return domain.ErrMatchNotWaiting
	}
	if playerID == m.playerOne.ID {
		return domain.ErrAlreadyInMatch
	}
	m.playerTwo = domain.NewPlayer(playerID)
	m.state = domain.Ongoing
	return nil
}

// TryWord places a pending guess. A player may only overwrite their own pending guess,
// and the guess must agree with every other active entry it crosses.
func (m *Match) TryWord(playerID string, wordID int, word string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	player, correct, err := m.prepare(playerID, wordID, word)
	if err != nil {
		return err
	}
	if g, ok := m.board.PlayerEntries()[wordID]; ok && g.PlayerID != player.ID {
		return domain.ErrWordOwnedByOpponent
	}
	guess := correct.WithWord(word)
	others := m.board.FlattenedPlayerEntries()
	delete(others, wordID)
	if ids := domain.Conflicts(guess, others); len(ids) > 0 {
		return errors.WithMessagef(domain.ErrInconsistentGuess, "crosses word %d", ids[0])
	}
	m.board.AddPlayerEntry(wordID, player.ID, guess)
	m.checkCompletion()
	return nil
}

// ChallengeWord disputes the opponent's pending guess at wordID. Exactly one outcome applies:
// the original was right (confirmed, challenger -1), both were wrong (cleared, challenger -1),
// or the challenger is right (challenger's word confirmed, +2, crossing conflicts cleared).
func (m *Match) ChallengeWord(playerID string, wordID int, word string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	challenger, correct, err := m.prepare(playerID, wordID, word)
	if err != nil {
		return err
	}
	original, ok := m.board.PlayerEntries()[wordID]
	switch {
	case !ok:
		return domain.ErrWordNotGuessed
	case original.PlayerID == challenger.ID:
		return domain.ErrSelfChallenge
	case original.Entry.Word == word:
		return domain.ErrSameWord
	}
	switch {
	case original.Entry.Word == correct.Word:
		m.board.AddConfirmedEntry(wordID, original.Entry)
		challenger.ChangeScore(incorrectChallengePenalty)
	case word != correct.Word:
		m.board.DeletePlayerEntry(wordID)
		challenger.ChangeScore(incorrectChallengePenalty)
	default:
		m.board.DeletePlayerEntry(wordID)
		m.board.AddPlayerEntry(wordID, challenger.ID, correct)
		m.board.AddConfirmedEntry(wordID, correct)
		challenger.ChangeScore(correctChallengeBonus)
		others := m.board.FlattenedPlayerEntries()
		delete(others, wordID)
		for _, id := range domain.Conflicts(correct, others) {
			m.board.DeletePlayerEntry(id)
		}
	}
	m.checkCompletion()
	return nil
}

// prepare runs the checks shared by try and challenge and resolves the acting seat
// and the answer for wordID.
func (m *Match) prepare(playerID string, wordID int, word string) (*domain.Player, domain.Entry, error) {
	player := m.seat(playerID)
	if player == nil {
		return nil, domain.Entry{}, domain.ErrNotInMatch
	}
	if m.state != domain.Ongoing {
		return nil, domain.Entry{}, domain.ErrMatchNotOngoing
	}
	correct, ok := m.puzzle.Entry(wordID)
	if !ok {
		return nil, domain.Entry{}, errors.WithMessagef(domain.ErrUnknownWord, "word %d", wordID)
	}
	if m.board.IsConfirmed(wordID) {
		return nil, domain.Entry{}, domain.ErrWordConfirmed
	}
	if correct.WithWord(word).Len() != correct.Len() {
		return nil, domain.Entry{}, errors.WithMessagef(domain.ErrWrongLength, "expected %d letters", correct.Len())
	}
	return player, correct, nil
}

func (m *Match) seat(playerID string) *domain.Player {
	switch {
	case playerID == domain.EmptyPlayerID:
		return nil
	case playerID == m.playerOne.ID:
		return m.playerOne
	case playerID == m.playerTwo.ID:
		return m.playerTwo
	default:
		return nil
	}
}

// Forfeit ends the match. Correct pending guesses are confirmed for scoring.
func (m *Match) Forfeit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == domain.Done {
		return domain.ErrMatchDone
	}
	m.settle()
	m.state = domain.Done
	return nil
}

// checkCompletion finishes the match once every word on the board spells its answer.
func (m *Match) checkCompletion() {
	guesses := m.board.PlayerEntries()
	for id, correct := range m.board.CorrectEntries() {
		g, ok := guesses[id]
		if !ok || g.Entry.Word != correct.Word {
			return
		}
	}
	m.settle()
	m.state = domain.Done
}

func (m *Match) settle() {
	correct := m.board.CorrectEntries()
	for id, g := range m.board.PlayerEntries() {
		if g.Entry.Word == correct[id].Word {
			m.board.AddConfirmedEntry(id, g.Entry)
		}
	}
}

// Scores returns both seats: challenge points and challenge points plus owned confirmed words.
func (m *Match) Scores() [2]domain.Score {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scores()
}

func (m *Match) scores() [2]domain.Score {
	owned := make(map[string]int, 2)
	guesses := m.board.PlayerEntries()
	for id := range m.board.ConfirmedEntries() {
		owned[guesses[id].PlayerID]++
	}
	var result [2]domain.Score
	for i, p := range []*domain.Player{m.playerOne, m.playerTwo} {
		result[i] = domain.Score{
			PlayerID:        p.ID,
			ChallengePoints: p.ChallengePoints,
			TotalPoints:     p.ChallengePoints + owned[p.ID],
		}
	}
	return result
}

// Winner is meaningful only once the match is done.
func (m *Match) Winner() (playerID string, tie bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return winner(m.scores())
}

func winner(scores [2]domain.Score) (string, bool) {
	switch {
	case scores[0].TotalPoints > scores[1].TotalPoints:
		return scores[0].PlayerID, false
	case scores[1].TotalPoints > scores[0].TotalPoints:
		return scores[1].PlayerID, false
	default:
		return "", true
	}
}

// PuzzleForResponse renders the blank puzzle of this match.
func (m *Match) PuzzleForResponse(p domain.Protocol) string {
	return RenderPuzzle(m.puzzle, p)
}

// RenderPuzzle renders a template without its answers: id, length, clue, orientation, row, col.
func RenderPuzzle(puzzle domain.Puzzle, p domain.Protocol) string {
	entries := puzzle.Entries()
	rendered := make([]string, 0, len(entries))
	for _, id := range domain.SortedIDs(entries) {
		e := entries[id]
		rendered = append(rendered, p.Fields(
			strconv.Itoa(id),
			strconv.Itoa(e.Len()),
			e.Clue,
			string(e.Orientation),
			strconv.Itoa(e.Position.Row),
			strconv.Itoa(e.Position.Col),
		))
	}
	return p.Entries(rendered)
}

// ShowScore renders the state, both seats and, when done, the result.
func (m *Match) ShowScore(p domain.Protocol) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.showScore(p)
}

func (m *Match) showScore(p domain.Protocol) string {
	scores := m.scores()
	seats := make([]string, 0, len(scores))
	for _, s := range scores {
		seats = append(seats, p.Fields(s.PlayerID, strconv.Itoa(s.ChallengePoints), strconv.Itoa(s.TotalPoints)))
	}
	sections := []string{string(m.state), p.Entries(seats)}
	if m.state == domain.Done {
		if id, tie := winner(scores); tie {
			sections = append(sections, "Tie!")
		} else {
			sections = append(sections, id+" wins!")
		}
	}
	return p.Sections(sections...)
}

// GuessesForResponse renders the score followed by every active entry:
// owner, confirmed flag, id, word, orientation, row, col.
func (m *Match) GuessesForResponse(p domain.Protocol) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	guesses := m.board.PlayerEntries()
	confirmed := m.board.ConfirmedEntries()
	rendered := make([]string, 0, len(guesses))
	for _, id := range domain.SortedIDs(guesses) {
		g := guesses[id]
		flag := "F"
		if _, ok := confirmed[id]; ok {
			flag = "T"
		}
		rendered = append(rendered, p.Fields(
			g.PlayerID,
			flag,
			strconv.Itoa(id),
			g.Entry.Word,
			string(g.Entry.Orientation),
			strconv.Itoa(g.Entry.Position.Row),
			strconv.Itoa(g.Entry.Position.Col),
		))
	}
	return p.Sections(m.showScore(p), p.Entries(rendered))
}
