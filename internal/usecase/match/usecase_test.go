package match

import (
	"testing"

	"github.com/kiryu-dev/crossword/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// crossPuzzle has two words sharing the letter t at (0,2).
func crossPuzzle() domain.Puzzle {
	return domain.NewPuzzle("Cross", "two crossing words", []domain.Entry{
		{Word: "cat", Clue: "feline", Orientation: domain.Across, Position: domain.Point{Row: 0, Col: 0}},
		{Word: "tam", Clue: "woolly cap", Orientation: domain.Down, Position: domain.Point{Row: 0, Col: 2}},
	})
}

func ongoingMatch(t *testing.T) *Match {
	t.Helper()
	m := New("0", "this is a test", crossPuzzle(), "me")
	require.True(t, m.IsWaiting())
	require.NoError(t, m.Join("you"))
	require.True(t, m.IsOngoing())
	return m
}

func TestSimpleMatch(t *testing.T) {
	p := domain.DefaultProtocol()
	m := ongoingMatch(t)

	require.NoError(t, m.TryWord("me", 0, "mat"))
	require.ErrorIs(t, m.TryWord("you", 0, "cat"), domain.ErrWordOwnedByOpponent)
	require.NoError(t, m.ChallengeWord("you", 0, "cat"))
	require.ErrorIs(t, m.ChallengeWord("you", 1, "tam"), domain.ErrWordNotGuessed)
	require.NoError(t, m.TryWord("me", 1, "tam"))

	assert.True(t, m.IsDone())
	assert.Equal(t, "DONE cs2fd me bs1fc 0 bs1fc 1 as3fb you bs1fc 2 bs1fc 3 cs2fd you wins!", m.ShowScore(p))
	assert.Len(t, m.board.ConfirmedEntries(), 2)
}

func TestForfeitMatch(t *testing.T) {
	p := domain.DefaultProtocol()
	m := ongoingMatch(t)

	require.NoError(t, m.TryWord("me", 0, "mat"))
	require.NoError(t, m.ChallengeWord("you", 0, "cat"))
	require.NoError(t, m.Forfeit())
	assert.True(t, m.IsDone())
	require.ErrorIs(t, m.Forfeit(), domain.ErrMatchDone)
	assert.Equal(t, "DONE cs2fd me bs1fc 0 bs1fc 0 as3fb you bs1fc 2 bs1fc 3 cs2fd you wins!", m.ShowScore(p))
}

func TestForfeitRightAway(t *testing.T) {
	m := ongoingMatch(t)
	require.NoError(t, m.Forfeit())
	assert.Equal(t, "DONE cs2fd me bs1fc 0 bs1fc 0 as3fb you bs1fc 0 bs1fc 0 cs2fd Tie!", m.ShowScore(domain.DefaultProtocol()))
}

func TestForfeitConfirmsCorrectPendingGuesses(t *testing.T) {
	m := ongoingMatch(t)
	require.NoError(t, m.TryWord("me", 0, "cat"))
	require.NoError(t, m.Forfeit())

	scores := m.Scores()
	assert.Equal(t, domain.Score{PlayerID: "me", ChallengePoints: 0, TotalPoints: 1}, scores[0])
	winner, tie := m.Winner()
	assert.False(t, tie)
	assert.Equal(t, "me", winner)
}

func TestChallengeOriginalCorrect(t *testing.T) {
	m := ongoingMatch(t)
	require.NoError(t, m.TryWord("me", 0, "cat"))
	require.NoError(t, m.ChallengeWord("you", 0, "bat"))

	guesses := m.board.PlayerEntries()
	assert.Equal(t, "me", guesses[0].PlayerID)
	assert.True(t, m.board.IsConfirmed(0))
	scores := m.Scores()
	assert.Equal(t, 1, scores[0].TotalPoints)
	assert.Equal(t, -1, scores[1].ChallengePoints)

	require.ErrorIs(t, m.TryWord("me", 0, "cat"), domain.ErrWordConfirmed)
	require.ErrorIs(t, m.ChallengeWord("you", 0, "rat"), domain.ErrWordConfirmed)
	assert.True(t, m.IsOngoing())
}

func TestChallengeBothWrong(t *testing.T) {
	m := ongoingMatch(t)
	require.NoError(t, m.TryWord("me", 0, "mat"))
	require.NoError(t, m.ChallengeWord("you", 0, "bat"))

	assert.Empty(t, m.board.PlayerEntries())
	assert.Empty(t, m.board.ConfirmedEntries())
	assert.Equal(t, -1, m.Scores()[1].ChallengePoints)
	assert.Equal(t, 0, m.Scores()[0].ChallengePoints)

	require.NoError(t, m.TryWord("you", 0, "bat"), "cleared cell is free again")
}

func TestCorrectChallengeClearsConflictsWithoutPenalty(t *testing.T) {
	m := ongoingMatch(t)
	require.NoError(t, m.TryWord("me", 1, "sun"))
	require.NoError(t, m.TryWord("me", 0, "gas"))
	require.NoError(t, m.ChallengeWord("you", 0, "cat"))

	guesses := m.board.PlayerEntries()
	require.Len(t, guesses, 1)
	assert.Equal(t, domain.Guess{PlayerID: "you", Entry: crossPuzzle().Entries()[0]}, guesses[0])
	scores := m.Scores()
	assert.Equal(t, domain.Score{PlayerID: "me", ChallengePoints: 0, TotalPoints: 0}, scores[0])
	assert.Equal(t, domain.Score{PlayerID: "you", ChallengePoints: 2, TotalPoints: 3}, scores[1])
	assert.True(t, m.IsOngoing())
}

func TestTryWordRejections(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(m *Match)
		player string
		wordID int
		word   string
		want   error
	}{
		{name: "wrong length", player: "me", wordID: 0, word: "cats", want: domain.ErrWrongLength},
		{name: "unknown word", player: "me", wordID: 7, word: "cat", want: domain.ErrUnknownWord},
		{name: "stranger", player: "stranger", wordID: 0, word: "cat", want: domain.ErrNotInMatch},
		{name: "empty seat id", player: domain.EmptyPlayerID, wordID: 0, word: "cat", want: domain.ErrNotInMatch},
		{
			name:   "crossing letter differs",
			setup:  func(m *Match) { require.NoError(t, m.TryWord("me", 0, "mat")) },
			player: "you", wordID: 1, word: "sun", want: domain.ErrInconsistentGuess,
		},
		{
			name:   "owned by opponent",
			setup:  func(m *Match) { require.NoError(t, m.TryWord("me", 0, "mat")) },
			player: "you", wordID: 0, word: "cat", want: domain.ErrWordOwnedByOpponent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ongoingMatch(t)
			if tt.setup != nil {
				tt.setup(m)
			}
			before := m.board.PlayerEntries()
			require.ErrorIs(t, m.TryWord(tt.player, tt.wordID, tt.word), tt.want)
			assert.Equal(t, before, m.board.PlayerEntries())
		})
	}
}

func TestTryWordOverwritesOwnGuess(t *testing.T) {
	m := ongoingMatch(t)
	require.NoError(t, m.TryWord("me", 0, "mat"))
	require.NoError(t, m.TryWord("me", 0, "rat"))
	assert.Equal(t, "rat", m.board.PlayerEntries()[0].Entry.Word)
}

func TestChallengeRejections(t *testing.T) {
	m := ongoingMatch(t)
	require.NoError(t, m.TryWord("me", 0, "mat"))

	require.ErrorIs(t, m.ChallengeWord("me", 0, "cat"), domain.ErrSelfChallenge)
	require.ErrorIs(t, m.ChallengeWord("you", 0, "mat"), domain.ErrSameWord)
	require.ErrorIs(t, m.ChallengeWord("you", 0, "cattle"), domain.ErrWrongLength)
	require.ErrorIs(t, m.ChallengeWord("you", 1, "tam"), domain.ErrWordNotGuessed)
	assert.Equal(t, 0, m.Scores()[1].ChallengePoints)
}

func TestWaitingMatch(t *testing.T) {
	m := New("0", "waiting", crossPuzzle(), "me")
	require.ErrorIs(t, m.TryWord("me", 0, "cat"), domain.ErrMatchNotOngoing)
	require.ErrorIs(t, m.Join("me"), domain.ErrAlreadyInMatch)
	_, ok := m.Opponent("me")
	assert.False(t, ok)

	require.NoError(t, m.Join("you"))
	require.ErrorIs(t, m.Join("third"), domain.ErrMatchNotWaiting)
	opponent, ok := m.Opponent("me")
	require.True(t, ok)
	assert.Equal(t, "you", opponent)
}

func TestConfirmedWordsAreLocked(t *testing.T) {
	m := ongoingMatch(t)
	require.NoError(t, m.TryWord("me", 0, "mat"))
	require.NoError(t, m.ChallengeWord("you", 0, "cat"))
	for _, player := range []string{"me", "you"} {
		for _, word := range []string{"cat", "bat", "hat"} {
			assert.ErrorIs(t, m.TryWord(player, 0, word), domain.ErrWordConfirmed)
			assert.ErrorIs(t, m.ChallengeWord(player, 0, word), domain.ErrWordConfirmed)
		}
	}
	assert.Equal(t, crossPuzzle().Entries()[0], m.board.ConfirmedEntries()[0])
}

func TestResponses(t *testing.T) {
	p := domain.DefaultProtocol()
	m := ongoingMatch(t)
	assert.Equal(t, "0 bs1fc 3 bs1fc feline bs1fc ACROSS bs1fc 0 bs1fc 0 as3fb 1 bs1fc 3 bs1fc woolly cap bs1fc DOWN bs1fc 0 bs1fc 2",
		m.PuzzleForResponse(p))

	require.NoError(t, m.TryWord("me", 0, "mat"))
	assert.Equal(t, "ONGOING cs2fd me bs1fc 0 bs1fc 0 as3fb you bs1fc 0 bs1fc 0 cs2fd me bs1fc F bs1fc 0 bs1fc mat bs1fc ACROSS bs1fc 0 bs1fc 0",
		m.GuessesForResponse(p))
}
