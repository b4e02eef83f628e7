package domain

type Stats struct {
	Puzzles int `json:"puzzles"`
	Players int `json:"players"`
	Matches int `json:"matches"`
	Waiting int `json:"waiting"`
}

type HealthCheckResponse struct {
	Stats
	Connections int64 `json:"connections"`
}

// GameUseCase is the process-wide registry of players, puzzles and matches.
// Every mutating call is linearized and fires satisfied listeners before returning.
type GameUseCase interface {
	Login(playerID string) error
	Logout(playerID string) error
	CreateMatch(playerID, matchID, puzzleName, description string) error
	// JoinMatch, TryWord and ChallengeWord return the view rendered by the same
	// locked call that applied the change.
	JoinMatch(playerID, matchID string) (string, error)
	TryWord(playerID string, wordID int, word string) (string, error)
	ChallengeWord(playerID string, wordID int, word string) (string, error)
	Forfeit(playerID string) error
	ExitWait(playerID string) error
	// ExitPlay returns the final score view rendered before the player is unseated.
	ExitPlay(playerID string) (string, error)

	AddWatchListener() Listener
	AddWaitListener(playerID string) (Listener, error)
	AddPlayListener(playerID string) (Listener, error)
	CancelListener(l Listener)

	IsLoggedIn(playerID string) bool
	CurrentMatch(playerID string) (matchID string, state MatchState, ok bool)
	PuzzleNames() []string
	AvailableMatches() []MatchInfo
	Stats() Stats

	PuzzlesForResponse() string
	PuzzleForResponse(name string) (string, error)
	AvailableMatchesForResponse() string
	PlayForResponse(playerID string) (string, error)
	GuessesForResponse(playerID string) (string, error)
	ShowScore(playerID string) (string, error)
}
