package domain

type MatchState string

const (
	Waiting = MatchState("WAITING")
	Ongoing = MatchState("ONGOING")
	Done    = MatchState("DONE")
)

// Guess is an active entry on a match board together with the player who entered it.
type Guess struct {
	PlayerID string
	Entry    Entry
}

// Score is a rendered snapshot of one seat.
type Score struct {
	PlayerID        string
	ChallengePoints int
	TotalPoints     int
}

// MatchInfo describes a match in the available list.
type MatchInfo struct {
	MatchID     string `json:"match_id"`
	Puzzle      string `json:"puzzle"`
	Description string `json:"description"`
}

type EventKind byte

const (
	WatchEvent = EventKind(iota)
	WaitEvent
	PlayEvent
)

func (k EventKind) String() string {
	switch k {
	case WatchEvent:
		return "WATCH"
	case WaitEvent:
		return "WAIT"
	case PlayEvent:
		return "WAIT_PLAY"
	default:
		return "UNKNOWN"
	}
}

// Event is delivered to a listener exactly once. Body is rendered while the
// triggering mutation still holds the game lock.
type Event struct {
	Kind    EventKind
	MatchID string
	Body    string
}

// Listener is a one-shot registration. Its channel yields one event and is then
// closed; a cancelled registration is closed without an event.
type Listener interface {
	Events() <-chan Event
}
