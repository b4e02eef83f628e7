package domain

const EmptyPlayerID = "EMPTY_PLAYER"

// Player is a seat in a match. It is owned by the match it sits in.
type Player struct {
	ID              string
	ChallengePoints int
}

func NewPlayer(id string) *Player {
	return &Player{ID: id}
}

func EmptyPlayer() *Player {
	return NewPlayer(EmptyPlayerID)
}

func (p *Player) IsEmpty() bool {
	return p.ID == EmptyPlayerID
}

func (p *Player) ChangeScore(delta int) {
	p.ChallengePoints += delta
}
