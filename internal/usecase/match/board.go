package match

import (
	"sync"

	"github.com/kiryu-dev/crossword/internal/domain"
)

// Board is the mutable per-match layer over an immutable answer key: pending guesses
// and confirmed (locked) entries. Confirmed ids stay in the guess layer with their owner.
type Board struct {
	mu        sync.Mutex
	correct   map[int]domain.Entry
	guesses   map[int]domain.Guess
	confirmed map[int]domain.Entry
}

func NewBoard(template domain.Puzzle) *Board {
	return &Board{
		correct:   template.Entries(),
		guesses:   make(map[int]domain.Guess),
		confirmed: make(map[int]domain.Entry),
	}
}

// AddPlayerEntry places or replaces the guess at id. Confirmed ids are locked.
func (b *Board) AddPlayerEntry(id int, playerID string, entry domain.Entry) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.confirmed[id]; ok {
		return false
	}
	b.guesses[id] = domain.Guess{PlayerID: playerID, Entry: entry}
	return true
}

func (b *Board) DeletePlayerEntry(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.confirmed[id]; ok {
		return false
	}
	if _, ok := b.guesses[id]; !ok {
		return false
	}
	delete(b.guesses, id)
	return true
}

func (b *Board) AddConfirmedEntry(id int, entry domain.Entry) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.confirmed[id]; ok {
		return false
	}
	b.confirmed[id] = entry
	return true
}

func (b *Board) PlayerEntries() map[int]domain.Guess {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := make(map[int]domain.Guess, len(b.guesses))
	for id, g := range b.guesses {
		m[id] = g
	}
	return m
}

func (b *Board) ConfirmedEntries() map[int]domain.Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copyEntries(b.confirmed)
}

func (b *Board) CorrectEntries() map[int]domain.Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copyEntries(b.correct)
}

// FlattenedPlayerEntries drops ownership from the guess layer.
func (b *Board) FlattenedPlayerEntries() map[int]domain.Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := make(map[int]domain.Entry, len(b.guesses))
	for id, g := range b.guesses {
		m[id] = g.Entry
	}
	return m
}

func (b *Board) IsConfirmed(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.confirmed[id]
	return ok
}

func copyEntries(src map[int]domain.Entry) map[int]domain.Entry {
	m := make(map[int]domain.Entry, len(src))
	for id, e := range src {
		m[id] = e
	}
	return m
}
