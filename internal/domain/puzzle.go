package domain

import (
	"sort"
	"unicode/utf8"

	"github.com/pkg/errors"
)

type Orientation string

const (
	Across = Orientation("ACROSS")
	Down   = Orientation("DOWN")
)

var (
	ErrDuplicateWord  = errors.New("two entries share the same word")
	ErrEntriesOverlap = errors.New("entries of the same orientation overlap")
	ErrLetterMismatch = errors.New("crossing entries disagree on a letter")
)

func ParseOrientation(s string) (Orientation, bool) {
	switch Orientation(s) {
	case Across:
		return Across, true
	case Down:
		return Down, true
	default:
		return "", false
	}
}

type Point struct {
	Row int
	Col int
}

// Cell is one letter of an entry projected onto the grid.
type Cell struct {
	Point  Point
	Letter rune
}

// Entry is a single word of a puzzle. Entries compare equal by value.
type Entry struct {
	Word        string
	Clue        string
	Orientation Orientation
	Position    Point
}

func (e Entry) Len() int {
	return utf8.RuneCountInString(e.Word)
}

// WithWord returns a copy of e placed at the same position but spelling word.
func (e Entry) WithWord(word string) Entry {
	e.Word = word
	return e
}

func (e Entry) Cells() []Cell {
	cells := make([]Cell, 0, e.Len())
	i := 0
	for _, r := range e.Word {
		p := e.Position
		if e.Orientation == Across {
			p.Col += i
		} else {
			p.Row += i
		}
		cells = append(cells, Cell{Point: p, Letter: r})
		i++
	}
	return cells
}

// span returns the fixed line and the half-open [from, to) range the entry covers on it.
func (e Entry) span() (line, from, to int) {
	if e.Orientation == Across {
		return e.Position.Row, e.Position.Col, e.Position.Col + e.Len()
	}
	return e.Position.Col, e.Position.Row, e.Position.Row + e.Len()
}

func (e Entry) overlaps(other Entry) bool {
	if e.Orientation != other.Orientation {
		return false
	}
	line, from, to := e.span()
	otherLine, otherFrom, otherTo := other.span()
	return line == otherLine && from < otherTo && otherFrom < to
}

// Conflicts returns the ids of entries whose cells disagree with guess on a shared cell.
func Conflicts(guess Entry, entries map[int]Entry) []int {
	letters := make(map[Point]rune, guess.Len())
	for _, c := range guess.Cells() {
		letters[c.Point] = c.Letter
	}
	var ids []int
	for id, entry := range entries {
		for _, c := range entry.Cells() {
			if r, ok := letters[c.Point]; ok && r != c.Letter {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Ints(ids)
	return ids
}

// Puzzle is an immutable crossword template. Entry ids are stable integers.
type Puzzle struct {
	name        string
	description string
	entries     map[int]Entry
}

// NewPuzzle numbers entries by their position in the slice.
func NewPuzzle(name, description string, entries []Entry) Puzzle {
	m := make(map[int]Entry, len(entries))
	for i, e := range entries {
		m[i] = e
	}
	return Puzzle{
		name:        name,
		description: description,
		entries:     m,
	}
}

func (p Puzzle) Name() string {
	return p.name
}

func (p Puzzle) Description() string {
	return p.description
}

func (p Puzzle) Len() int {
	return len(p.entries)
}

func (p Puzzle) Entry(id int) (Entry, bool) {
	e, ok := p.entries[id]
	return e, ok
}

func (p Puzzle) Entries() map[int]Entry {
	m := make(map[int]Entry, len(p.entries))
	for id, e := range p.entries {
		m[id] = e
	}
	return m
}

// IDs returns entry ids in ascending order.
func (p Puzzle) IDs() []int {
	return SortedIDs(p.entries)
}

func (p Puzzle) IsConsistent() bool {
	return p.Validate() == nil
}

// Validate reports the first reason the template cannot be played: a repeated word,
// two same-direction entries sharing any cell, or crossing entries with different letters.
func (p Puzzle) Validate() error {
	ids := p.IDs()
	letters := make(map[Point]rune)
	for _, id := range ids {
		for _, c := range p.entries[id].Cells() {
			if r, ok := letters[c.Point]; ok && r != c.Letter {
				return errors.WithMessagef(ErrLetterMismatch, "entry %d at (%d,%d)", id, c.Point.Row, c.Point.Col)
			}
			letters[c.Point] = c.Letter
		}
	}
	for i, id := range ids {
		current := p.entries[id]
		for _, otherID := range ids[i+1:] {
			other := p.entries[otherID]
			if current.Word == other.Word && current != other {
				return errors.WithMessagef(ErrDuplicateWord, "entries %d and %d", id, otherID)
			}
			if current.overlaps(other) {
				return errors.WithMessagef(ErrEntriesOverlap, "entries %d and %d", id, otherID)
			}
		}
	}
	return nil
}

func SortedIDs[V any](m map[int]V) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
