package domain

import (
	"github.com/pkg/errors"
)

var (
	ErrInvalidID           = errors.New("ids must be alphanumeric")
	ErrAlreadyLoggedIn     = errors.New("player is already logged in")
	ErrNotLoggedIn         = errors.New("player is not logged in")
	ErrAlreadyInMatch      = errors.New("player is already in a match")
	ErrMatchExists         = errors.New("match id is already taken")
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchNotWaiting     = errors.New("match is not waiting for a player")
	ErrMatchNotOngoing     = errors.New("match is not ongoing")
	ErrMatchDone           = errors.New("match is already done")
	ErrUnknownPuzzle       = errors.New("puzzle not found")
	ErrUnknownWord         = errors.New("word id not found")
	ErrWordOwnedByOpponent = errors.New("word was entered by the other player")
	ErrWordConfirmed       = errors.New("word is already confirmed")
	ErrWrongLength         = errors.New("word has the wrong length")
	ErrInconsistentGuess   = errors.New("word conflicts with the board")
	ErrWordNotGuessed      = errors.New("word has not been guessed")
	ErrSelfChallenge       = errors.New("cannot challenge your own word")
	ErrSameWord            = errors.New("challenge must differ from the entered word")
	ErrNotInMatch          = errors.New("player is not in a match")
	ErrNotMatchOwner       = errors.New("player did not create this match")
	ErrNotInSession        = errors.New("connection is bound to another player")
	ErrUnknownCommand      = errors.New("unknown command")
	ErrMalformedCommand    = errors.New("malformed command")
	ErrConnectionClosed    = errors.New("connection closed")
)
