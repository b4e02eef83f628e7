package command

import (
	"strconv"
	"strings"

	"github.com/kiryu-dev/crossword/internal/domain"
	"github.com/pkg/errors"
)

const (
	login     = "LOGIN"
	logout    = "LOGOUT"
	puzzles   = "PUZZLES"
	matches   = "MATCHES"
	newMatch  = "NEW"
	play      = "PLAY"
	watch     = "WATCH"
	wait      = "WAIT"
	waitPlay  = "WAIT_PLAY"
	try       = "TRY"
	challenge = "CHALLENGE"
	show      = "SHOW"
	exitWait  = "EXIT_WAIT"
	exitPlay  = "EXIT_PLAY"
	quit      = "QUIT"
)

type request struct {
	playerID string
	command  string
	args     []string
}

// parseRequest splits "<playerID> <COMMAND> args..." where any argument may be a
// Go-style double-quoted string.
func parseRequest(line string) (request, error) {
	tokens, err := splitArgs(line)
	if err != nil {
		return request{}, err
	}
	if len(tokens) < 2 {
		return request{}, domain.ErrMalformedCommand
	}
	return request{
		playerID: tokens[0],
		command:  strings.ToUpper(tokens[1]),
		args:     tokens[2:],
	}, nil
}

func splitArgs(s string) ([]string, error) {
	var tokens []string
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			return tokens, nil
		}
		if s[0] == '"' {
			quoted, err := strconv.QuotedPrefix(s)
			if err != nil {
				return nil, errors.WithMessage(domain.ErrMalformedCommand, "unterminated quote")
			}
			unquoted, err := strconv.Unquote(quoted)
			if err != nil {
				return nil, errors.WithMessage(domain.ErrMalformedCommand, err.Error())
			}
			tokens = append(tokens, unquoted)
			s = s[len(quoted):]
			continue
		}
		end := strings.IndexAny(s, " \t")
		if end < 0 {
			end = len(s)
		}
		tokens = append(tokens, s[:end])
		s = s[end:]
	}
}

func (r request) expect(n int) error {
	if len(r.args) != n {
		return errors.WithMessagef(domain.ErrMalformedCommand, "%s takes %d arguments", r.command, n)
	}
	return nil
}

// wordArgs reads "<wordID> <word>"; words are matched lower-case.
func (r request) wordArgs() (int, string, error) {
	if err := r.expect(2); err != nil {
		return 0, "", err
	}
	id, err := strconv.Atoi(r.args[0])
	if err != nil {
		return 0, "", errors.WithMessagef(domain.ErrMalformedCommand, "word id '%s'", r.args[0])
	}
	return id, strings.ToLower(r.args[1]), nil
}
