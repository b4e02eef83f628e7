package domain

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	ValidMarker   = "V"
	InvalidMarker = "I"
)

var ErrInvalidSeparators = errors.New("separators must be non-empty and distinct")

// Protocol holds the three nested separators used to flatten responses into one line.
type Protocol struct {
	WordSeparator     string `yaml:"word_separator"`
	EntrySeparator    string `yaml:"entry_separator"`
	ResponseSeparator string `yaml:"response_separator"`
}

func DefaultProtocol() Protocol {
	return Protocol{
		WordSeparator:     " bs1fc ",
		EntrySeparator:    " as3fb ",
		ResponseSeparator: " cs2fd ",
	}
}

func (p Protocol) Validate() error {
	w, e, r := p.WordSeparator, p.EntrySeparator, p.ResponseSeparator
	if w == "" || e == "" || r == "" || w == e || e == r || w == r {
		return ErrInvalidSeparators
	}
	return nil
}

func (p Protocol) Fields(fields ...string) string {
	return strings.Join(fields, p.WordSeparator)
}

func (p Protocol) Entries(entries []string) string {
	return strings.Join(entries, p.EntrySeparator)
}

func (p Protocol) Sections(sections ...string) string {
	return strings.Join(sections, p.ResponseSeparator)
}

// Valid renders a success line: V, the command, then the body.
func (p Protocol) Valid(command, body string) string {
	return ValidMarker + command + p.ResponseSeparator + body
}

func (p Protocol) Invalid(command string, err error) string {
	return InvalidMarker + command + p.ResponseSeparator + err.Error()
}

// Split undoes Valid/Invalid: it returns the validity flag, the command and the body sections.
func (p Protocol) Split(line string) (valid bool, command string, sections []string) {
	if line == "" {
		return false, "", nil
	}
	valid = strings.HasPrefix(line, ValidMarker)
	parts := strings.Split(line[1:], p.ResponseSeparator)
	return valid, parts[0], parts[1:]
}
