package puzzlefile

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/kiryu-dev/crossword/internal/domain"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingHeader   = errors.New("puzzle must start with '>> \"name\" \"description\"'")
	ErrMalformedEntry  = errors.New("malformed entry")
	ErrBadOrientation  = errors.New("orientation must be ACROSS or DOWN")
	ErrDuplicateHeader = errors.New("puzzle header appears twice")
)

const quoted = `"((?:[^"\\]|\\.)*)"`

var (
	headerPattern = regexp.MustCompile(`^>>\s*` + quoted + `\s*` + quoted + `$`)
	entryPattern  = regexp.MustCompile(
		`^\(\s*([^\s,"]+)\s*,\s*` + quoted + `\s*,\s*([A-Za-z]+)\s*,\s*(\d+)\s*,\s*(\d+)\s*\)$`)
)

// Parse reads the text template format:
//
//	>> "Name" "Description"
//	// comment
//	(word, "clue", ACROSS, row, col)
//
// Entry ids follow the order of appearance.
func Parse(r io.Reader) (domain.Puzzle, error) {
	var (
		name, description string
		header            bool
		entries           []domain.Entry
	)
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if m := headerPattern.FindStringSubmatch(line); m != nil {
			if header {
				return domain.Puzzle{}, errors.WithMessagef(ErrDuplicateHeader, "line %d", n)
			}
			var err error
			if name, err = unescape(m[1]); err != nil {
				return domain.Puzzle{}, errors.WithMessagef(err, "line %d", n)
			}
			if description, err = unescape(m[2]); err != nil {
				return domain.Puzzle{}, errors.WithMessagef(err, "line %d", n)
			}
			header = true
			continue
		}
		if !header {
			return domain.Puzzle{}, errors.WithMessagef(ErrMissingHeader, "line %d", n)
		}
		entry, err := parseEntry(line)
		if err != nil {
			return domain.Puzzle{}, errors.WithMessagef(err, "line %d", n)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return domain.Puzzle{}, errors.WithMessage(err, "read puzzle")
	}
	if !header {
		return domain.Puzzle{}, ErrMissingHeader
	}
	return domain.NewPuzzle(name, description, entries), nil
}

func parseEntry(line string) (domain.Entry, error) {
	m := entryPattern.FindStringSubmatch(line)
	if m == nil {
		return domain.Entry{}, errors.WithMessagef(ErrMalformedEntry, "'%s'", line)
	}
	clue, err := unescape(m[2])
	if err != nil {
		return domain.Entry{}, err
	}
	return newEntry(m[1], clue, m[3], m[4], m[5])
}

func newEntry(word, clue, orientation, row, col string) (domain.Entry, error) {
	o, ok := domain.ParseOrientation(strings.ToUpper(orientation))
	if !ok {
		return domain.Entry{}, errors.WithMessagef(ErrBadOrientation, "got '%s'", orientation)
	}
	r, err := strconv.Atoi(row)
	if err != nil {
		return domain.Entry{}, errors.WithMessagef(ErrMalformedEntry, "row '%s'", row)
	}
	c, err := strconv.Atoi(col)
	if err != nil {
		return domain.Entry{}, errors.WithMessagef(ErrMalformedEntry, "col '%s'", col)
	}
	return domain.Entry{
		Word:        strings.ToLower(word),
		Clue:        clue,
		Orientation: o,
		Position:    domain.Point{Row: r, Col: c},
	}, nil
}

func unescape(s string) (string, error) {
	u, err := strconv.Unquote(`"` + s + `"`)
	if err != nil {
		return "", errors.WithMessagef(ErrMalformedEntry, "bad escape in '%s'", s)
	}
	return u, nil
}

type yamlPuzzle struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Entries     []yamlEntry `yaml:"entries"`
}

type yamlEntry struct {
	Word        string `yaml:"word"`
	Clue        string `yaml:"clue"`
	Orientation string `yaml:"orientation"`
	Row         int    `yaml:"row"`
	Col         int    `yaml:"col"`
}

// DecodeYAML reads the YAML template format. Entry ids follow list order.
func DecodeYAML(r io.Reader) (domain.Puzzle, error) {
	var doc yamlPuzzle
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return domain.Puzzle{}, errors.WithMessage(err, "decode yaml puzzle")
	}
	if doc.Name == "" {
		return domain.Puzzle{}, errors.WithMessage(ErrMissingHeader, "empty name")
	}
	entries := make([]domain.Entry, 0, len(doc.Entries))
	for i, e := range doc.Entries {
		if e.Word == "" || e.Row < 0 || e.Col < 0 {
			return domain.Puzzle{}, errors.WithMessagef(ErrMalformedEntry, "entry %d", i)
		}
		entry, err := newEntry(e.Word, e.Clue, e.Orientation, strconv.Itoa(e.Row), strconv.Itoa(e.Col))
		if err != nil {
			return domain.Puzzle{}, errors.WithMessagef(err, "entry %d", i)
		}
		entries = append(entries, entry)
	}
	return domain.NewPuzzle(doc.Name, doc.Description, entries), nil
}
