package puzzlefile

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kiryu-dev/crossword/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type decoder func(r io.Reader) (domain.Puzzle, error)

var decoders = map[string]decoder{
	".puzzle": Parse,
	".yml":    DecodeYAML,
	".yaml":   DecodeYAML,
}

// LoadDir reads every template in dir keyed by puzzle name. Files that do not parse,
// inconsistent templates and repeated names are logged and skipped.
func LoadDir(dir string, logger *zap.Logger) (map[string]domain.Puzzle, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WithMessagef(err, "read puzzles dir '%s'", dir)
	}
	puzzles := make(map[string]domain.Puzzle)
	for _, f := range files {
		if !f.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, f.Name())
		decode, ok := decoders[strings.ToLower(filepath.Ext(f.Name()))]
		if !ok {
			logger.Debug("ignoring file", zap.String("path", path))
			continue
		}
		p, err := loadFile(path, decode)
		if err != nil {
			logger.Warn("skipping unreadable puzzle", zap.String("path", path), zap.Error(err))
			continue
		}
		if err := p.Validate(); err != nil {
			logger.Warn("skipping inconsistent puzzle",
				zap.String("path", path), zap.String("puzzle", p.Name()), zap.Error(err))
			continue
		}
		if _, ok := puzzles[p.Name()]; ok {
			logger.Warn("skipping duplicate puzzle name", zap.String("path", path), zap.String("puzzle", p.Name()))
			continue
		}
		puzzles[p.Name()] = p
		logger.Info("loaded puzzle", zap.String("puzzle", p.Name()), zap.Int("entries", p.Len()))
	}
	return puzzles, nil
}

func loadFile(path string, decode decoder) (domain.Puzzle, error) {
	file, err := os.Open(path)
	if err != nil {
		return domain.Puzzle{}, err
	}
	defer func() {
		_ = file.Close()
	}()
	return decode(file)
}
