// Package candidates provides CandidateSource adapters: recognised
// text files, image recognition and watched directories.
package candidates

import (
	"context"
	"fmt"
	"io"
	"os"

	"qbank/internal/core/domain"
	"qbank/internal/core/ports/driven"
	"qbank/internal/logger"
	"qbank/internal/textproc"
)

// TextFileSource extracts candidates from recognised-text files.
// Files are read lazily, one at a time, in the order given.
type TextFileSource struct {
	paths  []string
	buffer []domain.Candidate
}

var _ driven.CandidateSource = (*TextFileSource)(nil)

// NewTextFiles creates a source over the given text files.
func NewTextFiles(paths []string) *TextFileSource {
	return &TextFileSource{paths: paths}
}

// Next returns the next extracted candidate, io.EOF when all files
// are exhausted.
func (s *TextFileSource) Next(ctx context.Context) (domain.Candidate, error) {
	for len(s.buffer) == 0 {
		if err := ctx.Err(); err != nil {
			return domain.Candidate{}, err
		}
		if len(s.paths) == 0 {
			return domain.Candidate{}, io.EOF
		}

		path := s.paths[0]
		s.paths = s.paths[1:]

		data, err := os.ReadFile(path)
		if err != nil {
			return domain.Candidate{}, fmt.Errorf("read %s: %w", path, err)
		}

		s.buffer = textproc.Extract(string(data), path)
		if len(s.buffer) == 0 {
			logger.Warn("no questions found in %s", path)
		}
	}

	c := s.buffer[0]
	s.buffer = s.buffer[1:]
	return c, nil
}
