package candidates

import (
	"context"
	"fmt"
	"io"

	"qbank/internal/core/domain"
	"qbank/internal/core/ports/driven"
	"qbank/internal/logger"
	"qbank/internal/textproc"
)

// ImageSource recognises images and extracts candidates from the
// transcribed text.
type ImageSource struct {
	recogniser driven.Recogniser
	paths      []string

	// mergePages treats the images as consecutive pages of one
	// capture: all pages are recognised up front, overlap-merged, and
	// extracted as a single text.
	mergePages bool

	buffer []domain.Candidate
	done   bool
}

var _ driven.CandidateSource = (*ImageSource)(nil)

// NewImages creates a source that recognises each image independently.
func NewImages(r driven.Recogniser, paths []string) *ImageSource {
	return &ImageSource{recogniser: r, paths: paths}
}

// NewImagePages creates a source that treats the images as overlapping
// pages of a single capture.
func NewImagePages(r driven.Recogniser, paths []string) *ImageSource {
	return &ImageSource{recogniser: r, paths: paths, mergePages: true}
}

// Next returns the next candidate, io.EOF when every image has been
// processed.
func (s *ImageSource) Next(ctx context.Context) (domain.Candidate, error) {
	if s.mergePages {
		return s.nextMerged(ctx)
	}

	for len(s.buffer) == 0 {
		if err := ctx.Err(); err != nil {
			return domain.Candidate{}, err
		}
		if len(s.paths) == 0 {
			return domain.Candidate{}, io.EOF
		}

		path := s.paths[0]
		s.paths = s.paths[1:]

		text, err := s.recogniser.ExtractText(ctx, path)
		if err != nil {
			return domain.Candidate{}, fmt.Errorf("recognise %s: %w", path, err)
		}

		s.buffer = stampImage(textproc.Extract(text, path), path)
		if len(s.buffer) == 0 {
			logger.Warn("no questions recognised in %s", path)
		}
	}

	return s.pop(), nil
}

func (s *ImageSource) nextMerged(ctx context.Context) (domain.Candidate, error) {
	if !s.done {
		pages := make([]string, 0, len(s.paths))
		for _, path := range s.paths {
			if err := ctx.Err(); err != nil {
				return domain.Candidate{}, err
			}
			text, err := s.recogniser.ExtractText(ctx, path)
			if err != nil {
				return domain.Candidate{}, fmt.Errorf("recognise %s: %w", path, err)
			}
			pages = append(pages, text)
		}

		merged := textproc.NewMerger().Merge(pages)
		source := ""
		if len(s.paths) > 0 {
			source = s.paths[0]
		}
		s.buffer = textproc.Extract(merged, source)
		s.done = true
	}

	if len(s.buffer) == 0 {
		return domain.Candidate{}, io.EOF
	}
	return s.pop(), nil
}

func (s *ImageSource) pop() domain.Candidate {
	c := s.buffer[0]
	s.buffer = s.buffer[1:]
	return c
}

func stampImage(cs []domain.Candidate, path string) []domain.Candidate {
	for i := range cs {
		cs[i].ImageRef = path
	}
	return cs
}
