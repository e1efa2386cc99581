package driven

import (
	"context"

	"qbank/internal/core/domain"
)

// CandidateSource produces ingestion candidates.
// Sources include parsed text files, recognised images and watched
// directories.
type CandidateSource interface {
	// Next returns the next candidate. It blocks until one is
	// available, the source is exhausted (io.EOF) or ctx is done.
	Next(ctx context.Context) (domain.Candidate, error)
}
