package driving

import (
	"context"

	"qbank/internal/core/domain"
	"qbank/internal/core/ports/driven"
)

// Ingestor classifies candidates against the question store.
type Ingestor interface {
	// Classify validates, canonicalises and classifies one candidate.
	// New candidates are inserted, duplicates dropped, similar matches
	// queued for arbitration.
	Classify(ctx context.Context, c domain.Candidate) (domain.Outcome, error)

	// Run drains a candidate source until exhaustion or cancellation.
	// Cancellation is honoured between candidates; the in-flight
	// candidate always completes.
	Run(ctx context.Context, src driven.CandidateSource) (IngestReport, error)
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	New        int
	Duplicates int
	Similar    int
	Invalid    int
}

// Total returns the number of candidates processed.
func (r IngestReport) Total() int {
	return r.New + r.Duplicates + r.Similar + r.Invalid
}
