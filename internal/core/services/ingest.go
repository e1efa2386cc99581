package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"qbank/internal/core/domain"
	"qbank/internal/core/ports/driven"
	"qbank/internal/core/ports/driving"
	"qbank/internal/logger"
)

// IngestService validates, canonicalises and classifies candidates.
// It implements driving.Ingestor.
type IngestService struct {
	// mu serialises classification so the fingerprint lookup and the
	// insert are atomic across concurrent producers.
	mu         sync.Mutex
	classifier classifier
	settings   domain.Settings
	observer   func(domain.Outcome)
}

var _ driving.Ingestor = (*IngestService)(nil)

// NewIngestService creates the ingestion service. Settings are copied;
// later changes to the caller's copy do not affect a running session.
func NewIngestService(store *Store, queue *DecisionQueue, settings domain.Settings) *IngestService {
	return &IngestService{
		classifier: classifier{
			store:     store,
			queue:     queue,
			threshold: settings.SimilarityThreshold,
			weights:   settings.Weights,
		},
		settings: settings,
	}
}

// SetObserver registers a callback invoked after each classified
// candidate. Used for progress reporting; may be nil.
func (s *IngestService) SetObserver(fn func(domain.Outcome)) {
	s.observer = fn
}

// Classify runs one candidate through the full pipeline: structural
// validation, canonicalisation, fingerprinting, classification.
func (s *IngestService) Classify(ctx context.Context, c domain.Candidate) (domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.Outcome{}, err
	}
	if err := c.Validate(); err != nil {
		return domain.Outcome{}, err
	}

	canonical := c.Canonicalize(s.settings.Punctuation)

	s.mu.Lock()
	outcome, err := s.classifier.classify(canonical)
	s.mu.Unlock()
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("classify candidate: %w", err)
	}

	if s.observer != nil {
		s.observer(outcome)
	}
	return outcome, nil
}

// Run drains the source until io.EOF or cancellation. Cancellation is
// honoured between candidates; the in-flight candidate completes.
// Invalid candidates are counted and skipped, never retried.
func (s *IngestService) Run(ctx context.Context, src driven.CandidateSource) (driving.IngestReport, error) {
	var report driving.IngestReport

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		c, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			logger.Debug("candidate source exhausted: %d processed", report.Total())
			return report, nil
		}
		if err != nil {
			return report, fmt.Errorf("read candidate: %w", err)
		}

		outcome, err := s.Classify(ctx, c)
		if errors.Is(err, domain.ErrInvalidCandidate) {
			logger.Warn("skipping invalid candidate from %s: %v", c.Source, err)
			report.Invalid++
			continue
		}
		if err != nil {
			return report, err
		}

		switch outcome.Kind {
		case domain.OutcomeNew:
			report.New++
		case domain.OutcomeDuplicate:
			report.Duplicates++
		case domain.OutcomeSimilar:
			report.Similar++
		}
	}
}
