package services

import (
	"context"
	"errors"
	"fmt"

	"qbank/internal/core/domain"
	"qbank/internal/core/ports/driving"
	"qbank/internal/fingerprint"
	"qbank/internal/logger"
)

// ArbitrationService applies reviewer decisions to the store.
// It implements driving.Arbiter.
type ArbitrationService struct {
	store *Store
	queue *DecisionQueue
}

var _ driving.Arbiter = (*ArbitrationService)(nil)

// NewArbitrationService creates the arbitration service.
func NewArbitrationService(store *Store, queue *DecisionQueue) *ArbitrationService {
	return &ArbitrationService{store: store, queue: queue}
}

// Poll removes and returns the oldest pending decision.
func (s *ArbitrationService) Poll() (domain.PendingDecision, bool) {
	return s.queue.Poll()
}

// Pending returns queued decisions oldest-first.
func (s *ArbitrationService) Pending() []domain.PendingDecision {
	return s.queue.Pending()
}

// Resolve applies the reviewer's choice for a pending decision.
// The store may have changed since the decision was queued, so the
// matched question is re-validated before anything is applied.
func (s *ArbitrationService) Resolve(ctx context.Context, d domain.PendingDecision, r domain.Resolution) (domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return domain.Question{}, err
	}
	if !r.IsValid() {
		return domain.Question{}, fmt.Errorf("resolution %q: %w", r, domain.ErrInvalidCandidate)
	}

	if r == domain.ResolutionDiscard {
		logger.Debug("decision %s: candidate discarded", d.ID)
		return domain.Question{}, nil
	}

	match, err := s.store.Get(d.MatchID)
	if err != nil {
		return domain.Question{}, fmt.Errorf("%w: match %d gone", domain.ErrStaleDecision, d.MatchID)
	}
	if match.Superseded {
		return domain.Question{}, fmt.Errorf("%w: match %d superseded by %d", domain.ErrStaleDecision, d.MatchID, match.SupersededBy)
	}

	switch r {
	case domain.ResolutionAdoptExisting:
		logger.Debug("decision %s: adopted question %d", d.ID, match.ID)
		return match, nil

	case domain.ResolutionReplace:
		q := candidateQuestion(d.Candidate)
		inserted, err := s.store.Replace(d.MatchID, q)
		if err != nil {
			return domain.Question{}, fmt.Errorf("replace question %d: %w", d.MatchID, err)
		}
		return inserted, nil

	case domain.ResolutionKeepBoth:
		q := candidateQuestion(d.Candidate)
		inserted, err := s.store.Insert(q)
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Identical content landed since the decision was queued.
			return domain.Question{}, fmt.Errorf("%w: candidate now duplicates the store", domain.ErrStaleDecision)
		}
		if err != nil {
			return domain.Question{}, fmt.Errorf("keep candidate: %w", err)
		}
		return inserted, nil

	default:
		return domain.Question{}, fmt.Errorf("resolution %q: %w", r, domain.ErrInvalidCandidate)
	}
}

// candidateQuestion fingerprints a canonicalised candidate into a
// storable question.
func candidateQuestion(c domain.Candidate) domain.Question {
	return questionFromCandidate(
		c,
		fingerprint.Text(c.Text),
		fingerprint.Options(c.Options),
		fingerprint.Combined(c.Text, c.Options),
	)
}
