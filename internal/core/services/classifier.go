package services

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"qbank/internal/core/domain"
	"qbank/internal/fingerprint"
	"qbank/internal/similarity"
)

// classifier decides New, Duplicate or Similar for a canonicalised
// candidate. Threshold and weights are fixed at construction; mid-run
// configuration changes never shift the boundary within a session.
type classifier struct {
	store     *Store
	queue     *DecisionQueue
	threshold float64
	weights   similarity.Weights
}

// classify assumes the candidate is validated and canonicalised.
// Caller must serialise calls; the lookup and the insert have to be
// atomic so two identical candidates cannot both insert.
func (c *classifier) classify(cand domain.Candidate) (domain.Outcome, error) {
	textFP := fingerprint.Text(cand.Text)
	optsFP := fingerprint.Options(cand.Options)
	combined := fingerprint.Combined(cand.Text, cand.Options)

	if match, ok := c.store.LookupFingerprint(combined); ok {
		return domain.Outcome{
			Kind:     domain.OutcomeDuplicate,
			Question: match,
			Score:    1.0,
		}, nil
	}

	best, bestScore := c.bestMatch(cand)

	if bestScore > c.threshold {
		d := domain.PendingDecision{
			ID:        uuid.NewString(),
			Candidate: cand,
			MatchID:   best.ID,
			Score:     bestScore,
			QueuedAt:  time.Now(),
		}
		c.queue.Push(d)
		return domain.Outcome{
			Kind:       domain.OutcomeSimilar,
			Question:   best,
			Score:      bestScore,
			DecisionID: d.ID,
		}, nil
	}

	q := questionFromCandidate(cand, textFP, optsFP, combined)
	inserted, err := c.store.Insert(q)
	if errors.Is(err, domain.ErrAlreadyExists) {
		// A KeepBoth resolution landed the same fingerprint between the
		// lookup and the insert. That is a duplicate, not a failure.
		if match, ok := c.store.LookupFingerprint(combined); ok {
			return domain.Outcome{
				Kind:     domain.OutcomeDuplicate,
				Question: match,
				Score:    1.0,
			}, nil
		}
	}
	if err != nil {
		return domain.Outcome{}, err
	}
	return domain.Outcome{
		Kind:     domain.OutcomeNew,
		Question: inserted,
		Score:    bestScore,
	}, nil
}

// bestMatch scans live questions in ID order. Strict greater-than
// keeps the lowest ID on equal scores.
func (c *classifier) bestMatch(cand domain.Candidate) (domain.Question, float64) {
	var best domain.Question
	bestScore := 0.0

	for _, q := range c.store.Live() {
		score := similarity.Score(cand.Text, cand.Options, q.Text, q.Options, c.weights)
		if score > bestScore {
			best = q
			bestScore = score
		}
	}
	return best, bestScore
}

func questionFromCandidate(cand domain.Candidate, textFP, optsFP, combined string) domain.Question {
	opts := make(map[string]string, len(cand.Options))
	for k, v := range cand.Options {
		opts[k] = v
	}
	return domain.Question{
		Text:       cand.Text,
		Options:    opts,
		Answer:     cand.Answer,
		TextFP:     textFP,
		OptionsFP:  optsFP,
		CombinedFP: combined,
		Source:     cand.Source,
		ImageRef:   cand.ImageRef,
	}
}
