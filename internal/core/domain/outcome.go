package domain

// OutcomeKind classifies an ingested candidate against the store.
type OutcomeKind string

const (
	// OutcomeNew means no stored question matched; the candidate was
	// inserted as a new question.
	OutcomeNew OutcomeKind = "new"

	// OutcomeDuplicate means a stored question shares the candidate's
	// combined fingerprint; nothing was inserted.
	OutcomeDuplicate OutcomeKind = "duplicate"

	// OutcomeSimilar means a stored question scored above the
	// similarity threshold; a pending decision was queued.
	OutcomeSimilar OutcomeKind = "similar"
)

// IsValid checks if the outcome kind is one of the known variants.
func (k OutcomeKind) IsValid() bool {
	switch k {
	case OutcomeNew, OutcomeDuplicate, OutcomeSimilar:
		return true
	}
	return false
}

// String returns the string representation of the outcome kind.
func (k OutcomeKind) String() string {
	return string(k)
}

// Outcome is the result of classifying one candidate.
type Outcome struct {
	Kind OutcomeKind

	// Question is the inserted question for OutcomeNew, and the
	// matched stored question for OutcomeDuplicate and OutcomeSimilar.
	Question Question

	// Score is the weighted similarity against the best match.
	// 1.0 for duplicates, 0 for new questions with no near match.
	Score float64

	// DecisionID identifies the queued pending decision for
	// OutcomeSimilar; empty otherwise.
	DecisionID string
}
