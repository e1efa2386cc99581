package domain

import "time"

// Resolution is the reviewer's choice for a pending decision.
type Resolution string

const (
	// ResolutionAdoptExisting keeps the stored question and discards
	// the candidate.
	ResolutionAdoptExisting Resolution = "adopt_existing"

	// ResolutionReplace supersedes the stored question with a new
	// question built from the candidate.
	ResolutionReplace Resolution = "replace"

	// ResolutionKeepBoth inserts the candidate as a separate question
	// alongside the stored one.
	ResolutionKeepBoth Resolution = "keep_both"

	// ResolutionDiscard drops the candidate without touching the store.
	ResolutionDiscard Resolution = "discard"
)

// AllResolutions lists the choices in presentation order.
func AllResolutions() []Resolution {
	return []Resolution{
		ResolutionAdoptExisting,
		ResolutionReplace,
		ResolutionKeepBoth,
		ResolutionDiscard,
	}
}

// IsValid checks if the resolution is one of the known variants.
func (r Resolution) IsValid() bool {
	switch r {
	case ResolutionAdoptExisting, ResolutionReplace, ResolutionKeepBoth, ResolutionDiscard:
		return true
	}
	return false
}

// String returns the string representation of the resolution.
func (r Resolution) String() string {
	return string(r)
}

// Description returns a human-readable summary of the resolution.
func (r Resolution) Description() string {
	switch r {
	case ResolutionAdoptExisting:
		return "Keep the stored question, discard the candidate"
	case ResolutionReplace:
		return "Replace the stored question with the candidate"
	case ResolutionKeepBoth:
		return "Store the candidate as a separate question"
	case ResolutionDiscard:
		return "Discard the candidate"
	default:
		return "Unknown resolution"
	}
}

// PendingDecision is a similar-match awaiting human arbitration.
// The candidate is held out of the store until resolved.
type PendingDecision struct {
	// ID identifies the decision across the queue and the UI.
	ID string

	// Candidate is the canonicalised candidate that triggered the match.
	Candidate Candidate

	// MatchID is the stored question the candidate resembles.
	// The match is re-validated at resolution time; the store may have
	// changed since the decision was queued.
	MatchID int64

	// Score is the weighted similarity at classification time.
	Score float64

	// QueuedAt is when the decision entered the queue.
	QueuedAt time.Time
}
