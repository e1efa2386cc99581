package driving

import (
	"context"

	"qbank/internal/core/domain"
)

// Arbiter exposes the pending-decision queue to reviewers.
type Arbiter interface {
	// Poll removes and returns the oldest pending decision. The
	// boolean is false when the queue is empty; Poll never blocks.
	Poll() (domain.PendingDecision, bool)

	// Pending returns the queued decisions oldest-first without
	// removing them.
	Pending() []domain.PendingDecision

	// Resolve applies the reviewer's choice and returns the surviving
	// record: the stored match for AdoptExisting, the inserted
	// question for Replace and KeepBoth, the zero value for Discard.
	// The decision's match is re-validated against the current store;
	// a vanished or superseded match yields domain.ErrStaleDecision.
	Resolve(ctx context.Context, d domain.PendingDecision, r domain.Resolution) (domain.Question, error)
}
