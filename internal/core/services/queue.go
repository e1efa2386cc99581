package services

import (
	"sync"

	"qbank/internal/core/domain"
)

// DecisionQueue is the FIFO of pending arbitration decisions.
// Producers push without blocking; the reviewer polls. Decisions live
// only in memory and do not survive a restart.
type DecisionQueue struct {
	mu    sync.Mutex
	items []domain.PendingDecision
}

// NewDecisionQueue returns an empty queue.
func NewDecisionQueue() *DecisionQueue {
	return &DecisionQueue{}
}

// Push appends a decision. Never blocks.
func (q *DecisionQueue) Push(d domain.PendingDecision) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, d)
}

// Poll removes and returns the oldest decision. The boolean is false
// when the queue is empty.
func (q *DecisionQueue) Poll() (domain.PendingDecision, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return domain.PendingDecision{}, false
	}
	d := q.items[0]
	q.items = q.items[1:]
	return d, true
}

// Pending returns the queued decisions oldest-first without removing
// them.
func (q *DecisionQueue) Pending() []domain.PendingDecision {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]domain.PendingDecision, len(q.items))
	copy(out, q.items)
	return out
}

// Len returns the number of queued decisions.
func (q *DecisionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
