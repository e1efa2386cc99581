package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"qbank/internal/core/domain"
	"qbank/internal/core/ports/driven"
	"qbank/internal/logger"
)

// Store is the in-memory question store: ordered records plus a
// combined-fingerprint index over live questions.
//
// A single mutex guards every operation. Identifiers start at 0 and
// increase strictly in insertion order; deleted history never causes
// reuse because the counter is persisted with the snapshot.
type Store struct {
	mu        sync.Mutex
	questions map[int64]*domain.Question
	order     []int64
	byFP      map[string]int64
	nextID    int64
	importSeq int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		questions: make(map[int64]*domain.Question),
		byFP:      make(map[string]int64),
	}
}

// Insert adds a question, assigning the next identifier and timestamps.
// It fails with domain.ErrAlreadyExists when a live question carries
// the same combined fingerprint.
func (s *Store) Insert(q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byFP[q.CombinedFP]; ok {
		return domain.Question{}, fmt.Errorf("question %d: %w", id, domain.ErrAlreadyExists)
	}
	return s.insertLocked(q), nil
}

// insertLocked assigns the identifier and indexes the question.
// Caller holds the mutex.
func (s *Store) insertLocked(q domain.Question) domain.Question {
	q.ID = s.nextID
	s.nextID++
	q.CreatedAt = time.Now()
	q.Superseded = false
	q.SupersededBy = 0

	stored := q.Clone()
	s.questions[stored.ID] = &stored
	s.order = append(s.order, stored.ID)
	if stored.CombinedFP != "" {
		if _, taken := s.byFP[stored.CombinedFP]; !taken {
			s.byFP[stored.CombinedFP] = stored.ID
		}
	}
	return stored.Clone()
}

// LookupFingerprint returns the live question holding the combined
// fingerprint.
func (s *Store) LookupFingerprint(fp string) (domain.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byFP[fp]
	if !ok {
		return domain.Question{}, false
	}
	return s.questions[id].Clone(), true
}

// Get retrieves a question by ID, superseded ones included.
func (s *Store) Get(id int64) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, fmt.Errorf("question %d: %w", id, domain.ErrNotFound)
	}
	return q.Clone(), nil
}

// Live returns non-superseded questions ordered by ID.
func (s *Store) Live() []domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Question, 0, len(s.order))
	for _, id := range s.order {
		if q := s.questions[id]; !q.Superseded {
			out = append(out, q.Clone())
		}
	}
	return out
}

// All returns every question ordered by ID, superseded ones included.
func (s *Store) All() []domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Question, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.questions[id].Clone())
	}
	return out
}

// Len returns the number of live questions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, q := range s.questions {
		if !q.Superseded {
			n++
		}
	}
	return n
}

// NextID returns the identifier the next insert will receive.
func (s *Store) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID
}

// Replace supersedes oldID with a question built from q. The old
// record stays for audit but leaves the fingerprint index; the
// successor is inserted under a fresh identifier.
func (s *Store) Replace(oldID int64, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.questions[oldID]
	if !ok {
		return domain.Question{}, fmt.Errorf("question %d: %w", oldID, domain.ErrNotFound)
	}
	if old.Superseded {
		return domain.Question{}, fmt.Errorf("question %d: %w", oldID, domain.ErrSuperseded)
	}
	if id, exists := s.byFP[q.CombinedFP]; exists && id != oldID {
		return domain.Question{}, fmt.Errorf("question %d: %w", id, domain.ErrAlreadyExists)
	}

	inserted := s.insertLocked(q)

	old.Superseded = true
	old.SupersededBy = inserted.ID
	old.UpdatedAt = time.Now()
	if s.byFP[old.CombinedFP] == oldID {
		delete(s.byFP, old.CombinedFP)
	}
	s.byFP[inserted.CombinedFP] = inserted.ID

	logger.Debug("question %d superseded by %d", oldID, inserted.ID)
	return inserted, nil
}

// ImportBatch appends records under fresh identifiers, ignoring the
// identifiers they arrived with, and tags them as imported. Returns
// the stored records and the batch tag.
func (s *Store) ImportBatch(records []domain.Question) ([]domain.Question, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.importSeq++
	batchID := fmt.Sprintf("import-%d", s.importSeq)

	out := make([]domain.Question, 0, len(records))
	for _, q := range records {
		q.Imported = true
		q.BatchID = batchID
		// On a live fingerprint clash the earlier question keeps the
		// index slot; the imported record is still stored.
		out = append(out, s.insertLocked(q))
	}

	logger.Info("imported %d questions as %s", len(out), batchID)
	return out, batchID
}

// SetAnswer records the correct answer for a question. Answers and
// notes are the only mutable fields after insertion.
func (s *Store) SetAnswer(id int64, answer string) error {
	return s.mutate(id, func(q *domain.Question) {
		q.Answer = domain.NormalizeAnswer(answer)
	})
}

// SetNote attaches a note to a question.
func (s *Store) SetNote(id int64, note string) error {
	return s.mutate(id, func(q *domain.Question) {
		q.Note = note
	})
}

func (s *Store) mutate(id int64, fn func(*domain.Question)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		return fmt.Errorf("question %d: %w", id, domain.ErrNotFound)
	}
	if q.Superseded {
		return fmt.Errorf("question %d: %w", id, domain.ErrSuperseded)
	}
	fn(q)
	q.UpdatedAt = time.Now()
	return nil
}

// Snapshot returns the persistence view: every record plus the ID
// counter.
func (s *Store) Snapshot() driven.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	qs := make([]domain.Question, 0, len(s.order))
	for _, id := range s.order {
		qs = append(qs, s.questions[id].Clone())
	}
	return driven.Snapshot{Questions: qs, NextID: s.nextID}
}

// Restore replaces the store contents from a snapshot and rebuilds
// the fingerprint index. Live questions win index slots; on duplicate
// live fingerprints the lowest ID keeps the slot.
func (s *Store) Restore(snap driven.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.questions = make(map[int64]*domain.Question, len(snap.Questions))
	s.order = s.order[:0]
	s.byFP = make(map[string]int64, len(snap.Questions))

	sorted := make([]domain.Question, len(snap.Questions))
	copy(sorted, snap.Questions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	maxID := int64(-1)
	for _, q := range sorted {
		stored := q.Clone()
		s.questions[stored.ID] = &stored
		s.order = append(s.order, stored.ID)
		if !stored.Superseded && stored.CombinedFP != "" {
			if _, taken := s.byFP[stored.CombinedFP]; !taken {
				s.byFP[stored.CombinedFP] = stored.ID
			}
		}
		if stored.ID > maxID {
			maxID = stored.ID
		}
	}

	s.nextID = snap.NextID
	if s.nextID <= maxID {
		s.nextID = maxID + 1
	}
}
