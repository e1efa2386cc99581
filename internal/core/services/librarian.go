package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"qbank/internal/core/domain"
	"qbank/internal/core/ports/driven"
	"qbank/internal/core/ports/driving"
	"qbank/internal/logger"
)

// LibrarianService exposes the question store to the CLI.
// It implements driving.Librarian.
type LibrarianService struct {
	store   *Store
	archive driven.QuestionArchive
}

var _ driving.Librarian = (*LibrarianService)(nil)

// NewLibrarianService creates the librarian over a store and its
// archive.
func NewLibrarianService(store *Store, archive driven.QuestionArchive) *LibrarianService {
	return &LibrarianService{store: store, archive: archive}
}

// Get retrieves a question by ID.
func (s *LibrarianService) Get(ctx context.Context, id int64) (domain.Question, error) {
	return s.store.Get(id)
}

// List returns live questions ordered by ID.
func (s *LibrarianService) List(ctx context.Context) ([]domain.Question, error) {
	return s.store.Live(), nil
}

// Search returns live questions whose text or option values contain
// the query, case-insensitively.
func (s *LibrarianService) Search(ctx context.Context, query string) ([]domain.Question, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	var out []domain.Question
	for _, q := range s.store.Live() {
		if questionMatches(q, needle) {
			out = append(out, q)
		}
	}
	return out, nil
}

func questionMatches(q domain.Question, needle string) bool {
	if strings.Contains(strings.ToLower(q.Text), needle) {
		return true
	}
	for _, v := range q.Options {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// SetAnswer records the correct answer for a question.
func (s *LibrarianService) SetAnswer(ctx context.Context, id int64, answer string) error {
	normalized := domain.NormalizeAnswer(answer)
	q, err := s.store.Get(id)
	if err != nil {
		return err
	}
	for _, r := range normalized {
		if _, ok := q.Options[string(r)]; !ok {
			return fmt.Errorf("%w: answer label %s has no matching option", domain.ErrInvalidCandidate, string(r))
		}
	}
	return s.store.SetAnswer(id, normalized)
}

// SetNote attaches a note to a question.
func (s *LibrarianService) SetNote(ctx context.Context, id int64, note string) error {
	return s.store.SetNote(id, note)
}

// Export writes live questions in the numbered text format:
//
//	1.(A)question text
//	A.option B.option C.option D.option
//	Note: annotation
//
// The leading number is the 1-based display position, not the stored
// identifier.
func (s *LibrarianService) Export(ctx context.Context, w io.Writer, opts driving.ExportOptions) (int, error) {
	live := s.store.Live()

	for i, q := range live {
		header := fmt.Sprintf("%d.", i+1)
		if opts.IncludeAnswers && q.Answer != "" {
			header += fmt.Sprintf("(%s)", q.Answer)
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", header, q.Text); err != nil {
			return i, fmt.Errorf("export question %d: %w", q.ID, err)
		}

		parts := make([]string, 0, len(q.Options))
		for _, label := range q.OptionLabels() {
			parts = append(parts, fmt.Sprintf("%s.%s", label, q.Options[label]))
		}
		if _, err := fmt.Fprintln(w, strings.Join(parts, " ")); err != nil {
			return i, fmt.Errorf("export question %d: %w", q.ID, err)
		}

		if opts.IncludeNotes && q.Note != "" {
			if _, err := fmt.Fprintf(w, "Note: %s\n", q.Note); err != nil {
				return i, fmt.Errorf("export question %d: %w", q.ID, err)
			}
		}

		if i < len(live)-1 {
			if _, err := fmt.Fprintln(w); err != nil {
				return i, fmt.Errorf("export: %w", err)
			}
		}
	}

	logger.Info("exported %d questions", len(live))
	return len(live), nil
}

// archiveFile mirrors the JSON archive layout for imports.
type archiveFile struct {
	Questions []domain.Question `json:"questions"`
	NextID    int64             `json:"next_id"`
}

// Import merges another JSON archive into the store. Incoming
// identifiers are discarded; every accepted record gets a fresh ID
// and an imported provenance tag. Records without text or options are
// skipped.
func (s *LibrarianService) Import(ctx context.Context, r io.Reader) (driving.ImportReport, error) {
	var file archiveFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return driving.ImportReport{}, fmt.Errorf("parse import archive: %w", err)
	}

	accepted := make([]domain.Question, 0, len(file.Questions))
	skipped := 0
	for _, q := range file.Questions {
		if strings.TrimSpace(q.Text) == "" || len(q.Options) == 0 {
			skipped++
			continue
		}
		accepted = append(accepted, q)
	}

	stored, batchID := s.store.ImportBatch(accepted)
	return driving.ImportReport{
		Imported: len(stored),
		Skipped:  skipped,
		BatchID:  batchID,
	}, nil
}

// Stats returns store counters.
func (s *LibrarianService) Stats(ctx context.Context) (driving.Stats, error) {
	all := s.store.All()

	stats := driving.Stats{
		Total:  len(all),
		NextID: s.store.NextID(),
	}
	sources := make(map[string]bool)
	for _, q := range all {
		if q.Superseded {
			stats.Superseded++
			continue
		}
		stats.Live++
		if q.Imported {
			stats.Imported++
		}
		if q.Answer == "" {
			stats.Unanswered++
		}
		if q.Source != "" {
			sources[q.Source] = true
		}
	}
	for src := range sources {
		stats.Sources = append(stats.Sources, src)
	}
	sort.Strings(stats.Sources)
	return stats, nil
}

// Persist writes the store snapshot through the archive.
func (s *LibrarianService) Persist(ctx context.Context) error {
	if err := s.archive.Save(ctx, s.store.Snapshot()); err != nil {
		return fmt.Errorf("persist store: %w", err)
	}
	return nil
}
