package driving

import (
	"context"
	"io"

	"qbank/internal/core/domain"
)

// Stats summarises the question store.
type Stats struct {
	Total      int
	Live       int
	Superseded int
	Imported   int
	Unanswered int
	Sources    []string
	NextID     int64
}

// ExportOptions control the plain-text export format.
type ExportOptions struct {
	IncludeAnswers bool
	IncludeNotes   bool
}

// ImportReport summarises one archive merge.
type ImportReport struct {
	Imported int
	Skipped  int
	BatchID  string
}

// Librarian exposes the question store to external actors.
type Librarian interface {
	// Get retrieves a question by ID, superseded ones included.
	Get(ctx context.Context, id int64) (domain.Question, error)

	// List returns live questions ordered by ID.
	List(ctx context.Context) ([]domain.Question, error)

	// Search returns live questions whose text or options contain the
	// query, ordered by ID.
	Search(ctx context.Context, query string) ([]domain.Question, error)

	// SetAnswer records the correct answer for a question.
	SetAnswer(ctx context.Context, id int64, answer string) error

	// SetNote attaches a note to a question.
	SetNote(ctx context.Context, id int64, note string) error

	// Export writes live questions to w in the numbered text format.
	Export(ctx context.Context, w io.Writer, opts ExportOptions) (int, error)

	// Import merges another archive (JSON snapshot) into the store.
	// Every incoming record is renumbered by the store and tagged as
	// imported; incoming identifiers are never honoured.
	Import(ctx context.Context, r io.Reader) (ImportReport, error)

	// Stats returns store counters.
	Stats(ctx context.Context) (Stats, error)

	// Persist writes the store through the configured archive.
	Persist(ctx context.Context) error
}
