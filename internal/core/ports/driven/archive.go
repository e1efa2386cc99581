package driven

import (
	"context"

	"qbank/internal/core/domain"
)

// Snapshot is the durable form of the question store.
type Snapshot struct {
	// Questions holds every record, superseded ones included.
	Questions []domain.Question

	// NextID is the identifier the store will assign next. Kept
	// explicitly so deletions never cause ID reuse across sessions.
	NextID int64
}

// QuestionArchive persists question store snapshots.
type QuestionArchive interface {
	// Save writes the full snapshot, replacing any previous state.
	Save(ctx context.Context, snap Snapshot) error

	// Load reads the stored snapshot. A missing archive yields an
	// empty snapshot, not an error.
	Load(ctx context.Context) (Snapshot, error)
}
