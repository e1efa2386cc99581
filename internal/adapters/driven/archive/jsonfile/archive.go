// Package jsonfile persists question store snapshots as a single JSON
// document, the original archive layout of the question bank.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"qbank/internal/core/domain"
	"qbank/internal/core/ports/driven"
	"qbank/internal/logger"
)

// DefaultFileName is the archive file name under the app home.
const DefaultFileName = "questions_db.json"

// fileLayout is the on-disk document.
type fileLayout struct {
	Questions   []domain.Question `json:"questions"`
	NextID      int64             `json:"next_id"`
	LastUpdated time.Time         `json:"last_updated"`
}

// Archive stores snapshots in a JSON file.
type Archive struct {
	path string
}

var _ driven.QuestionArchive = (*Archive)(nil)

// New creates a JSON archive at path. If path is empty, defaults to
// ~/.qbank/questions_db.json.
func New(path string) (*Archive, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".qbank", DefaultFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	return &Archive{path: path}, nil
}

// Path returns the archive file path.
func (a *Archive) Path() string {
	return a.path
}

// Save writes the full snapshot, replacing the previous file. The
// write goes through a temporary file so a crash never leaves a
// truncated archive.
func (a *Archive) Save(ctx context.Context, snap driven.Snapshot) error {
	doc := fileLayout{
		Questions:   snap.Questions,
		NextID:      snap.NextID,
		LastUpdated: time.Now(),
	}
	if doc.Questions == nil {
		doc.Questions = []domain.Question{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding archive: %w", err)
	}

	tmp := a.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing archive: %w", err)
	}
	if err := os.Rename(tmp, a.path); err != nil {
		return fmt.Errorf("replacing archive: %w", err)
	}

	logger.Debug("saved %d questions to %s", len(doc.Questions), a.path)
	return nil
}

// Load reads the snapshot. A missing file yields an empty snapshot.
// A next_id older than the highest stored ID is corrected so restored
// stores never reuse identifiers.
func (a *Archive) Load(ctx context.Context) (driven.Snapshot, error) {
	data, err := os.ReadFile(a.path)
	if errors.Is(err, fs.ErrNotExist) {
		return driven.Snapshot{}, nil
	}
	if err != nil {
		return driven.Snapshot{}, fmt.Errorf("reading archive: %w", err)
	}

	var doc fileLayout
	if err := json.Unmarshal(data, &doc); err != nil {
		return driven.Snapshot{}, fmt.Errorf("parsing archive %s: %w", a.path, err)
	}

	next := doc.NextID
	for _, q := range doc.Questions {
		if q.ID >= next {
			next = q.ID + 1
		}
	}

	return driven.Snapshot{Questions: doc.Questions, NextID: next}, nil
}
