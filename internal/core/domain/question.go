package domain

import (
	"sort"
	"strings"
	"time"
)

// Question represents a stored question record.
// It is the canonical representation after punctuation normalisation
// and fingerprinting; text and options are never mutated once stored.
type Question struct {
	// ID is the store-assigned identifier, unique and strictly
	// increasing in insertion order within a session.
	ID int64 `json:"id"`

	// Text is the canonicalised question text.
	Text string `json:"question"`

	// Options maps option labels (A, B, ...) to option text.
	// Labels are unique; order is irrelevant to identity but labels
	// are sorted for display.
	Options map[string]string `json:"options"`

	// Answer is the correct-answer label set as a sorted string
	// ("AB" for a multi-answer question). Empty means unanswered.
	Answer string `json:"correct_answer"`

	// Note is a free-form annotation.
	Note string `json:"note,omitempty"`

	// TextFP is the digest of the canonicalised question text.
	TextFP string `json:"question_hash"`

	// OptionsFP is the digest of the sorted option values.
	OptionsFP string `json:"options_hash"`

	// CombinedFP is the deduplication key derived from TextFP and
	// OptionsFP. The store holds at most one live question per value.
	CombinedFP string `json:"combined_hash"`

	// Source records where the question came from (image path, file,
	// import origin).
	Source string `json:"source,omitempty"`

	// Imported marks questions brought in through a batch import.
	Imported bool `json:"imported,omitempty"`

	// BatchID groups questions ingested or imported together.
	BatchID string `json:"batch_id,omitempty"`

	// ImageRef is an optional reference to the source image, shared by
	// all records carrying the same combined fingerprint.
	ImageRef string `json:"image_path,omitempty"`

	// Superseded marks a question replaced through arbitration.
	// Superseded questions stay in the store for audit but are
	// invisible to classification.
	Superseded bool `json:"superseded,omitempty"`

	// SupersededBy is the ID of the replacing question.
	// Only meaningful when Superseded is true.
	SupersededBy int64 `json:"superseded_by,omitempty"`

	// CreatedAt is when the question was inserted.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the answer or note was last changed.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// OptionLabels returns the option labels in sorted order for display.
func (q *Question) OptionLabels() []string {
	labels := make([]string, 0, len(q.Options))
	for label := range q.Options {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Clone returns a deep copy of the question.
func (q *Question) Clone() Question {
	out := *q
	out.Options = make(map[string]string, len(q.Options))
	for k, v := range q.Options {
		out.Options[k] = v
	}
	return out
}

// NormalizeAnswer sorts and deduplicates answer labels, so "BA" and
// "AB" denote the same answer set.
func NormalizeAnswer(answer string) string {
	seen := make(map[rune]bool, len(answer))
	labels := make([]string, 0, len(answer))
	for _, r := range strings.ToUpper(strings.TrimSpace(answer)) {
		if seen[r] {
			continue
		}
		seen[r] = true
		labels = append(labels, string(r))
	}
	sort.Strings(labels)
	return strings.Join(labels, "")
}
