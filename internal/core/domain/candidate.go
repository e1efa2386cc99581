package domain

import (
	"fmt"
	"unicode/utf8"

	"qbank/internal/textnorm"
)

// Minimum structural requirements for a candidate.
const (
	// MinOptions is the smallest option set a candidate may carry.
	MinOptions = 2

	// MinTextRunes is the shortest acceptable question text.
	MinTextRunes = 5
)

// validLabels is the fixed label alphabet for options.
const validLabels = "ABCDEFGH"

// Candidate is a raw question produced by the recognition collaborator.
// It has no identifier and no fingerprints until it passes through the
// ingestion pipeline.
type Candidate struct {
	// Text is the question text, possibly with mixed punctuation.
	Text string

	// Options maps option labels to option text.
	Options map[string]string

	// Answer is the correct-answer label set, if known. May be empty.
	Answer string

	// Source records where the candidate came from.
	Source string

	// ImageRef is an optional reference to the source image.
	ImageRef string
}

// Validate checks the candidate's structure before fingerprinting.
// Invalid candidates are rejected, not retried.
func (c *Candidate) Validate() error {
	if c.Text == "" {
		return fmt.Errorf("%w: missing question text", ErrInvalidCandidate)
	}
	if utf8.RuneCountInString(c.Text) < MinTextRunes {
		return fmt.Errorf("%w: question text shorter than %d characters", ErrInvalidCandidate, MinTextRunes)
	}
	if len(c.Options) < MinOptions {
		return fmt.Errorf("%w: need at least %d options, got %d", ErrInvalidCandidate, MinOptions, len(c.Options))
	}
	for label, value := range c.Options {
		if !isValidLabel(label) {
			return fmt.Errorf("%w: option label %q outside %s", ErrInvalidCandidate, label, validLabels)
		}
		if value == "" {
			return fmt.Errorf("%w: option %s is empty", ErrInvalidCandidate, label)
		}
	}
	for _, r := range NormalizeAnswer(c.Answer) {
		if _, ok := c.Options[string(r)]; !ok {
			return fmt.Errorf("%w: answer label %s has no matching option", ErrInvalidCandidate, string(r))
		}
	}
	return nil
}

// Canonicalize returns a copy with punctuation normalised in the text
// and every option value. Must run before fingerprinting; fingerprinting
// un-normalised text breaks the dedup guarantee.
func (c *Candidate) Canonicalize(mode textnorm.Mode) Candidate {
	out := *c
	out.Text = textnorm.Normalize(c.Text, mode)
	out.Options = make(map[string]string, len(c.Options))
	for label, value := range c.Options {
		out.Options[label] = textnorm.Normalize(value, mode)
	}
	out.Answer = NormalizeAnswer(c.Answer)
	return out
}

func isValidLabel(label string) bool {
	if len(label) != 1 {
		return false
	}
	for _, r := range validLabels {
		if string(r) == label {
			return true
		}
	}
	return false
}
