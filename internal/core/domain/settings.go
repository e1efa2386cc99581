package domain

import (
	"fmt"
	"math"

	"qbank/internal/similarity"
	"qbank/internal/textnorm"
)

// Settings holds the tunable parameters of the dedup engine.
// Settings are validated once at startup and never clamped; an
// out-of-range value is a fatal configuration error.
type Settings struct {
	// SimilarityThreshold is the boundary between Similar and New.
	// A score strictly above the threshold queues a pending decision.
	SimilarityThreshold float64

	// Weights splits the similarity score between question text and
	// option values. Must sum to 1.
	Weights similarity.Weights

	// Punctuation selects the canonical punctuation form applied to
	// candidates before fingerprinting.
	Punctuation textnorm.Mode
}

// DefaultSettings returns the settings used when no configuration
// file exists.
func DefaultSettings() Settings {
	return Settings{
		SimilarityThreshold: 0.8,
		Weights:             similarity.DefaultWeights(),
		Punctuation:         textnorm.ModeToWide,
	}
}

// Validate checks that every parameter is in range.
func (s Settings) Validate() error {
	if s.SimilarityThreshold < 0 || s.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity threshold %v outside [0, 1]", ErrInvalidConfig, s.SimilarityThreshold)
	}
	if s.Weights.Question < 0 || s.Weights.Options < 0 {
		return fmt.Errorf("%w: negative similarity weight", ErrInvalidConfig)
	}
	if math.Abs(s.Weights.Sum()-1) > 1e-9 {
		return fmt.Errorf("%w: similarity weights sum to %v, want 1", ErrInvalidConfig, s.Weights.Sum())
	}
	if !s.Punctuation.IsValid() {
		return fmt.Errorf("%w: unknown punctuation mode %q", ErrInvalidConfig, s.Punctuation)
	}
	return nil
}
