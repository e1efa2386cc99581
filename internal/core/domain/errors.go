package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested question does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a question with the same combined
	// fingerprint is already stored.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidCandidate indicates a candidate failed structural
	// validation before fingerprinting.
	ErrInvalidCandidate = errors.New("invalid candidate")

	// ErrInvalidConfig indicates the configuration failed validation.
	// Configuration errors are fatal at startup; values are never clamped.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrStaleDecision indicates a pending decision refers to a question
	// that no longer exists or has been superseded since it was enqueued.
	ErrStaleDecision = errors.New("stale decision")

	// ErrSuperseded indicates an operation targeted a superseded question.
	ErrSuperseded = errors.New("question superseded")

	// ErrRecognitionUnavailable indicates no recognition service is
	// configured. Image ingestion is disabled without one.
	ErrRecognitionUnavailable = errors.New("recognition service unavailable")
)
