// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
//   - QuestionArchive: durable persistence of the question store
//   - Recogniser: text extraction from images
//   - CandidateSource: streams of ingestion candidates
//   - ConfigStore: configuration persistence
package driven
