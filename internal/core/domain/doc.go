// Package domain contains the core entities of the question bank:
// questions, ingestion candidates, classification outcomes, pending
// arbitration decisions and configuration settings.
//
// The domain layer has no knowledge of storage, transport or
// presentation; those live behind ports in the adapters.
package domain
