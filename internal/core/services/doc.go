// Package services implements the core engine: the question store,
// the classifier, the pending-decision queue, ingestion and
// arbitration. Services implement the driving ports and depend on the
// driven ports; they know nothing about cobra, bubbletea or storage
// formats.
package services
