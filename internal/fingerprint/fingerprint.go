// Package fingerprint derives deterministic digests for question records.
//
// Three digests are produced: one for the question text, one for the option
// values, and a combined digest that keys deduplication. The options digest
// sorts option values before hashing, so relabelling A/B/C/D or reordering
// options never changes the identity of a question. All digests are plain
// SHA-256 hex with no seeding, stable across process restarts.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Text returns the digest of canonicalised question text.
// Case- and whitespace-sensitive; only punctuation is normalised upstream.
func Text(text string) string {
	return digest(strings.TrimSpace(text))
}

// Options returns the digest of the option values sorted by value.
// The label-to-value assignment does not participate, which is what makes
// relabelling irrelevant to question identity.
func Options(options map[string]string) string {
	values := make([]string, 0, len(options))
	for _, v := range options {
		values = append(values, strings.TrimSpace(v))
	}
	sort.Strings(values)
	return digest(strings.Join(values, ""))
}

// Combined returns the deduplication key: the digest of the text digest
// concatenated with the options digest.
func Combined(text string, options map[string]string) string {
	return digest(Text(text) + Options(options))
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
