// Package similarity computes weighted lexical similarity between questions.
//
// The ratio is a longest-common-subsequence alignment over runes:
// 2*LCS(a,b) / (len(a)+len(b)). It is symmetric, 1.0 for identical strings
// and 0.0 for disjoint ones. The weighted score blends the question-text
// ratio with a ratio over the canonical ordering of option values. All
// functions are pure and safe for concurrent use.
package similarity

import (
	"sort"
	"strings"
)

// Weights blends the question-text ratio with the options ratio.
// The two weights must sum to 1.0; this is validated at configuration
// load, not here.
type Weights struct {
	// Question is the weight applied to the question-text ratio.
	Question float64

	// Options is the weight applied to the options ratio.
	Options float64
}

// Sum returns Question + Options. Useful for configuration validation.
func (w Weights) Sum() float64 {
	return w.Question + w.Options
}

// DefaultWeights returns the reference weighting of 0.6 question / 0.4 options.
func DefaultWeights() Weights {
	return Weights{Question: 0.6, Options: 0.4}
}

// Ratio returns the LCS alignment ratio of two strings over runes.
func Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(lcsLength(ra, rb)) / float64(total)
}

// Score returns the weighted similarity of two questions in [0,1].
// Option values are sorted and concatenated before comparison so the
// score, like the fingerprints, ignores labelling and order.
func Score(aText string, aOpts map[string]string, bText string, bOpts map[string]string, w Weights) float64 {
	textRatio := Ratio(aText, bText)
	optsRatio := Ratio(joinSorted(aOpts), joinSorted(bOpts))
	return w.Question*textRatio + w.Options*optsRatio
}

// joinSorted concatenates trimmed option values in sorted order.
func joinSorted(options map[string]string) string {
	values := make([]string, 0, len(options))
	for _, v := range options {
		values = append(values, strings.TrimSpace(v))
	}
	sort.Strings(values)
	return strings.Join(values, "")
}

// lcsLength computes the longest-common-subsequence length with a
// rolling two-row table. Question text is short, so quadratic time is fine.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
