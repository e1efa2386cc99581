// Package textproc merges page-by-page recognition output and extracts
// numbered questions from the merged text.
package textproc

import (
	"regexp"
	"strings"

	"qbank/internal/core/domain"
	"qbank/internal/logger"
	"qbank/internal/similarity"
)

// Merge defaults. Pages produced by a sliding-window capture overlap;
// the tail of one page reappears at the head of the next.
const (
	DefaultOverlapLines  = 10
	DefaultMinSimilarity = 0.6
)

// mergeFailureMarker is inserted when no reliable overlap is found and
// two pages are concatenated as-is.
const mergeFailureMarker = "\n[warning: overlap match failed, content may repeat or be missing]\n"

// Merger joins consecutive recognition pages by locating the overlap
// between the tail of one page and the head of the next.
type Merger struct {
	// OverlapLines is how many trailing lines of the previous page are
	// matched against the next page's head.
	OverlapLines int

	// MinSimilarity is the lowest overlap similarity accepted as a
	// merge point. Below it, pages are concatenated with a marker.
	MinSimilarity float64
}

// NewMerger returns a merger with the default overlap window.
func NewMerger() *Merger {
	return &Merger{
		OverlapLines:  DefaultOverlapLines,
		MinSimilarity: DefaultMinSimilarity,
	}
}

// Merge joins pages in order, dropping the overlapping region between
// consecutive pages.
func (m *Merger) Merge(pages []string) string {
	if len(pages) == 0 {
		return ""
	}
	if len(pages) == 1 {
		return pages[0]
	}

	var out strings.Builder
	out.WriteString(pages[0])

	for i := 1; i < len(pages); i++ {
		point, ok := m.mergePoint(pages[i-1], pages[i])
		if ok {
			logger.Debug("merged page %d/%d at byte %d", i, len(pages)-1, point)
			rest := pages[i][point:]
			if s := out.String(); s != "" && !strings.HasSuffix(s, "\n") && !strings.HasPrefix(rest, "\n") {
				out.WriteByte('\n')
			}
			out.WriteString(rest)
			continue
		}
		logger.Warn("no reliable merge point for page %d, concatenating", i)
		out.WriteString(mergeFailureMarker)
		out.WriteString(pages[i])
	}

	return out.String()
}

// mergePoint returns the byte offset in curr where prev's content ends.
// It slides prev's tail lines over curr's head and keeps the most
// similar alignment.
func (m *Merger) mergePoint(prev, curr string) (int, bool) {
	prevLines := strings.Split(prev, "\n")
	currLines := strings.Split(curr, "\n")

	tail := prevLines
	if len(tail) > m.OverlapLines {
		tail = tail[len(tail)-m.OverlapLines:]
	}
	tailText := strings.Join(tail, "\n")

	searchRange := m.OverlapLines * 2
	if searchRange > len(currLines) {
		searchRange = len(currLines)
	}

	bestScore := 0.0
	bestPos := 0

	for start := 0; start < searchRange; start++ {
		end := start + len(tail)
		if end > len(currLines) {
			end = len(currLines)
		}
		head := strings.Join(currLines[start:end], "\n")

		score := similarity.Ratio(tailText, head)
		if score > bestScore {
			bestScore = score
			bestPos = len(strings.Join(currLines[:end], "\n"))
			if end < len(currLines) {
				bestPos++
			}
		}
	}

	if bestScore < m.MinSimilarity {
		return 0, false
	}
	return bestPos, true
}

// questionStart matches a numbered question line: "12. text", "3) text",
// "7、text". An answer in parentheses directly after the separator is
// captured, matching the export format.
var questionStart = regexp.MustCompile(`^\s*(\d+)\s*[.)、]\s*(?:\(([A-H]+)\)\s*)?(.*)$`)

// optionStart matches an option line. The separator is required so
// ordinary lines starting with a capital letter are not mistaken for
// options.
var optionStart = regexp.MustCompile(`^\s*([A-H])\s*[.)、:：]\s*(.+)$`)

// Extract parses numbered questions out of merged text. Blocks that
// fail to produce a question text and at least one option are skipped;
// structural validation is the caller's concern.
func Extract(text, source string) []domain.Candidate {
	lines := strings.Split(text, "\n")

	var candidates []domain.Candidate
	var block []string
	var answer string
	inQuestion := false

	flush := func() {
		if !inQuestion || len(block) == 0 {
			return
		}
		if c, ok := parseBlock(block, answer, source); ok {
			candidates = append(candidates, c)
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := questionStart.FindStringSubmatch(line)
		if m != nil {
			flush()
			inQuestion = true
			answer = m[2]
			block = block[:0]
			if m[3] != "" {
				block = append(block, m[3])
			}
			continue
		}

		if inQuestion {
			block = append(block, line)
		}
	}
	flush()

	logger.Debug("extracted %d candidate questions", len(candidates))
	return candidates
}

// parseBlock splits a question block into question text and options.
// Lines before the first option belong to the question; lines after an
// option that are not options themselves continue that option.
func parseBlock(lines []string, answer, source string) (domain.Candidate, bool) {
	var textParts []string
	options := make(map[string]string)
	currentOption := ""

	for _, line := range lines {
		m := optionStart.FindStringSubmatch(line)
		if m != nil {
			options[m[1]] = strings.TrimSpace(m[2])
			currentOption = m[1]
			continue
		}
		if currentOption != "" {
			options[currentOption] += " " + line
			continue
		}
		textParts = append(textParts, line)
	}

	if len(textParts) == 0 || len(options) == 0 {
		return domain.Candidate{}, false
	}

	return domain.Candidate{
		Text:    strings.Join(textParts, " "),
		Options: options,
		Answer:  answer,
		Source:  source,
	}, true
}
