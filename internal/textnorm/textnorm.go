// Package textnorm normalises punctuation in question text.
//
// Recognition output mixes half-width (ASCII) and full-width (CJK)
// punctuation for the same sentence depending on how the source image was
// typeset. The same logical question must hash identically, so punctuation
// is canonicalised before any fingerprint is computed. Conversion is
// context-sensitive: a mark is only converted when the surrounding text is
// CJK, which keeps English prose and code snippets untouched.
package textnorm

import "unicode"

// Mode selects the punctuation normalisation direction.
type Mode string

// Available punctuation modes.
const (
	// ModeDisabled leaves text unchanged.
	ModeDisabled Mode = "disabled"

	// ModeToWide converts half-width marks to full-width in CJK context.
	ModeToWide Mode = "to_wide"

	// ModeToNarrow converts full-width marks to half-width.
	ModeToNarrow Mode = "to_narrow"
)

// IsValid returns true if the mode is recognised.
func (m Mode) IsValid() bool {
	switch m {
	case ModeDisabled, ModeToWide, ModeToNarrow:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m Mode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m Mode) Description() string {
	switch m {
	case ModeDisabled:
		return "Disabled (no punctuation conversion)"
	case ModeToWide:
		return "To full-width (CJK context only)"
	case ModeToNarrow:
		return "To half-width"
	default:
		return "Unknown"
	}
}

// AllModes returns all available punctuation modes.
func AllModes() []Mode {
	return []Mode{ModeDisabled, ModeToWide, ModeToNarrow}
}

// wideForms maps half-width marks to their full-width equivalents.
var wideForms = map[rune]rune{
	',': '，',
	'?': '？',
	'!': '！',
	':': '：',
	';': '；',
	'.': '。',
}

// narrowForms is the inverse of wideForms.
var narrowForms = map[rune]rune{
	'，': ',',
	'？': '?',
	'！': '!',
	'：': ':',
	'；': ';',
	'。': '.',
}

// cjkPunct marks that by themselves establish CJK context.
var cjkPunct = map[rune]bool{
	'，': true, '。': true, '！': true, '？': true, '；': true, '：': true,
	'「': true, '」': true, '『': true, '』': true, '（': true, '）': true,
	'《': true, '》': true, '〈': true, '〉': true, '【': true, '】': true,
	'、': true, '·': true, '…': true, '—': true,
}

// Normalize converts punctuation according to mode. It is idempotent:
// Normalize(Normalize(s, m), m) == Normalize(s, m) for every mode.
func Normalize(text string, mode Mode) string {
	switch mode {
	case ModeToWide:
		return toWide(text)
	case ModeToNarrow:
		return toNarrow(text)
	default:
		return text
	}
}

// toWide converts half-width marks sitting in CJK context to full-width.
// Decimal points (digit '.' digit) are exempt so numeric values survive.
func toWide(text string) string {
	runes := []rune(text)
	out := make([]rune, 0, len(runes))

	for i, r := range runes {
		wide, ok := wideForms[r]
		if !ok || !cjkContext(runes, i) {
			out = append(out, r)
			continue
		}
		if r == '.' && isDecimalPoint(runes, i) {
			out = append(out, r)
			continue
		}
		out = append(out, wide)
	}

	return string(out)
}

// toNarrow converts full-width marks to half-width. Full-width marks are
// themselves CJK context, so the context window is trivially satisfied and
// the replacement is unconditional.
func toNarrow(text string) string {
	runes := []rune(text)
	out := make([]rune, 0, len(runes))

	for _, r := range runes {
		if narrow, ok := narrowForms[r]; ok {
			out = append(out, narrow)
			continue
		}
		out = append(out, r)
	}

	return string(out)
}

// cjkContext reports whether the two-rune window around pos contains a CJK
// ideograph or CJK punctuation mark.
func cjkContext(runes []rune, pos int) bool {
	start := pos - 2
	if start < 0 {
		start = 0
	}
	end := pos + 3
	if end > len(runes) {
		end = len(runes)
	}

	for _, r := range runes[start:end] {
		if unicode.Is(unicode.Han, r) || cjkPunct[r] {
			return true
		}
	}
	return false
}

// isDecimalPoint reports whether the rune at pos is a '.' with digits on
// both sides, i.e. part of a decimal number such as 3.14.
func isDecimalPoint(runes []rune, pos int) bool {
	if pos == 0 || pos == len(runes)-1 {
		return false
	}
	return unicode.IsDigit(runes[pos-1]) && unicode.IsDigit(runes[pos+1])
}
