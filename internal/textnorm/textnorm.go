// Package textnorm cleans free text coming out of spreadsheet cells and
// header rows, and derives the folded identity keys used for equality.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const bom = '\ufeff'

// isBidiControl matches the directional marks, embeddings, overrides and
// isolates that spreadsheet exports of right-to-left text leave behind.
func isBidiControl(r rune) bool {
	switch {
	case r == '\u200e', r == '\u200f', r == '\u061c':
		return true
	case r >= '\u202a' && r <= '\u202e':
		return true
	case r >= '\u2066' && r <= '\u2069':
		return true
	}
	return false
}

var stripBidi = runes.Remove(runes.Predicate(isBidiControl))

var stripBOM = runes.Remove(runes.Predicate(func(r rune) bool { return r == bom }))

// foldMarks decomposes, drops combining marks (Arabic tashkeel, hamza
// carriers, Latin accents) and recomposes. Chains hold buffers, so each call
// gets its own.
func foldMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// NormalizeText strips bidi control characters, collapses every whitespace
// run to one space and trims. It is idempotent.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(stripBidi, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(out), " ")
}

// NormalizeHeaderKey is NormalizeText for header cells: it also strips any
// byte-order mark, wherever the exporter left it.
func NormalizeHeaderKey(h string) string {
	out, _, err := transform.String(stripBOM, h)
	if err != nil {
		out = h
	}
	return NormalizeText(out)
}

// FoldKey derives the identity key for a label. Two labels that differ only
// in case, whitespace, diacritics, hamza placement, tatweel, alef maqsura or
// taa marbuta yield the same key.
func FoldKey(s string) string {
	s = strings.ToLower(NormalizeText(s))
	if s == "" {
		return ""
	}

	folded, _, err := transform.String(foldMarks(), s)
	if err == nil {
		s = folded
	}

	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u0640': // tatweel
			return -1
		case 'ى':
			return 'ي'
		case 'ة':
			return 'ه'
		}
		return r
	}, s)

	return NormalizeText(s)
}

var placeholders = map[string]bool{
	"-":    true,
	"—":    true,
	"0":    true,
	"null": true,
	"none": true,
	"n/a":  true,
}

// IsPlaceholder reports whether a cell holds one of the filler tokens
// spreadsheet users type instead of leaving a cell empty.
func IsPlaceholder(s string) bool {
	return placeholders[strings.ToLower(NormalizeText(s))]
}

// CleanIdentifier returns the normalized value, or "" when the value is
// empty or a placeholder token.
func CleanIdentifier(s string) string {
	s = NormalizeText(s)
	if IsPlaceholder(s) {
		return ""
	}
	return s
}
