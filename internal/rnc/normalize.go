package rnc

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IdentifierLength is the length of an 11-digit cédula, the only input that
// gets re-punctuated. The 3/7/1 grouping is inferred from how the dataset
// formats cédulas, not from a published DGII rule.
const IdentifierLength = 11

// Candidates returns the lookup keys for raw in priority order: the input as
// given, without hyphens, without whitespace, and, for 11-character input,
// the hyphenated 3-7-1 form. Duplicates are kept. The result always starts
// with raw.
func Candidates(raw string) []string {
	out := make([]string, 0, 4)
	out = append(out,
		raw,
		strings.ReplaceAll(raw, "-", ""),
		stripSpace(raw),
	)
	if utf8.RuneCountInString(raw) == IdentifierLength {
		r := []rune(raw)
		out = append(out, string(r[:3])+"-"+string(r[3:10])+"-"+string(r[10:]))
	}
	return out
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
