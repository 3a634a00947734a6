package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// TrimAndNormalize trims s and collapses every whitespace run into one space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeText trims multi-line text and drops control characters, keeping line breaks.
func NormalizeText(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeLabel lowercases a category label: "Party Room " becomes "party_room".
func NormalizeLabel(label string) string {
	p := Pipeline{
		TrimAndNormalize,
		strings.ToLower,
		func(s string) string { return strings.ReplaceAll(s, " ", "_") },
	}
	return p.Apply(label)
}
