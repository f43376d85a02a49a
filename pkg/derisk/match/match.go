// Package match decides whether a vocabulary term occurs in a text value.
//
// Terms of up to three characters only match when delimited, so that "ID"
// is found in "Customer ID" or "cust_id_key" but not in "Slide show".
// Longer terms match by plain containment.
package match

import (
	"strings"

	"github.com/cognicore/derisk/pkg/derisk/vocab"
)

// Matches reports whether term occurs in text. normalizedTerm is the
// lowercased term; text is lowercased here. An empty text never matches a
// non-empty term.
func Matches(term, normalizedTerm, text string) bool {
	return Prepare(text).Has(vocab.CandidateTerm{
		Name:       term,
		Normalized: normalizedTerm,
		Length:     vocab.Len(term),
	})
}

// Subject is a text value prepared once for testing against many terms.
type Subject struct {
	lower  string
	padded string
}

// Prepare lowercases text and builds its space-padded form.
func Prepare(text string) Subject {
	lower := vocab.Fold(text)
	return Subject{lower: lower, padded: " " + lower + " "}
}

// Lower returns the lowercased text.
func (s Subject) Lower() string {
	return s.lower
}

// Has applies the short/long term rules to a normalized candidate.
func (s Subject) Has(t vocab.CandidateTerm) bool {
	if !t.Short() {
		return strings.Contains(s.lower, t.Normalized)
	}
	spaced, underSpace, underBoth := t.Boundaries()
	return strings.Contains(s.padded, spaced) ||
		strings.Contains(s.lower, underSpace) ||
		strings.Contains(s.lower, underBoth)
}

// Contains reports plain containment of an already-lowercased string.
func (s Subject) Contains(normalized string) bool {
	return strings.Contains(s.lower, normalized)
}
