// Package vocab normalizes the reference vocabularies once so that the
// per-record matchers never re-lowercase or re-measure a term.
//
// Two vocabularies exist:
//   - the derisking vocabulary: canonical names tagged with a category,
//     matched against every record;
//   - the rulebook: elements grouped by data category, matched only
//     against records that declare that category.
package vocab

import "strings"

// ShortTermMaxLen is the longest term (in characters) that requires a
// space or underscore boundary to match.
const ShortTermMaxLen = 3

// reservedName never takes part in matching.
const reservedName = "description"

// Entry is one row of the candidate table.
type Entry struct {
	Name     string
	Category string
}

// CandidateTerm is a normalized derisking term.
type CandidateTerm struct {
	Name       string // as loaded
	Normalized string // lowercased Name
	Length     int    // characters in Name
	Category   string

	// boundary patterns for short terms: " t ", "_t ", "_t_"
	spaced, underSpace, underBoth string
}

// NewCandidateTerm normalizes a single term.
func NewCandidateTerm(name, category string) CandidateTerm {
	t := CandidateTerm{
		Name:       name,
		Normalized: Fold(name),
		Length:     Len(name),
		Category:   category,
	}
	if t.Short() {
		t.spaced = " " + t.Normalized + " "
		t.underSpace = "_" + t.Normalized + " "
		t.underBoth = "_" + t.Normalized + "_"
	}
	return t
}

// Short reports whether the term needs boundary-aware matching.
func (t CandidateTerm) Short() bool {
	return t.Length <= ShortTermMaxLen
}

// Boundaries returns the three delimited forms of a short term: padded
// with spaces, underscore then space, and underscore on both sides.
func (t CandidateTerm) Boundaries() (spaced, underSpace, underBoth string) {
	if t.spaced == "" {
		n := t.Normalized
		return " " + n + " ", "_" + n + " ", "_" + n + "_"
	}
	return t.spaced, t.underSpace, t.underBoth
}

// Vocabulary holds the derisking terms in their lookup forms.
type Vocabulary struct {
	// normalized -> original name; later rows win
	exact map[string]string

	// normalized -> category; later rows win
	categories map[string]string

	// every accepted term in load order, for partial matching
	terms []CandidateTerm

	reserved int
	blank    int
}

// Build normalizes the candidate table. Rows named "Description" (in any
// case) and rows with a blank name are left out.
func Build(entries []Entry) *Vocabulary {
	v := &Vocabulary{
		exact:      make(map[string]string, len(entries)),
		categories: make(map[string]string, len(entries)),
		terms:      make([]CandidateTerm, 0, len(entries)),
	}
	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			v.blank++
			continue
		}
		t := NewCandidateTerm(e.Name, e.Category)
		if t.Normalized == reservedName {
			v.reserved++
			continue
		}
		v.exact[t.Normalized] = t.Name
		v.categories[t.Normalized] = t.Category
		v.terms = append(v.terms, t)
	}
	return v
}

// Exact returns the original name whose normalized form equals normalized.
func (v *Vocabulary) Exact(normalized string) (string, bool) {
	name, ok := v.exact[normalized]
	return name, ok
}

// CategoryOf returns the category registered for a normalized name.
func (v *Vocabulary) CategoryOf(normalized string) (string, bool) {
	cat, ok := v.categories[normalized]
	return cat, ok
}

// Terms returns the partial-match list. The slice is shared and must not
// be modified.
func (v *Vocabulary) Terms() []CandidateTerm {
	return v.terms
}

// Len returns the number of terms taking part in matching.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Stats returns counts describing how the vocabulary was built.
func (v *Vocabulary) Stats() Stats {
	short := 0
	for _, t := range v.terms {
		if t.Short() {
			short++
		}
	}
	return Stats{
		Terms:         len(v.terms),
		DistinctNames: len(v.exact),
		ShortTerms:    short,
		Reserved:      v.reserved,
		Blank:         v.blank,
	}
}

// Stats holds vocabulary statistics.
type Stats struct {
	Terms         int // accepted terms, duplicates included
	DistinctNames int // distinct normalized names
	ShortTerms    int // terms matched with boundary rules
	Reserved      int // "Description" rows dropped
	Blank         int // rows without a name
}
