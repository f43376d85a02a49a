// Package resolve turns the matcher and ranker primitives into the two
// per-record answers: the derisking term with its category, and the
// rulebook element for the record's declared category.
//
// Both resolvers are pure functions of one record and the read-only
// vocabularies, so callers may run them from any number of goroutines.
package resolve

import (
	"strings"

	"github.com/cognicore/derisk/pkg/derisk/match"
	"github.com/cognicore/derisk/pkg/derisk/opt"
	"github.com/cognicore/derisk/pkg/derisk/rank"
	"github.com/cognicore/derisk/pkg/derisk/vocab"
)

// OverrideTerm replaces a partial "name" match on employee/staff columns.
const OverrideTerm = "Partialmatch: Employee"

const overrideName = "name"

var overrideMarkers = []string{"employee", "staff"}

// Source tells which stage produced the final derisking term.
type Source int

const (
	SourceNone Source = iota
	SourceExact
	SourceOverride
	SourcePartial
)

func (s Source) String() string {
	switch s {
	case SourceExact:
		return "exact"
	case SourceOverride:
		return "override"
	case SourcePartial:
		return "partial"
	default:
		return "none"
	}
}

// Field is the record field a term was found in.
type Field int

const (
	FieldNone Field = iota
	FieldColumn
	FieldBusiness
)

func (f Field) String() string {
	switch f {
	case FieldColumn:
		return "column"
	case FieldBusiness:
		return "business"
	default:
		return "none"
	}
}

// Input is one record prepared for matching.
type Input struct {
	Column   match.Subject
	Business match.Subject
	Category string // lowercased declared category
}

// Prepare lowercases the record fields once for both resolvers.
func Prepare(columnName, businessName, declaredCategory string) Input {
	return Input{
		Column:   match.Prepare(columnName),
		Business: match.Prepare(businessName),
		Category: vocab.Fold(declaredCategory),
	}
}

// Derisk is the outcome of the derisking resolver.
type Derisk struct {
	Term     opt.String
	Category opt.String

	Source Source
	Field  Field

	// Partial is the ranked partial match before the override rule.
	Partial opt.String
}

// Derisking resolves the derisking term and category for one record.
//
// Priority: exact match on the column name, then on the business name;
// then the override sentinel; then the best partial match.
func Derisking(v *vocab.Vocabulary, in Input) Derisk {
	var out Derisk

	exact, exactField := exactMatch(v, in)
	partial, partialField, hasPartial := partialMatch(v, in)
	if hasPartial {
		out.Partial = opt.Some(partial.Name)
	}

	// The category key is the string the match was found under; the
	// override sentinel never is one.
	var key string
	switch {
	case exactField != FieldNone:
		out.Term = opt.Some(exact)
		out.Source = SourceExact
		out.Field = exactField
		key = vocab.Fold(exact)
	case hasPartial && overrides(partial, in.Column):
		out.Term = opt.Some(OverrideTerm)
		out.Source = SourceOverride
		out.Field = partialField
		key = partial.Normalized
	case hasPartial:
		out.Term = opt.Some(partial.Name)
		out.Source = SourcePartial
		out.Field = partialField
		key = partial.Normalized
	default:
		return out
	}

	if cat, ok := v.CategoryOf(key); ok && cat != "" {
		out.Category = opt.Some(cat)
	}
	return out
}

func exactMatch(v *vocab.Vocabulary, in Input) (string, Field) {
	if name, ok := v.Exact(in.Column.Lower()); ok {
		return name, FieldColumn
	}
	if name, ok := v.Exact(in.Business.Lower()); ok {
		return name, FieldBusiness
	}
	return "", FieldNone
}

type hit struct {
	term  vocab.CandidateTerm
	field Field
}

// partialMatch collects every term found in either field, column hits
// ahead of business hits for the same term, and ranks them.
func partialMatch(v *vocab.Vocabulary, in Input) (vocab.CandidateTerm, Field, bool) {
	var (
		hits  []hit
		cands []rank.Candidate
	)
	for _, t := range v.Terms() {
		if in.Column.Has(t) {
			hits = append(hits, hit{term: t, field: FieldColumn})
			cands = append(cands, rank.Candidate{Name: t.Name, Length: t.Length})
		}
		if in.Business.Has(t) {
			hits = append(hits, hit{term: t, field: FieldBusiness})
			cands = append(cands, rank.Candidate{Name: t.Name, Length: t.Length})
		}
	}
	i, ok := rank.Best(cands)
	if !ok {
		return vocab.CandidateTerm{}, FieldNone, false
	}
	return hits[i].term, hits[i].field, true
}

// overrides checks only the column name; the business name is never
// consulted.
func overrides(partial vocab.CandidateTerm, column match.Subject) bool {
	if partial.Normalized != overrideName {
		return false
	}
	for _, m := range overrideMarkers {
		if strings.Contains(column.Lower(), m) {
			return true
		}
	}
	return false
}

// Rulebook resolves the rulebook element for one record. Only elements of
// the record's declared category are considered, and they match by plain
// containment in either field regardless of length.
func Rulebook(rb *vocab.Rulebook, in Input) opt.String {
	elements := rb.Elements(in.Category)
	if len(elements) == 0 {
		return opt.None()
	}
	var cands []rank.Candidate
	for _, el := range elements {
		if in.Column.Contains(el.Normalized) || in.Business.Contains(el.Normalized) {
			cands = append(cands, rank.Candidate{Name: el.Element, Length: el.Length})
		}
	}
	if name, ok := rank.SelectBest(cands); ok {
		return opt.Some(name)
	}
	return opt.None()
}
