package table

import (
	"github.com/cognicore/derisk/pkg/derisk"
	"github.com/cognicore/derisk/pkg/derisk/vocab"
)

// Candidates extracts derisking entries from a table with Name and
// Category columns.
func Candidates(t *Table) ([]vocab.Entry, error) {
	idx, err := t.require(ColCandidateName, ColCandidateCategory)
	if err != nil {
		return nil, err
	}
	out := make([]vocab.Entry, t.Len())
	for i := range t.Rows {
		out[i] = vocab.Entry{Name: t.Value(i, idx[0]), Category: t.Value(i, idx[1])}
	}
	return out, nil
}

// Rules extracts rulebook rows from a table with Data Category and
// Rulebook Element columns.
func Rules(t *Table) ([]vocab.Rule, error) {
	idx, err := t.require(ColRuleCategory, ColRuleElement)
	if err != nil {
		return nil, err
	}
	out := make([]vocab.Rule, t.Len())
	for i := range t.Rows {
		out[i] = vocab.Rule{Category: t.Value(i, idx[0]), Element: t.Value(i, idx[1])}
	}
	return out, nil
}

// Targets extracts the records to classify. Target_Category is optional;
// without it every record has an empty declared category.
func Targets(t *Table) ([]derisk.Record, error) {
	idx, err := t.require(ColTargetColumn, ColTargetBusiness, ColTargetID)
	if err != nil {
		return nil, err
	}
	catCol, hasCat := t.Column(ColTargetCategory)

	out := make([]derisk.Record, t.Len())
	for i := range t.Rows {
		rec := derisk.Record{
			ColumnName:   t.Value(i, idx[0]),
			BusinessName: t.Value(i, idx[1]),
			ID:           t.Value(i, idx[2]),
		}
		if hasCat {
			rec.DeclaredCategory = t.Value(i, catCol)
		}
		out[i] = rec
	}
	return out, nil
}
