package table

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cognicore/derisk/pkg/derisk"
	"github.com/cognicore/derisk/pkg/derisk/internalerr"
	"github.com/cognicore/derisk/pkg/derisk/opt"
)

var outputColumns = []string{ColMatchedName, ColMatchedCategory, ColMatchedElement}

func resultCells(r derisk.Result, marker string) []string {
	return []string{
		r.TermName.OrElse(marker),
		r.Category.OrElse(marker),
		r.RuleElement.OrElse(marker),
	}
}

func checkLen(t *Table, results []derisk.Result) error {
	if len(results) != t.Len() {
		return fmt.Errorf("%d results for %d rows: %w", len(results), t.Len(), internalerr.ErrInvalidInput)
	}
	return nil
}

// Augment returns a copy of t with the three result columns appended.
// Output columns already present in t are overwritten in place. Absent
// values are written as marker.
func Augment(t *Table, results []derisk.Result, marker string) (*Table, error) {
	if err := checkLen(t, results); err != nil {
		return nil, err
	}

	header := append([]string(nil), t.Header...)
	pos := make([]int, len(outputColumns))
	for i, name := range outputColumns {
		if c, ok := t.Column(name); ok {
			pos[i] = c
			continue
		}
		pos[i] = len(header)
		header = append(header, name)
	}

	out := &Table{Header: header, Rows: make([][]string, t.Len())}
	for i, row := range t.Rows {
		r := make([]string, len(header))
		copy(r, row)
		for j, v := range resultCells(results[i], marker) {
			r[pos[j]] = v
		}
		out.Rows[i] = r
	}
	return out, nil
}

type provenanceJSON struct {
	Source  string     `json:"source"`
	Field   string     `json:"field"`
	Partial opt.String `json:"partial"`
}

// WriteJSON writes one JSON object per input row, as an array. Keys follow
// the input column order, then the result columns; absent results are
// null. With explain set, each object also carries a "provenance" object.
func WriteJSON(w io.Writer, t *Table, results []derisk.Result, explain bool) error {
	if err := checkLen(t, results); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	bw.WriteString("[")
	for i := range t.Rows {
		if i > 0 {
			bw.WriteString(",")
		}
		bw.WriteString("\n  {")

		var fields []keyValue
		for j, h := range t.Header {
			if isOutputColumn(h) {
				continue
			}
			fields = append(fields, keyValue{h, t.Value(i, j)})
		}
		res := results[i]
		fields = append(fields,
			keyValue{ColMatchedName, res.TermName},
			keyValue{ColMatchedCategory, res.Category},
			keyValue{ColMatchedElement, res.RuleElement},
		)
		if explain {
			fields = append(fields, keyValue{"provenance", provenanceJSON{
				Source:  res.Provenance.Source.String(),
				Field:   res.Provenance.Field.String(),
				Partial: res.Provenance.Partial,
			}})
		}

		for j, kv := range fields {
			if j > 0 {
				bw.WriteString(", ")
			}
			if err := writeKeyValue(bw, kv); err != nil {
				return fmt.Errorf("write row %d: %w", i, err)
			}
		}
		bw.WriteString("}")
	}
	if t.Len() > 0 {
		bw.WriteString("\n")
	}
	bw.WriteString("]\n")
	return bw.Flush()
}

type keyValue struct {
	key   string
	value any
}

func writeKeyValue(w *bufio.Writer, kv keyValue) error {
	k, err := json.Marshal(kv.key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(kv.value)
	if err != nil {
		return err
	}
	w.Write(k)
	w.WriteString(": ")
	w.Write(v)
	return nil
}

func isOutputColumn(name string) bool {
	for _, c := range outputColumns {
		if c == name {
			return true
		}
	}
	return false
}
