// Package table reads the candidate, rulebook and target tables and writes
// the augmented target table.
//
// A Table is a header plus string rows. Short rows are padded with empty
// cells on read so every lookup by column is safe.
package table

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/derisk/pkg/derisk/internalerr"
)

// Input column names.
const (
	ColCandidateName     = "Name"
	ColCandidateCategory = "Category"

	ColRuleCategory = "Data Category"
	ColRuleElement  = "Rulebook Element"

	ColTargetColumn   = "columnsname"
	ColTargetBusiness = "BusinessName"
	ColTargetID       = "TargetID"
	ColTargetCategory = "Target_Category"
)

// Output column names, appended after the input columns.
const (
	ColMatchedName     = "Matched_Derisking_Name"
	ColMatchedCategory = "Matched_Derisking_Category"
	ColMatchedElement  = "Matched_Rulebook_Element"
)

// Table is a header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the named column.
func (t *Table) Column(name string) (int, bool) {
	for i, h := range t.Header {
		if h == name {
			return i, true
		}
	}
	return -1, false
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Value returns the cell at row, col, or "" when out of range.
func (t *Table) Value(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

func (t *Table) require(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, fmt.Errorf("column %q: %w", n, internalerr.ErrMissingColumn)
		}
		idx[i] = c
	}
	return idx, nil
}

// normalize trims header cells, drops a UTF-8 BOM and pads short rows.
func (t *Table) normalize() {
	for i, h := range t.Header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		t.Header[i] = strings.TrimSpace(h)
	}
	for i, row := range t.Rows {
		if len(row) < len(t.Header) {
			padded := make([]string, len(t.Header))
			copy(padded, row)
			t.Rows[i] = padded
		}
	}
}

// Open reads a table from path, choosing the reader by file extension:
// .csv, .tsv, .html or .htm.
func Open(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	var t *Table
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		t, err = ReadCSV(f)
	case ".tsv":
		t, err = ReadDelimited(f, '\t')
	case ".html", ".htm":
		t, err = ReadHTML(f)
	default:
		return nil, fmt.Errorf("table %s: unsupported extension %q: %w", path, ext, internalerr.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", path, err)
	}
	return t, nil
}
