package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/cognicore/derisk/pkg/derisk/internalerr"
)

// ReadCSV reads a comma separated table whose first record is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	return ReadDelimited(r, ',')
}

// ReadDelimited reads a table whose fields are separated by comma. Rows may
// have fewer or more cells than the header.
func ReadDelimited(r io.Reader, comma rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty table: %w", internalerr.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w: %v", internalerr.ErrInvalidInput, err)
	}

	t := &Table{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w: %v", len(t.Rows)+1, internalerr.ErrInvalidInput, err)
		}
		t.Rows = append(t.Rows, rec)
	}
	t.normalize()
	return t, nil
}

// WriteCSV writes the header and rows as CSV.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}
