package table

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/derisk/pkg/derisk"
	"github.com/cognicore/derisk/pkg/derisk/internalerr"
	"github.com/cognicore/derisk/pkg/derisk/opt"
	"github.com/cognicore/derisk/pkg/derisk/resolve"
)

const testdata = "../../../testdata"

func TestReadCSVPadsShortRows(t *testing.T) {
	in := "\ufeffcolumnsname, BusinessName ,TargetID\nCustomer ID,Customer Data,1\nStaff Name\n"
	tbl, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"columnsname", "BusinessName", "TargetID"}, tbl.Header)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"Staff Name", "", ""}, tbl.Rows[1])
	assert.Equal(t, "", tbl.Value(5, 0))
	assert.Equal(t, "", tbl.Value(0, 9))
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	_, err = ReadCSV(strings.NewReader("a,b\n\"unterminated,1\n"))
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestReadDelimitedTabs(t *testing.T) {
	tbl, err := ReadDelimited(strings.NewReader("Name\tCategory\nCust\tCustomer_Info\n"), '\t')
	require.NoError(t, err)
	entries, err := Candidates(tbl)
	require.NoError(t, err)
	assert.Equal(t, "Customer_Info", entries[0].Category)
}

func TestReadHTML(t *testing.T) {
	in := `<html><body>
<p>intro</p>
<table>
  <tr><th>Name</th><th> Category </th></tr>
  <tr><td><b>Cust</b></td><td>Customer_Info</td></tr>
  <tr><td>ID</td></tr>
  <tr><td><table><tr><td>nested</td></tr></table></td><td>x</td></tr>
</table>
<table><tr><th>other</th></tr></table>
</body></html>`
	tbl, err := ReadHTML(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Category"}, tbl.Header)
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"Cust", "Customer_Info"}, tbl.Rows[0])
	assert.Equal(t, []string{"ID", ""}, tbl.Rows[1])
	assert.Equal(t, "x", tbl.Rows[2][1])
}

func TestReadHTMLWithoutTable(t *testing.T) {
	_, err := ReadHTML(strings.NewReader("<p>nothing here</p>"))
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestOpenByExtension(t *testing.T) {
	csvTbl, err := Open(filepath.Join(testdata, "targets.csv"))
	require.NoError(t, err)
	htmlTbl, err := Open(filepath.Join(testdata, "targets.html"))
	require.NoError(t, err)

	assert.Equal(t, csvTbl, htmlTbl)
	assert.Equal(t, 13, csvTbl.Len())
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "vocab.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	_, err = Open(path)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestExtractors(t *testing.T) {
	cands, err := Open(filepath.Join(testdata, "candidates.csv"))
	require.NoError(t, err)
	entries, err := Candidates(cands)
	require.NoError(t, err)
	assert.Len(t, entries, 13)
	assert.Equal(t, "Project Name", entries[9].Name)

	rb, err := Open(filepath.Join(testdata, "rulebook.csv"))
	require.NoError(t, err)
	rules, err := Rules(rb)
	require.NoError(t, err)
	assert.Len(t, rules, 7)
	assert.Equal(t, "Account", rules[5].Element)

	targets, err := Open(filepath.Join(testdata, "targets.csv"))
	require.NoError(t, err)
	records, err := Targets(targets)
	require.NoError(t, err)
	require.Len(t, records, 13)
	assert.Equal(t, derisk.Record{
		ID:               "7",
		ColumnName:       "Staff Name",
		BusinessName:     "Employee Relations",
		DeclaredCategory: "HR_Data",
	}, records[6])
}

func TestTargetsWithoutCategory(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("TargetID,columnsname,BusinessName\n1,Cust,\n"))
	require.NoError(t, err)
	records, err := Targets(tbl)
	require.NoError(t, err)
	assert.Equal(t, []derisk.Record{{ID: "1", ColumnName: "Cust"}}, records)
}

func TestMissingColumns(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("columnsname,TargetID\nCust,1\n"))
	require.NoError(t, err)

	_, err = Targets(tbl)
	assert.ErrorIs(t, err, internalerr.ErrMissingColumn)
	assert.Contains(t, err.Error(), "BusinessName")

	_, err = Candidates(tbl)
	assert.ErrorIs(t, err, internalerr.ErrMissingColumn)
	_, err = Rules(tbl)
	assert.ErrorIs(t, err, internalerr.ErrMissingColumn)
}

func sampleResults() []derisk.Result {
	return []derisk.Result{
		{
			TermName:    opt.Some(resolve.OverrideTerm),
			Category:    opt.Some("General_Info"),
			RuleElement: opt.Some("Employee"),
			Provenance: derisk.Provenance{
				Source:  resolve.SourceOverride,
				Field:   resolve.FieldColumn,
				Partial: opt.Some("Name"),
			},
		},
		{},
	}
}

func sampleTable() *Table {
	return &Table{
		Header: []string{"columnsname", "BusinessName", "TargetID"},
		Rows: [][]string{
			{"Staff Name", "Employee Relations", "7"},
			{"Office Location", "Facility Management", "8"},
		},
	}
}

func TestAugmentAndWriteCSV(t *testing.T) {
	out, err := Augment(sampleTable(), sampleResults(), "N/A")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, out))
	assert.Equal(t, "columnsname,BusinessName,TargetID,Matched_Derisking_Name,Matched_Derisking_Category,Matched_Rulebook_Element\n"+
		"Staff Name,Employee Relations,7,Partialmatch: Employee,General_Info,Employee\n"+
		"Office Location,Facility Management,8,N/A,N/A,N/A\n", buf.String())
}

func TestAugmentOverwritesExistingOutputColumns(t *testing.T) {
	tbl := sampleTable()
	tbl.Header = append(tbl.Header, ColMatchedElement)
	tbl.Rows[0] = append(tbl.Rows[0], "stale")
	tbl.Rows[1] = append(tbl.Rows[1], "stale")

	out, err := Augment(tbl, sampleResults(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"columnsname", "BusinessName", "TargetID", ColMatchedElement, ColMatchedName, ColMatchedCategory}, out.Header)
	assert.Equal(t, "Employee", out.Rows[0][3])
	assert.Equal(t, "", out.Rows[1][3])
	// input untouched
	assert.Equal(t, "stale", tbl.Rows[0][3])
}

func TestAugmentLengthMismatch(t *testing.T) {
	_, err := Augment(sampleTable(), sampleResults()[:1], "")
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleTable(), sampleResults(), false))

	assert.True(t, strings.HasPrefix(buf.String(), `[`+"\n"+`  {"columnsname": "Staff Name", "BusinessName": "Employee Relations", "TargetID": "7", `))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, resolve.OverrideTerm, rows[0][ColMatchedName])
	assert.Nil(t, rows[1][ColMatchedName])
	assert.Nil(t, rows[1][ColMatchedElement])
	assert.NotContains(t, rows[0], "provenance")
}

func TestWriteJSONExplain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleTable(), sampleResults(), true))

	var rows []struct {
		Provenance struct {
			Source  string  `json:"source"`
			Field   string  `json:"field"`
			Partial *string `json:"partial"`
		} `json:"provenance"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "override", rows[0].Provenance.Source)
	assert.Equal(t, "column", rows[0].Provenance.Field)
	require.NotNil(t, rows[0].Provenance.Partial)
	assert.Equal(t, "Name", *rows[0].Provenance.Partial)
	assert.Equal(t, "none", rows[1].Provenance.Source)
	assert.Nil(t, rows[1].Provenance.Partial)
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, &Table{Header: []string{"TargetID"}}, nil, false))
	assert.Equal(t, "[]\n", buf.String())
}
