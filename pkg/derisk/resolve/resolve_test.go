package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/derisk/pkg/derisk/opt"
	"github.com/cognicore/derisk/pkg/derisk/vocab"
)

func demoVocabulary() *vocab.Vocabulary {
	return vocab.Build([]vocab.Entry{
		{Name: "Cust", Category: "Customer_Info"},
		{Name: "OrderDate", Category: "Financial_Data"},
		{Name: "amount", Category: "Financial_Data"},
		{Name: "region", Category: "Geographic_Data"},
		{Name: "ID", Category: "Identifier_Data"},
		{Name: "Sales", Category: "Financial_Data"},
		{Name: "prod_id", Category: "Product_Data"},
		{Name: "Name", Category: "General_Info"},
		{Name: "Employee_ID", Category: "HR_Data"},
		{Name: "Project Name", Category: "Project_Data"},
		{Name: "Account No", Category: "Financial_Data"},
		{Name: "DAS Internal Account Number", Category: "Financial_Data"},
		{Name: "Description", Category: "General_Info"},
	})
}

func demoRulebook() *vocab.Rulebook {
	return vocab.BuildRulebook([]vocab.Rule{
		{Category: "Financial_Data", Element: "Amount"},
		{Category: "Customer_Info", Element: "Customer"},
		{Category: "HR_Data", Element: "Employee"},
		{Category: "Product_Data", Element: "ID"},
		{Category: "Geographic_Data", Element: "Region"},
		{Category: "Financial_Data", Element: "Account"},
		{Category: "Project_Data", Element: "Project Name"},
	})
}

func some(s string) opt.String { return opt.Some(s) }

func TestDeriskingPartialMatch(t *testing.T) {
	got := Derisking(demoVocabulary(), Prepare("Customer ID", "Customer Data", ""))

	assert.Equal(t, some("Cust"), got.Term)
	assert.Equal(t, some("Customer_Info"), got.Category)
	assert.Equal(t, SourcePartial, got.Source)
	assert.Equal(t, FieldColumn, got.Field)
}

func TestDeriskingExactBeatsLongerPartial(t *testing.T) {
	v := vocab.Build([]vocab.Entry{
		{Name: "Cust", Category: "Customer_Info"},
		{Name: "Cust Master", Category: "Master_Data"},
	})
	got := Derisking(v, Prepare("Cust", "Cust Master record", ""))

	assert.Equal(t, some("Cust"), got.Term)
	assert.Equal(t, some("Customer_Info"), got.Category)
	assert.Equal(t, SourceExact, got.Source)
	assert.Equal(t, some("Cust Master"), got.Partial)
}

func TestDeriskingExactPrefersColumnOverBusiness(t *testing.T) {
	got := Derisking(demoVocabulary(), Prepare("sales", "REGION", ""))
	assert.Equal(t, some("Sales"), got.Term)
	assert.Equal(t, FieldColumn, got.Field)

	got = Derisking(demoVocabulary(), Prepare("Revenue", "REGION", ""))
	assert.Equal(t, some("region"), got.Term)
	assert.Equal(t, some("Geographic_Data"), got.Category)
	assert.Equal(t, FieldBusiness, got.Field)
	assert.Equal(t, SourceExact, got.Source)
}

func TestDeriskingOverrideOnStaffColumn(t *testing.T) {
	got := Derisking(demoVocabulary(), Prepare("Staff Name", "Employee Relations", ""))

	assert.Equal(t, some(OverrideTerm), got.Term)
	assert.Equal(t, SourceOverride, got.Source)
	assert.Equal(t, some("Name"), got.Partial)
	// category follows the pre-override term
	assert.Equal(t, some("General_Info"), got.Category)
}

func TestDeriskingOverrideIgnoresBusinessName(t *testing.T) {
	got := Derisking(demoVocabulary(), Prepare("Full Name", "Employee Directory", ""))

	assert.Equal(t, some("Name"), got.Term)
	assert.Equal(t, SourcePartial, got.Source)
}

func TestDeriskingOverrideOnlyForNameTerm(t *testing.T) {
	got := Derisking(demoVocabulary(), Prepare("Employee Region", "", ""))
	assert.Equal(t, some("region"), got.Term)
	assert.Equal(t, SourcePartial, got.Source)
}

func TestDeriskingNoMatch(t *testing.T) {
	got := Derisking(demoVocabulary(), Prepare("Office Location", "Facility Management", ""))

	assert.False(t, got.Term.Valid())
	assert.False(t, got.Category.Valid())
	assert.Equal(t, SourceNone, got.Source)
	assert.Equal(t, FieldNone, got.Field)
}

func TestDeriskingEmptyFields(t *testing.T) {
	got := Derisking(demoVocabulary(), Prepare("", "", ""))
	assert.Equal(t, Derisk{}, got)
}

func TestDeriskingBusinessHitProvenance(t *testing.T) {
	got := Derisking(demoVocabulary(), Prepare("Order Date Field", "Sales Metrics", ""))
	assert.Equal(t, some("Sales"), got.Term)
	assert.Equal(t, FieldBusiness, got.Field)
}

func TestDeriskingTieBreak(t *testing.T) {
	v := vocab.Build([]vocab.Entry{
		{Name: "Sales", Category: "Financial_Data"},
		{Name: "Scale", Category: "Measure_Data"},
	})
	got := Derisking(v, Prepare("Sales Scale", "", ""))
	assert.Equal(t, some("Scale"), got.Term)
	assert.Equal(t, some("Measure_Data"), got.Category)
}

func TestDeriskingMissingCategory(t *testing.T) {
	v := vocab.Build([]vocab.Entry{{Name: "Cust"}})
	got := Derisking(v, Prepare("Customer", "", ""))
	assert.Equal(t, some("Cust"), got.Term)
	assert.False(t, got.Category.Valid(), "a blank category reads as no value")
}

func TestRulebookScopedToDeclaredCategory(t *testing.T) {
	rb := demoRulebook()

	got := Rulebook(rb, Prepare("Employee Salary", "Payroll", "Financial_Data"))
	assert.False(t, got.Valid(), "HR element must not be offered to a Financial record")

	got = Rulebook(rb, Prepare("Employee Salary", "Payroll", "HR_Data"))
	assert.Equal(t, some("Employee"), got)
}

func TestRulebookCategoryIsCaseInsensitive(t *testing.T) {
	got := Rulebook(demoRulebook(), Prepare("Sales Amount", "", "FINANCIAL_DATA"))
	assert.Equal(t, some("Amount"), got)
}

func TestRulebookUsesPlainContainment(t *testing.T) {
	// "ID" is short, but rulebook matching ignores boundaries
	got := Rulebook(demoRulebook(), Prepare("Product_Identifier", "Inventory Items", "Product_Data"))
	assert.Equal(t, some("ID"), got)
}

func TestRulebookRanksLongest(t *testing.T) {
	got := Rulebook(demoRulebook(), Prepare("Amount", "Account", "Financial_Data"))
	assert.Equal(t, some("Account"), got)
}

func TestRulebookUnknownOrMissingCategory(t *testing.T) {
	rb := demoRulebook()
	assert.False(t, Rulebook(rb, Prepare("Paramount Pictures", "Film Studio", "General_Info")).Valid())
	assert.False(t, Rulebook(rb, Prepare("Customer", "", "")).Valid())
}

func TestResolversAreDeterministic(t *testing.T) {
	v, rb := demoVocabulary(), demoRulebook()
	in := Prepare("Sales Amount", "Account Number", "Financial_Data")

	first := Derisking(v, in)
	firstRule := Rulebook(rb, in)
	for i := 0; i < 50; i++ {
		require.Equal(t, first, Derisking(v, in))
		require.Equal(t, firstRule, Rulebook(rb, in))
	}
}

func TestSourceAndFieldStrings(t *testing.T) {
	assert.Equal(t, "exact", SourceExact.String())
	assert.Equal(t, "override", SourceOverride.String())
	assert.Equal(t, "partial", SourcePartial.String())
	assert.Equal(t, "none", SourceNone.String())
	assert.Equal(t, "column", FieldColumn.String())
	assert.Equal(t, "business", FieldBusiness.String())
	assert.Equal(t, "none", FieldNone.String())
}
