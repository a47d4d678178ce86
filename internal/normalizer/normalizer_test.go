package normalizer

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/config"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/types"
)

func table(rows ...[]string) *types.RawTable {
	t := &types.RawTable{Headers: []string{"name", "IBAN", "net salary"}}
	for i, r := range rows {
		t.Rows = append(t.Rows, types.RawRow{
			Number: i + 2,
			Values: map[string]string{"name": r[0], "IBAN": r[1], "net salary": r[2]},
		})
	}
	return t
}

func newNormalizer() *Normalizer {
	return New(config.Default().Input)
}

func TestNormalize_KeepsOrderAndDropsBadRows(t *testing.T) {
	in := table(
		[]string{"Ali", "IQ26RAFB002100366585001", "1500000"},
		[]string{"", "IQ26RAFB002100366585002", "100"},
		[]string{"Sara", " ", "100"},
		[]string{"Omar", "IQ26RDBA001", "abc"},
		[]string{"Zero", "IQ26RDBA001", "0"},
		[]string{"Neg", "IQ26RDBA002", "-250.5"},
		[]string{"Huda", "IQ26NBIQ856001234567890", "1,250,000"},
	)

	res, err := newNormalizer().Normalize(in)
	require.NoError(t, err)

	require.Len(t, res.Employees, 3)
	assert.Equal(t, "Ali", res.Employees[0].Name)
	assert.Equal(t, 2, res.Employees[0].SourceRow)
	assert.Equal(t, "Neg", res.Employees[1].Name)
	assert.True(t, res.Employees[1].NetSalary.Equal(decimal.RequireFromString("-250.5")))
	assert.True(t, res.Employees[2].NetSalary.Equal(decimal.NewFromInt(1250000)))

	assert.Equal(t, 7, res.RowsIn)
	assert.Equal(t, 3, res.InvalidRows)
	assert.Equal(t, 1, res.ZeroSalaryRows)
	require.Len(t, res.Dropped, 4)
	assert.Equal(t, DropMissingName, res.Dropped[0].Reason)
	assert.Equal(t, DropMissingIBAN, res.Dropped[1].Reason)
	assert.Equal(t, DropInvalidSalary, res.Dropped[2].Reason)
	assert.Equal(t, DropZeroSalary, res.Dropped[3].Reason)
}

func TestNormalize_TruncatesNames(t *testing.T) {
	long := strings.Repeat("ع", 40)
	res, err := newNormalizer().Normalize(table([]string{long, "IQ26RAFB0021", "10"}))
	require.NoError(t, err)

	require.Len(t, res.Employees, 1)
	assert.Equal(t, 35, len([]rune(res.Employees[0].Name)))
	assert.Equal(t, 1, res.TruncatedNames)
}

func TestNormalize_SchemaError(t *testing.T) {
	in := &types.RawTable{Headers: []string{"name", "iban"}}

	_, err := newNormalizer().Normalize(in)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"IBAN", "net salary"}, schemaErr.Missing)
	assert.Contains(t, err.Error(), "net salary")
}

func TestNormalize_CustomColumns(t *testing.T) {
	cfg := config.Default().Input
	cfg.NameColumn = "الاسم"
	cfg.IBANColumn = "Iban"
	cfg.SalaryColumn = "الراتب الصافي"

	in := &types.RawTable{
		Headers: []string{"الاسم", "Iban", "الراتب الصافي"},
		Rows: []types.RawRow{{Number: 2, Values: map[string]string{
			"الاسم": "علي", "Iban": "IQ26RAFB0021", "الراتب الصافي": "750000",
		}}},
	}

	res, err := New(cfg).Normalize(in)
	require.NoError(t, err)
	require.Len(t, res.Employees, 1)
	assert.Equal(t, "علي", res.Employees[0].Name)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1500000", "1500000", true},
		{" 1,500,000.75 ", "1500000.75", true},
		{"1.5E6", "1500000", true},
		{"", "0", false},
		{"n/a", "0", false},
	}
	for _, tt := range tests {
		got, ok := ParseAmount(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), tt.in)
	}
}

func TestTruncate(t *testing.T) {
	s, cut := Truncate("abc", 5)
	assert.Equal(t, "abc", s)
	assert.False(t, cut)

	s, cut = Truncate("abcdef", 3)
	assert.Equal(t, "abc", s)
	assert.True(t, cut)

	s, cut = Truncate("abcdef", 0)
	assert.Equal(t, "abcdef", s)
	assert.False(t, cut)
}

func TestNormalize_WhitespaceOnlyNameIsMissing(t *testing.T) {
	res, err := newNormalizer().Normalize(table([]string{"   ", "IQ26RAFB0021", "10"}))
	require.NoError(t, err)

	assert.Empty(t, res.Employees)
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, DropMissingName, res.Dropped[0].Reason)
}
