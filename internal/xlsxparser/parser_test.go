package xlsxparser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbook builds an in-memory workbook from rows of cell values.
func workbook(t *testing.T, sheet string, rows [][]any) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	return f
}

func toBytes(t *testing.T, f *excelize.File) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestParseBytes(t *testing.T) {
	f := workbook(t, "Sheet1", [][]any{
		{" name ", "IBAN", "net salary", "dept"},
		{"Ali Hassan", "IQ26RAFB002100366585001", 1500000, "A"},
		{},
		{"Sara", "IQ26NBIQ856001234567890", 725000.5},
	})

	// A number format must not leak into the parsed value.
	style, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "C2", "C4", style))

	table, err := ParseBytes(toBytes(t, f), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "IBAN", "net salary", "dept"}, table.Headers)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, 2, table.Rows[0].Number)
	assert.Equal(t, "Ali Hassan", table.Rows[0].Values["name"])
	assert.Equal(t, "1500000", table.Rows[0].Values["net salary"])

	assert.Equal(t, 4, table.Rows[1].Number)
	assert.Equal(t, "725000.5", table.Rows[1].Values["net salary"])
	assert.Equal(t, "", table.Rows[1].Values["dept"])
}

func TestParse_NamedSheet(t *testing.T) {
	f := workbook(t, "Payroll", [][]any{{"name"}, {"Ali"}})

	table, err := ParseBytes(toBytes(t, f), "Payroll")
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	_, err = ParseBytes(toBytes(t, f), "Missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestParse_Stream(t *testing.T) {
	f := workbook(t, "Sheet1", [][]any{{"name", "IBAN"}, {"Ali", "IQ26"}})

	table, err := Parse(bytes.NewReader(toBytes(t, f)), "")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", table.Source)
	assert.True(t, table.HasColumn("IBAN"))
	assert.False(t, table.HasColumn("net salary"))
}

func TestParseBytes_LegacyWorkbook(t *testing.T) {
	data := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 504)...)

	_, err := ParseBytes(data, "")
	require.ErrorIs(t, err, ErrLegacyWorkbook)
	assert.Contains(t, err.Error(), "save the file as .xlsx")
}

func TestParseBytes_NotAWorkbook(t *testing.T) {
	_, err := ParseBytes([]byte("name,IBAN\n"), "")
	require.Error(t, err)
}

func TestIsWorkbook(t *testing.T) {
	assert.True(t, IsWorkbook([]byte{0x50, 0x4B, 0x03, 0x04, 0x00}))
	assert.True(t, IsWorkbook([]byte{0xD0, 0xCF, 0x11, 0xE0}))
	assert.True(t, IsLegacyWorkbook([]byte{0xD0, 0xCF, 0x11, 0xE0}))
	assert.False(t, IsLegacyWorkbook([]byte{0x50, 0x4B, 0x03, 0x04}))
	assert.False(t, IsWorkbook([]byte("name,IBAN")))
	assert.False(t, IsWorkbook(nil))
}

func TestBuildTableLines(t *testing.T) {
	rows := [][]string{{"name"}, {"Ali"}, {"Sara"}}

	table := BuildTableLines(rows, []int{1, 2, 5}, "x")
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 2, table.Rows[0].Number)
	assert.Equal(t, 5, table.Rows[1].Number)

	table = BuildTable(rows, "x")
	assert.Equal(t, 3, table.Rows[1].Number)
}

func TestBuildTable_Empty(t *testing.T) {
	table := BuildTable(nil, "x")
	assert.Empty(t, table.Headers)
	assert.Empty(t, table.Rows)
}
