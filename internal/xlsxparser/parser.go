// =============================================================================
// Payroll Bank Splitter - XLSX Input Parser
// =============================================================================
//
// This module reads payroll workbooks and returns their first (or a named)
// sheet as a header-keyed table.
//
// EXPECTED SHEET LAYOUT:
//
//   | Column A      | Column B                | Column C   | ... |
//   |---------------|-------------------------|------------|-----|
//   | name          | IBAN                    | net salary | ... |
//   | Ali Hassan    | IQ26RAFB002100366585001 | 1500000    |     |
//
//   Row 1 holds the headers. Extra columns are carried along untouched;
//   column order does not matter.
//
// CELL VALUES:
//   Cells are read raw (no number formatting applied) so that a salary styled
//   as "#,##0" still arrives as "1500000".
//
// =============================================================================

package xlsxparser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/types"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a workbook from a stream.
func Parse(r io.Reader, sheet string) (*types.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseSheet(f, sheet, "")
}

// ErrLegacyWorkbook is returned for binary .xls workbooks, which excelize
// cannot open.
var ErrLegacyWorkbook = errors.New("legacy .xls workbooks are not supported, save the file as .xlsx")

// ParseBytes reads a workbook held in memory.
func ParseBytes(data []byte, sheet string) (*types.RawTable, error) {
	if IsLegacyWorkbook(data) {
		return nil, ErrLegacyWorkbook
	}
	return Parse(bytes.NewReader(data), sheet)
}

// parseSheet converts one sheet of an open workbook into a table.
func parseSheet(f *excelize.File, sheet, source string) (*types.RawTable, error) {
	sheetName := sheet
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", sheetName)
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if source == "" {
		source = sheetName
	}

	return BuildTable(rows, source), nil
}

// BuildTable turns a header row plus data rows into a RawTable.
// Empty rows are skipped; short rows are padded with empty strings.
// Row numbers are 1-based sheet positions.
func BuildTable(rows [][]string, source string) *types.RawTable {
	return BuildTableLines(rows, nil, source)
}

// BuildTableLines is BuildTable with explicit source line numbers.
// lines[i] is the line rows[i] started on; a nil slice means rows are
// contiguous from line 1.
func BuildTableLines(rows [][]string, lines []int, source string) *types.RawTable {
	table := &types.RawTable{Source: source}
	if len(rows) == 0 {
		return table
	}

	table.Headers = cleanHeaders(rows[0])

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		values := make(map[string]string, len(table.Headers))
		for col, header := range table.Headers {
			if header == "" {
				continue
			}
			if col < len(row) {
				values[header] = row[col]
			} else {
				values[header] = ""
			}
		}

		number := i + 1
		if i < len(lines) {
			number = lines[i]
		}
		table.Rows = append(table.Rows, types.RawRow{Number: number, Values: values})
	}

	return table
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// cleanHeaders trims header cells. Blank headers stay blank and their
// columns are ignored.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		cleaned[i] = strings.TrimSpace(h)
	}
	return cleaned
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// IsWorkbook checks magic bytes for xlsx (ZIP/PK header) or xls (OLE2).
// Both are routed to this parser so a legacy file gets a clear error
// instead of being read as CSV.
func IsWorkbook(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	// XLSX is a ZIP file (PK\x03\x04)
	if data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04 {
		return true
	}
	return IsLegacyWorkbook(data)
}

// IsLegacyWorkbook checks for the OLE2 Compound Document header (\xD0\xCF\x11\xE0).
func IsLegacyWorkbook(data []byte) bool {
	return len(data) >= 4 && data[0] == 0xD0 && data[1] == 0xCF && data[2] == 0x11 && data[3] == 0xE0
}
