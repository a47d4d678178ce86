package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/csvparser"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/types"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/xlsxparser"
)

// ReadFile loads a payroll table from disk.
func ReadFile(path, sheet string) (*types.RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	table, err := DecodeTable(path, data, sheet)
	if err != nil {
		return nil, err
	}
	table.Source = path
	return table, nil
}

// DecodeTable parses uploaded payroll bytes. Workbooks are recognised by
// their magic bytes; a .csv name or non-workbook content is read as CSV.
func DecodeTable(name string, data []byte, sheet string) (*types.RawTable, error) {
	isCSV := strings.EqualFold(filepath.Ext(name), ".csv")

	var (
		table *types.RawTable
		err   error
	)
	if !isCSV && xlsxparser.IsWorkbook(data) {
		table, err = xlsxparser.ParseBytes(data, sheet)
	} else {
		table, err = csvparser.Parse(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(name), err)
	}

	table.Source = name
	return table, nil
}
