// =============================================================================
// Payroll Bank Splitter - XLSX Writer Module
// =============================================================================
//
// This module serialises tables into .xlsx workbooks. It is used for the
// per-bank payment files and for the summary report.
//
// BANK FILE LAYOUT:
//   One sheet, header in row 1, one transaction per row, in this fixed order:
//
//   | Reference | Value Date | Payer Name | Payer Account | Amount | Currency |
//   | Receiver BIC | Beneficiary Name | Beneficiary Account |
//   | Remittance Information | Details of Charges |
//
// CELL TYPES:
//   Amounts are written as numbers (integers when they have no fraction).
//   Every other value is written as text, so IBANs and dates keep their
//   exact characters.
//
// =============================================================================

package xlsxwriter

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/config"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/types"
)

// Bank file column headers.
const (
	ColReference          = "Reference"
	ColValueDate          = "Value Date"
	ColPayerName          = "Payer Name"
	ColPayerAccount       = "Payer Account"
	ColAmount             = "Amount"
	ColCurrency           = "Currency"
	ColReceiverBIC        = "Receiver BIC"
	ColBeneficiaryName    = "Beneficiary Name"
	ColBeneficiaryAccount = "Beneficiary Account"
	ColRemittance         = "Remittance Information"
	ColCharges            = "Details of Charges"
)

// BankFileColumns is the fixed column order of every bank file.
var BankFileColumns = []string{
	ColReference,
	ColValueDate,
	ColPayerName,
	ColPayerAccount,
	ColAmount,
	ColCurrency,
	ColReceiverBIC,
	ColBeneficiaryName,
	ColBeneficiaryAccount,
	ColRemittance,
	ColCharges,
}

// =============================================================================
// TABLE
// =============================================================================

// Table is a header plus rows, ready to be written to a single sheet.
type Table struct {
	// SheetName is the name of the only sheet. Default: "Sheet1"
	SheetName string

	// Header is written in row 1 in bold.
	Header []string

	// Rows hold strings, numbers or nil (blank cell).
	Rows [][]any
}

// WriteOptions contains options for workbook generation.
type WriteOptions struct {
	// BoldHeader renders row 1 in bold.
	// Default: true
	BoldHeader bool

	// ColumnWidth is applied to every column. Zero keeps the default width.
	// Default: 22
	ColumnWidth float64
}

// DefaultWriteOptions returns the default write options.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		BoldHeader:  true,
		ColumnWidth: 22,
	}
}

// =============================================================================
// WORKBOOK GENERATION
// =============================================================================

// Write renders a table into workbook bytes using the default options.
func Write(table Table) ([]byte, error) {
	return WriteWithOptions(table, DefaultWriteOptions())
}

// WriteWithOptions renders a table into workbook bytes.
//
// PARAMETERS:
//   - table: The header and rows to write.
//   - options: Formatting options.
//
// RETURNS:
//   - The .xlsx file as a byte slice.
//   - An error if any cell cannot be written.
func WriteWithOptions(table Table, options WriteOptions) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := table.SheetName
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return nil, fmt.Errorf("failed to name sheet %q: %w", sheet, err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream writer: %w", err)
	}

	if options.ColumnWidth > 0 && len(table.Header) > 0 {
		if err := sw.SetColWidth(1, len(table.Header), options.ColumnWidth); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	headerOpts := excelize.RowOpts{}
	if options.BoldHeader {
		styleID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return nil, fmt.Errorf("failed to create header style: %w", err)
		}
		headerOpts.StyleID = styleID
	}

	header := make([]any, len(table.Header))
	for i, h := range table.Header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header, headerOpts); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush sheet: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialise workbook: %w", err)
	}

	return buf.Bytes(), nil
}

// =============================================================================
// BANK FILE PROJECTION
// =============================================================================

// BatchTable projects a batch onto the bank file columns.
// The batch is not modified.
func BatchTable(batch types.Batch, payer config.PayerConfig, sheetName string) Table {
	rows := make([][]any, 0, len(batch.Records))

	for _, r := range batch.Records {
		rows = append(rows, []any{
			r.Reference,
			r.ValueDate,
			payer.Name,
			payer.Account,
			AmountCell(r.NetSalary),
			payer.Currency,
			r.ReceiverBIC,
			r.Name,
			r.IBAN,
			r.Remittance,
			payer.ChargesCode,
		})
	}

	return Table{
		SheetName: sheetName,
		Header:    BankFileColumns,
		Rows:      rows,
	}
}

// WriteBatch renders one batch as a bank file workbook.
func WriteBatch(batch types.Batch, payer config.PayerConfig, sheetName string) ([]byte, error) {
	return Write(BatchTable(batch, payer, sheetName))
}

// AmountCell converts an amount into a numeric cell value.
// Whole amounts become int64 so they read back without a fraction.
func AmountCell(d decimal.Decimal) any {
	if d.Equal(d.Truncate(0)) && d.Abs().LessThan(decimal.New(1, 18)) {
		return d.IntPart()
	}
	return d.InexactFloat64()
}
