// =============================================================================
// Payroll Bank Splitter - Text Re-encoder
// =============================================================================
//
// This module converts a bank file workbook into the pipe-delimited text form
// accepted by the bank upload portal.
//
// ENCODING STEPS:
//   1. Read every cell as text.
//   2. Amount: drop ",", parse, truncate to an integer, group thousands with
//      ",", wrap in literal double quotes. Unparseable amounts become "".
//   3. Drop the Reference column.
//   4. Join the remaining fields with a tab. No quoting or escaping.
//   5. Replace every run of spaces and tabs with a single "|".
//   6. Drop the header line.
//   7. Join lines with "\n" (no trailing newline), UTF-8.
//
// EXAMPLE:
//   Amount 1500000.75, Payer Name "Basra Directorate"  ->
//   20250115|Basra|Directorate|IQ26...|"1,500,000"|IQD|RAFBIQB1098|...
//
// The fractional part of an amount is truncated, not rounded. Callers are
// told how many amounts lost a fraction so the loss can be flagged.
//
// =============================================================================

package textenc

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Column names the encoder looks for in the header row.
const (
	AmountColumn    = "Amount"
	ReferenceColumn = "Reference"
)

// Output extensions. Both files carry identical bytes.
const (
	TextExt = ".txt"
	CSVExt  = ".csv"
)

// separatorRun matches the runs collapsed into a single pipe.
var separatorRun = regexp.MustCompile(`[ \t]+`)

// Result is the encoded form of one workbook.
type Result struct {
	// Content is the encoded text.
	Content []byte

	// Lines is the number of data lines written.
	Lines int

	// TruncatedAmounts counts amounts that had a fractional part.
	TruncatedAmounts int

	// InvalidAmounts counts amounts that could not be parsed.
	InvalidAmounts int
}

// Encoder converts workbooks into pipe-delimited text.
type Encoder struct {
	printer *message.Printer
	sheet   string
}

// New creates an Encoder reading the given sheet. Empty selects the first sheet.
func New(sheet string) *Encoder {
	return &Encoder{
		printer: message.NewPrinter(language.English),
		sheet:   sheet,
	}
}

// =============================================================================
// ENCODING
// =============================================================================

// Encode converts workbook bytes into the text form.
//
// PARAMETERS:
//   - workbook: The .xlsx bytes of a bank file.
//
// RETURNS:
//   - The encoded result.
//   - An error if the workbook cannot be read.
func (e *Encoder) Encode(workbook []byte) (*Result, error) {
	rows, err := e.readRows(workbook)
	if err != nil {
		return nil, err
	}

	return e.EncodeRows(rows), nil
}

// EncodeRows encodes rows of cell text. Row 0 is the header.
func (e *Encoder) EncodeRows(rows [][]string) *Result {
	result := &Result{}
	if len(rows) == 0 {
		result.Content = []byte{}
		return result
	}

	header := rows[0]
	amountCol, refCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case AmountColumn:
			amountCol = i
		case ReferenceColumn:
			refCol = i
		}
	}

	lines := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		fields := make([]string, 0, len(header))
		for col := range header {
			if col == refCol {
				continue
			}

			value := ""
			if col < len(row) {
				value = row[col]
			}

			if col == amountCol {
				value = e.formatAmount(value, result)
			}

			fields = append(fields, value)
		}

		lines = append(lines, separatorRun.ReplaceAllString(strings.Join(fields, "\t"), "|"))
	}

	result.Lines = len(lines)
	result.Content = []byte(strings.Join(lines, "\n"))
	return result
}

// formatAmount renders an amount cell as a quoted, grouped integer.
func (e *Encoder) formatAmount(value string, result *Result) string {
	cleaned := strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
	if cleaned == "" {
		result.InvalidAmounts++
		return ""
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		result.InvalidAmounts++
		return ""
	}

	whole := d.Truncate(0)
	if !whole.Equal(d) {
		result.TruncatedAmounts++
	}

	return `"` + e.printer.Sprintf("%d", whole.IntPart()) + `"`
}

// readRows loads every row of the sheet as raw text.
func (e *Encoder) readRows(workbook []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := e.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// =============================================================================
// FILE NAMES
// =============================================================================

// FileNames returns the .txt and .csv names derived from a workbook name.
func FileNames(workbookName string) (txt, csv string) {
	base := workbookName
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base + TextExt, base + CSVExt
}
