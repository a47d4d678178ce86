// =============================================================================
// Payroll Bank Splitter - Record Normalizer
// =============================================================================
//
// This module turns raw payroll rows into Employee records.
//
// RULES (applied in this order):
//   1. The name, IBAN and net salary columns must all be present in the
//      header, otherwise a SchemaError is returned and nothing is kept.
//   2. Rows with an empty name, an empty IBAN or a salary that is not a
//      number are dropped.
//   3. Rows whose salary is exactly zero are dropped and counted. The count
//      is reported as a warning; processing continues.
//   4. Names are cut to their first NameMaxLength characters.
//
// Output order equals input order. Negative salaries are kept as they are.
//
// =============================================================================

package normalizer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/config"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/types"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// SchemaError reports required columns missing from the input header.
type SchemaError struct {
	// Missing lists the absent column names in contract order.
	Missing []string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("input must contain the columns: %s", strings.Join(e.Missing, ", "))
}

// DropReason explains why a row did not become an Employee.
type DropReason string

const (
	// DropMissingName is used when the name cell is blank.
	DropMissingName DropReason = "missing_name"

	// DropMissingIBAN is used when the IBAN cell is blank.
	DropMissingIBAN DropReason = "missing_iban"

	// DropInvalidSalary is used when the salary is not a number.
	DropInvalidSalary DropReason = "invalid_salary"

	// DropZeroSalary is used when the salary is exactly zero.
	DropZeroSalary DropReason = "zero_salary"
)

// DroppedRow records one rejected input row.
type DroppedRow struct {
	RowNumber int
	Reason    DropReason
	Value     string
}

// =============================================================================
// RESULT
// =============================================================================

// Result contains the normalised records and what was dropped on the way.
type Result struct {
	// Employees are the accepted records in input order.
	Employees []types.Employee

	// Dropped lists every rejected row, zero-salary rows included.
	Dropped []DroppedRow

	// RowsIn is the number of data rows read.
	RowsIn int

	// InvalidRows is the number of rows dropped for a missing or bad value.
	InvalidRows int

	// ZeroSalaryRows is the number of rows dropped for a zero salary.
	ZeroSalaryRows int

	// TruncatedNames is the number of names that were shortened.
	TruncatedNames int
}

// =============================================================================
// NORMALIZER
// =============================================================================

// Normalizer cleans raw tables according to the input contract.
type Normalizer struct {
	nameColumn   string
	ibanColumn   string
	salaryColumn string
	maxNameLen   int
}

// New creates a Normalizer from the input section of the configuration.
func New(cfg config.InputConfig) *Normalizer {
	return &Normalizer{
		nameColumn:   cfg.NameColumn,
		ibanColumn:   cfg.IBANColumn,
		salaryColumn: cfg.SalaryColumn,
		maxNameLen:   cfg.NameMaxLength,
	}
}

// Normalize validates the header and converts every usable row.
//
// PARAMETERS:
//   - table: The raw input table.
//
// RETURNS:
//   - The result with accepted employees and drop counts.
//   - A *SchemaError if a required column is missing.
func (n *Normalizer) Normalize(table *types.RawTable) (*Result, error) {
	if err := n.CheckSchema(table); err != nil {
		return nil, err
	}

	result := &Result{
		Employees: make([]types.Employee, 0, len(table.Rows)),
		RowsIn:    len(table.Rows),
	}

	for _, row := range table.Rows {
		name := strings.TrimSpace(row.Values[n.nameColumn])
		iban := strings.TrimSpace(row.Values[n.ibanColumn])
		rawSalary := row.Values[n.salaryColumn]

		salary, ok := ParseAmount(rawSalary)

		switch {
		case !ok:
			result.drop(row.Number, DropInvalidSalary, rawSalary)
			continue
		case name == "":
			result.drop(row.Number, DropMissingName, "")
			continue
		case iban == "":
			result.drop(row.Number, DropMissingIBAN, "")
			continue
		case salary.IsZero():
			result.drop(row.Number, DropZeroSalary, rawSalary)
			continue
		}

		truncated, cut := Truncate(name, n.maxNameLen)
		if cut {
			result.TruncatedNames++
		}

		result.Employees = append(result.Employees, types.Employee{
			Name:      truncated,
			IBAN:      iban,
			NetSalary: salary,
			SourceRow: row.Number,
		})
	}

	return result, nil
}

// CheckSchema returns a *SchemaError naming every required column that is
// absent from the table header.
func (n *Normalizer) CheckSchema(table *types.RawTable) error {
	var missing []string
	for _, col := range []string{n.nameColumn, n.ibanColumn, n.salaryColumn} {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// drop records a rejected row.
func (r *Result) drop(rowNumber int, reason DropReason, value string) {
	r.Dropped = append(r.Dropped, DroppedRow{RowNumber: rowNumber, Reason: reason, Value: value})
	if reason == DropZeroSalary {
		r.ZeroSalaryRows++
	} else {
		r.InvalidRows++
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// ParseAmount converts a cell into a decimal amount.
// Surrounding whitespace and thousands commas are ignored.
func ParseAmount(value string) (decimal.Decimal, bool) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Truncate keeps the first max characters of s.
// A non-positive max leaves s untouched.
func Truncate(s string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s, false
	}
	runes := []rune(s)
	return string(runes[:max]), true
}
