// =============================================================================
// Payroll Bank Splitter - Summary Aggregator
// =============================================================================
//
// This module builds the structured summary report from the metadata of the
// bank files produced by the split stage. It never opens the files
// themselves.
//
// REPORT LAYOUT:
//
//   | File / Bank                       | Branch / Key | Employees (rows) | Total Amount (IQD) |
//   |-----------------------------------|--------------|------------------|--------------------|
//   | Rafidain_file_1_098_20250115.xlsx | 098          | 4000             | 4000000            |
//   | Total for Rafidain                | RAFB         | 4000             | 4000000            |
//   |                                   |              |                  |                    |
//   | Grand total for all banks         | GRAND TOTAL  | 4000             | 4000000            |
//
//   Every bank contributes its detail rows, one subtotal row and one blank
//   separator. The grand total closes the report.
//   Banks are ordered by code. Inside a bank, files keep creation order.
//   Subtotals and the grand total are rounded to 2 decimal places.
//
// =============================================================================

package summary

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/resolver"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/types"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/xlsxwriter"
)

// Report column headers.
var Header = []string{"File / Bank", "Branch / Key", "Employees (rows)", "Total Amount (IQD)"}

// GrandTotalKey is written in the key column of the last row.
const GrandTotalKey = "GRAND TOTAL"

// ErrNoFiles is returned when there is no split metadata to summarise.
var ErrNoFiles = errors.New("no split files to summarise")

// RowKind tells the four summary row types apart.
type RowKind int

const (
	RowDetail RowKind = iota
	RowSubtotal
	RowBlank
	RowGrandTotal
)

// Row is one line of the report.
type Row struct {
	Kind   RowKind
	Label  string
	Key    string
	Count  int
	Amount decimal.Decimal
}

// Cells returns the row as worksheet values. Blank rows have no values.
func (r Row) Cells() []any {
	if r.Kind == RowBlank {
		return []any{nil, nil, nil, nil}
	}
	return []any{r.Label, r.Key, r.Count, xlsxwriter.AmountCell(r.Amount)}
}

// Report is the aggregated summary.
type Report struct {
	Rows        []Row
	TotalRows   int
	TotalAmount decimal.Decimal
}

// bankGroup accumulates the files of one bank.
type bankGroup struct {
	name   string
	files  []Row
	rows   int
	amount decimal.Decimal
}

// =============================================================================
// AGGREGATION
// =============================================================================

// Aggregate builds the report from split artifacts.
//
// PARAMETERS:
//   - artifacts: Split artifacts in creation order. Artifacts without
//     metadata are ignored.
//   - registry: Used to map display names back to bank codes.
//
// RETURNS:
//   - The report.
//   - ErrNoFiles if no artifact carries metadata.
func Aggregate(artifacts []types.Artifact, registry *resolver.Registry) (*Report, error) {
	groups := make(map[string]*bankGroup)

	for _, a := range artifacts {
		if a.Meta == nil {
			continue
		}

		code := registry.CodeForName(a.Meta.BankName)
		g, ok := groups[code]
		if !ok {
			g = &bankGroup{name: a.Meta.BankName, amount: decimal.Zero}
			groups[code] = g
		}

		g.files = append(g.files, Row{
			Kind:   RowDetail,
			Label:  a.Name,
			Key:    a.Meta.Branch,
			Count:  a.Meta.Rows,
			Amount: a.Meta.Amount,
		})
		g.rows += a.Meta.Rows
		g.amount = g.amount.Add(a.Meta.Amount)
	}

	if len(groups) == 0 {
		return nil, ErrNoFiles
	}

	codes := make([]string, 0, len(groups))
	for code := range groups {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	report := &Report{TotalAmount: decimal.Zero}
	for _, code := range codes {
		g := groups[code]

		report.Rows = append(report.Rows, g.files...)
		report.Rows = append(report.Rows,
			Row{
				Kind:   RowSubtotal,
				Label:  fmt.Sprintf("Total for %s", g.name),
				Key:    code,
				Count:  g.rows,
				Amount: g.amount.Round(2),
			},
			Row{Kind: RowBlank},
		)

		report.TotalRows += g.rows
		report.TotalAmount = report.TotalAmount.Add(g.amount)
	}

	report.TotalAmount = report.TotalAmount.Round(2)
	report.Rows = append(report.Rows, Row{
		Kind:   RowGrandTotal,
		Label:  "Grand total for all banks",
		Key:    GrandTotalKey,
		Count:  report.TotalRows,
		Amount: report.TotalAmount,
	})

	return report, nil
}

// Table converts the report into a worksheet table.
func (r *Report) Table(sheetName string) xlsxwriter.Table {
	rows := make([][]any, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = row.Cells()
	}
	return xlsxwriter.Table{SheetName: sheetName, Header: Header, Rows: rows}
}

// FileName returns the report file name for a generation time.
func FileName(now time.Time) string {
	return fmt.Sprintf("Summary_Report_%s.xlsx", now.Format("20060102_150405"))
}
