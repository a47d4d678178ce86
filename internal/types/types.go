// =============================================================================
// Payroll Bank Splitter - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - normalizer
//   - resolver
//   - partition
//   - xlsxwriter
//   - summary
//   - textenc
//   - store
//
// =============================================================================

package types

import (
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// Employee is one cleaned payroll row.
// Created by the normalizer and never modified afterwards.
type Employee struct {
	// Name is the beneficiary name, already truncated to the configured length.
	Name string

	// IBAN is the beneficiary account as it appeared in the input.
	IBAN string

	// NetSalary is the amount to pay. Never zero.
	NetSalary decimal.Decimal

	// SourceRow is the 1-indexed row number in the input sheet.
	// Useful for error reporting.
	SourceRow int
}

// Transaction is an Employee routed to a receiving bank.
type Transaction struct {
	Employee

	// BankCode is the 4-character code taken from the IBAN.
	BankCode string

	// ReceiverBIC is the 11-character receiver identifier.
	// It is resolved once and never recomputed.
	ReceiverBIC string

	// Reference is "{YYYYMMDD} {IBAN}".
	Reference string

	// ValueDate is the run date formatted as YYYYMMDD.
	ValueDate string

	// Remittance is the remittance information text.
	Remittance string
}

// Batch is one capped slice of a receiver's transactions.
type Batch struct {
	// ReceiverBIC is the receiver identifier shared by every record.
	ReceiverBIC string

	// Sequence is the 1-indexed position of this batch for its receiver.
	Sequence int

	// Records are the transactions in input order.
	Records []Transaction

	// Total is the sum of every record's NetSalary.
	Total decimal.Decimal
}

// RowCount returns the number of records in the batch.
func (b Batch) RowCount() int {
	return len(b.Records)
}

// BranchSuffix returns the last three characters of the receiver identifier.
func (b Batch) BranchSuffix() string {
	return BranchSuffix(b.ReceiverBIC)
}

// BranchSuffix returns the last three characters of a receiver identifier.
func BranchSuffix(bic string) string {
	if len(bic) < 3 {
		return bic
	}
	return bic[len(bic)-3:]
}

// =============================================================================
// ARTIFACT TYPES
// =============================================================================

// Stage identifies which pipeline stage owns an artifact.
type Stage int

const (
	// StageSplit holds the per-bank spreadsheets.
	StageSplit Stage = iota + 1

	// StageSummary holds the summary report.
	StageSummary

	// StageConvert holds the .txt/.csv encodings.
	StageConvert
)

// String returns the stage name used in logs, metrics and URLs.
func (s Stage) String() string {
	switch s {
	case StageSplit:
		return "split"
	case StageSummary:
		return "summary"
	case StageConvert:
		return "convert"
	default:
		return "unknown"
	}
}

// ParseStage converts a stage name back into a Stage.
// The zero Stage is returned for unknown names.
func ParseStage(name string) Stage {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "split":
		return StageSplit
	case "summary":
		return StageSummary
	case "convert":
		return StageConvert
	default:
		return 0
	}
}

// BatchMeta is the provenance recorded for every split artifact.
// The summary stage works from this metadata only, never from bytes.
type BatchMeta struct {
	BankName string
	BankCode string
	Branch   string
	Rows     int
	Amount   decimal.Decimal
}

// Artifact is a generated file held by the store.
type Artifact struct {
	// Name is the file name, unique within a session.
	Name string

	// Content is the file body. It is never modified after creation.
	Content []byte

	// Stage is the stage that produced the artifact.
	Stage Stage

	// Meta is set for split artifacts only.
	Meta *BatchMeta
}

// Ext returns the lower-cased file extension including the dot.
func (a Artifact) Ext() string {
	return strings.ToLower(filepath.Ext(a.Name))
}

// BaseName returns the file name with its extension stripped.
func (a Artifact) BaseName() string {
	return strings.TrimSuffix(a.Name, filepath.Ext(a.Name))
}

// Size returns the content length in bytes.
func (a Artifact) Size() int {
	return len(a.Content)
}

// =============================================================================
// INPUT TABLE TYPES
// =============================================================================

// RawTable is an input sheet before normalisation.
type RawTable struct {
	// Headers are the trimmed column names in sheet order.
	Headers []string

	// Rows are the data rows, header row excluded.
	Rows []RawRow

	// Source names the sheet or file the table came from.
	Source string
}

// RawRow is one data row keyed by header.
type RawRow struct {
	// Number is the 1-indexed row number in the source.
	Number int

	// Values maps header to cell text. Missing cells are empty strings.
	Values map[string]string
}

// HasColumn reports whether a header is present.
func (t *RawTable) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}
